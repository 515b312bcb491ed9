package main

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"
)

// CLI represents the interviewcoach command-line interface.
var CLI struct {
	Debug      bool          `help:"Enable debug mode." short:"d" env:"INTERVIEWCOACH_DEBUG"`
	Version    VersionCmd    `cmd:"" help:"Print version information."`
	Help       HelpCmd       `cmd:"" hidden:"" default:"1"`
	List       ListCmd       `cmd:"" help:"List registered LM gateway backends."`
	Interview  InterviewCmd  `cmd:"" help:"Run one interactive interview session against stdin/stdout."`
	Batch      BatchCmd      `cmd:"" help:"Replay a batch of scripted transcripts concurrently."`
	Completion CompletionCmd `cmd:"" help:"Generate shell completion scripts."`
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	printVersion()
	return nil
}

// HelpCmd prints help.
type HelpCmd struct{}

func (h *HelpCmd) Run(ctx *kong.Context) error {
	// Print top-level help (application help), not help for the implicit Help command.
	appCtx := *ctx
	if len(appCtx.Path) > 1 {
		appCtx.Path = appCtx.Path[:1]
	}
	return appCtx.PrintUsage(false)
}

// ListCmd lists registered LM gateway backends.
type ListCmd struct{}

func (l *ListCmd) Run() error {
	listBackends()
	return nil
}

// InterviewCmd runs one interactive interview session, reading candidate
// replies from stdin and writing the Interviewer's utterances to stdout
// until the session ends, then prints the Evaluator's feedback.
type InterviewCmd struct {
	Grade          string `arg:"" optional:"" enum:"Intern,Junior,Middle,Senior,Lead" default:"Middle" help:"Candidate's declared grade."`
	JobDescription string `help:"Path to a job description text file." name:"job-description" type:"existingfile"`
	ConfigFile     string `help:"YAML config file path." name:"config-file" type:"existingfile"`
	SessionID      string `help:"Session identifier used in logs and traces." name:"session-id"`
}

func (i *InterviewCmd) Run() error {
	return i.execute()
}

// BatchCmd replays a JSON file of scripted transcripts through the batch
// runner, mirroring the interactive command's wiring but fanning out across
// many sessions with a concurrency cap.
type BatchCmd struct {
	TranscriptsFile string        `arg:"" help:"JSON file containing an array of scripted transcripts." type:"existingfile"`
	ConfigFile      string        `help:"YAML config file path." name:"config-file" type:"existingfile"`
	Concurrency     int           `help:"Max concurrent sessions." default:"5"`
	Timeout         time.Duration `help:"Overall batch timeout." default:"30m"`
	SessionTimeout  time.Duration `help:"Per-session timeout." name:"session-timeout" default:"5m"`
	Output          string        `help:"JSON file to write aggregated results to." short:"o" type:"path"`
}

func (b *BatchCmd) Run() error {
	return b.execute()
}

func (b *BatchCmd) Validate() error {
	if b.Concurrency < 1 {
		return fmt.Errorf("--concurrency must be >= 1")
	}
	return nil
}

// CompletionCmd generates shell completion scripts.
type CompletionCmd struct {
	Shell string `arg:"" enum:"bash,zsh,fish" help:"Shell type (bash, zsh, fish)."`
}

func (c *CompletionCmd) Run() error {
	switch c.Shell {
	case "bash":
		fmt.Println("# Bash completion for interviewcoach")
		fmt.Println("# Add to ~/.bashrc:")
		fmt.Println("# eval \"$(interviewcoach completion bash)\"")
	case "zsh":
		fmt.Println("# Zsh completion for interviewcoach")
		fmt.Println("# Add to ~/.zshrc:")
		fmt.Println("# eval \"$(interviewcoach completion zsh)\"")
	case "fish":
		fmt.Println("# Fish completion for interviewcoach")
		fmt.Println("# Run: interviewcoach completion fish | source")
	}
	return nil
}
