package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/praetorian-inc/interviewcoach/internal/gateway"
	"github.com/praetorian-inc/interviewcoach/internal/session"
	"github.com/praetorian-inc/interviewcoach/pkg/batch"
	"github.com/praetorian-inc/interviewcoach/pkg/config"
	"github.com/praetorian-inc/interviewcoach/pkg/metrics"
	"github.com/praetorian-inc/interviewcoach/pkg/translog"
)

func (b *BatchCmd) execute() error {
	cfg, err := config.LoadConfigKoanf(b.ConfigFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	data, err := os.ReadFile(b.TranscriptsFile)
	if err != nil {
		return fmt.Errorf("read transcripts file: %w", err)
	}
	var transcripts []batch.Transcript
	if err := json.Unmarshal(data, &transcripts); err != nil {
		return fmt.Errorf("parse transcripts file: %w", err)
	}

	ctx, cancel := setupSignalContext()
	defer cancel()

	logger, err := translog.New(cfg.InterviewLogDir)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	sharedMetrics := &metrics.Metrics{}

	factory := func(t batch.Transcript) (*session.Session, error) {
		backend, err := buildBackend(cfg)
		if err != nil {
			return nil, err
		}
		gw := gateway.New(backend, cfg.LiteLLMMaxRetries)
		gw.SetMetrics(sharedMetrics)
		agents := buildAgents(gw, cfg)

		return session.New(session.Dependencies{
			Observer:    agents.observer,
			Interviewer: agents.interviewer,
			Evaluator:   agents.evaluator,
			Logger:      logger,
			Metrics:     sharedMetrics,
			MaxTurns:    cfg.MaxTurns,
			SessionID:   t.SessionID,
		}), nil
	}

	runner := batch.New(batch.Options{
		Concurrency:    b.Concurrency,
		Timeout:        b.Timeout,
		SessionTimeout: b.SessionTimeout,
	})
	runner.SetProgressCallback(func(completed, total int) {
		fmt.Fprintf(os.Stderr, "progress: %d/%d sessions complete\n", completed, total)
	})

	results := runner.Run(ctx, transcripts, factory)
	if results.Error != nil {
		return fmt.Errorf("batch run: %w", results.Error)
	}

	fmt.Printf("Total: %d  Succeeded: %d  Failed: %d\n", results.Total, results.Succeeded, results.Failed)
	for _, res := range results.Results {
		if res.Err != nil {
			fmt.Printf("  [FAIL] %s: %v\n", res.SessionID, res.Err)
			continue
		}
		fmt.Printf("  [OK]   %s: %d turns, recommendation=%s\n", res.SessionID, res.TurnsProcessed, res.Feedback.Verdict.HiringRecommendation)
	}

	if b.Output != "" {
		if err := writeResultsJSON(b.Output, results); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
	}

	return nil
}

// jsonResult mirrors batch.Result with errors rendered as strings, since
// the error interface itself carries no exported fields for encoding/json
// to serialize.
type jsonResult struct {
	SessionID       string `json:"session_id"`
	TurnsProcessed  int    `json:"turns_processed"`
	Feedback        any    `json:"feedback,omitempty"`
	SummaryLogPath  string `json:"summary_log_path,omitempty"`
	DetailedLogPath string `json:"detailed_log_path,omitempty"`
	Error           string `json:"error,omitempty"`
}

func writeResultsJSON(path string, results batch.Results) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	out := make([]jsonResult, 0, len(results.Results))
	for _, res := range results.Results {
		jr := jsonResult{
			SessionID:       res.SessionID,
			TurnsProcessed:  res.TurnsProcessed,
			SummaryLogPath:  res.SummaryLogPath,
			DetailedLogPath: res.DetailedLogPath,
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		} else {
			jr.Feedback = res.Feedback
		}
		out = append(out, jr)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
