package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/praetorian-inc/interviewcoach/internal/gateway"
	"github.com/praetorian-inc/interviewcoach/internal/session"
	"github.com/praetorian-inc/interviewcoach/pkg/config"
	"github.com/praetorian-inc/interviewcoach/pkg/interview"
	"github.com/praetorian-inc/interviewcoach/pkg/metrics"
	"github.com/praetorian-inc/interviewcoach/pkg/observability"
	"github.com/praetorian-inc/interviewcoach/pkg/translog"
)

// setupSignalContext returns a context cancelled on SIGINT/SIGTERM. The
// interview passes the same context to Start, Process and Finish, so once a
// signal arrives every LM call made with it is cancelled, the Evaluator call
// in Finish included.
func setupSignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (i *InterviewCmd) execute() error {
	cfg, err := config.LoadConfigKoanf(i.ConfigFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	jobDescription := ""
	if i.JobDescription != "" {
		data, err := os.ReadFile(i.JobDescription)
		if err != nil {
			return fmt.Errorf("read job description: %w", err)
		}
		jobDescription = string(data)
	}

	sessionID := i.SessionID
	if sessionID == "" {
		sessionID = "interactive"
	}

	ctx, cancel := setupSignalContext()
	defer cancel()

	s, cleanup, err := buildSession(cfg, sessionID)
	if err != nil {
		return err
	}
	defer cleanup()

	greeting, err := s.Start(ctx, interview.ParseGrade(i.Grade), jobDescription)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	fmt.Println(greeting)

	scanner := bufio.NewScanner(os.Stdin)
	for s.IsActive() {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		reply := scanner.Text()

		utterance, done, err := s.Process(ctx, reply)
		if err != nil {
			return fmt.Errorf("process turn: %w", err)
		}
		fmt.Println(utterance)
		if done {
			break
		}
	}

	fb, summaryPath, detailedPath, err := s.Finish(ctx)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}

	fmt.Println()
	fmt.Println(fb.FormattedString())
	fmt.Printf("Summary log: %s\n", summaryPath)
	fmt.Printf("Detailed log: %s\n", detailedPath)

	return nil
}

// buildSession wires one Session and its collaborators from cfg. The
// returned cleanup func shuts down the observability sink and must be
// called once the session is done with it.
func buildSession(cfg *config.Config, sessionID string) (*session.Session, func(), error) {
	backend, err := buildBackend(cfg)
	if err != nil {
		return nil, nil, err
	}

	gw := gateway.New(backend, cfg.LiteLLMMaxRetries)
	m := &metrics.Metrics{}
	gw.SetMetrics(m)

	agents := buildAgents(gw, cfg)

	logger, err := translog.New(cfg.InterviewLogDir)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	sink, shutdown, err := buildSink(cfg)
	if err != nil {
		return nil, nil, err
	}

	s := session.New(session.Dependencies{
		Observer:    agents.observer,
		Interviewer: agents.interviewer,
		Evaluator:   agents.evaluator,
		Logger:      logger,
		Sink:        sink,
		Metrics:     m,
		MaxTurns:    cfg.MaxTurns,
		SessionID:   sessionID,
	})

	return s, shutdown, nil
}

func buildSink(cfg *config.Config) (observability.Sink, func(), error) {
	if !cfg.ObservabilityEnabled || cfg.OTelEndpoint == "" {
		return observability.NoopSink{}, func() {}, nil
	}

	sink, shutdown, err := observability.NewOTelSink("interviewcoach", cfg.OTelEndpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("init observability sink: %w", err)
	}
	return sink, func() { _ = shutdown(context.Background()) }, nil
}
