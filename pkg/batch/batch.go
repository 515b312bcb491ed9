// Package batch drives many independent interview sessions from one process,
// outside the single-session core: a scripted-transcript replay harness for
// load testing and demos. It never bypasses a session's own single-threaded
// turn pipeline — concurrency here is strictly across sessions, never within
// one.
package batch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/praetorian-inc/interviewcoach/internal/session"
	"github.com/praetorian-inc/interviewcoach/pkg/feedback"
	"github.com/praetorian-inc/interviewcoach/pkg/interview"
)

// Transcript scripts one session: the candidate's opening context and the
// ordered replies a fake candidate gives to the Interviewer's questions.
type Transcript struct {
	SessionID      string
	DeclaredGrade  interview.Grade
	JobDescription string
	CandidateTurns []string
}

// Factory builds a fresh Session for one transcript. Each session in a batch
// typically needs its own Session (it closes over a Logger/Gateway/trace),
// so the runner asks for one per transcript rather than reusing a shared
// instance across goroutines.
type Factory func(t Transcript) (*session.Session, error)

// Result is one session's outcome.
type Result struct {
	SessionID       string
	TurnsProcessed  int
	Feedback        feedback.Feedback
	SummaryLogPath  string
	DetailedLogPath string
	Err             error
}

// Results aggregates a batch run.
type Results struct {
	Results   []Result
	Total     int
	Succeeded int
	Failed    int
	Error     error
}

// Runner executes transcripts concurrently with a configurable concurrency
// cap, mirroring the capped-concurrency fan-out this codebase already uses
// elsewhere for independent units of work.
type Runner struct {
	opts             Options
	progressCallback func(completed, total int)
}

// New creates a Runner with the given options.
func New(opts Options) *Runner {
	return &Runner{opts: opts}
}

// SetProgressCallback sets a callback invoked after each session completes.
func (r *Runner) SetProgressCallback(callback func(completed, total int)) {
	r.progressCallback = callback
}

// Run drives every transcript through its own Session: Start, then Process
// for each scripted candidate turn (stopping early if the session ends
// itself), then Finish. Failures in one session never cancel the others;
// only ctx cancellation or the overall Timeout does.
func (r *Runner) Run(ctx context.Context, transcripts []Transcript, factory Factory) Results {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	results := Results{
		Results: make([]Result, 0, len(transcripts)),
		Total:   len(transcripts),
	}
	if len(transcripts) == 0 {
		return results
	}

	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for _, t := range transcripts {
		t := t

		g.Go(func() error {
			sessionCtx := gctx
			if r.opts.SessionTimeout > 0 {
				var cancel context.CancelFunc
				sessionCtx, cancel = context.WithTimeout(gctx, r.opts.SessionTimeout)
				defer cancel()
			}

			res := r.runOne(sessionCtx, t, factory)

			mu.Lock()
			defer mu.Unlock()
			completed++
			results.Results = append(results.Results, res)
			if res.Err != nil {
				results.Failed++
			} else {
				results.Succeeded++
			}
			if r.progressCallback != nil {
				r.progressCallback(completed, results.Total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		results.Error = err
	}

	return results
}

// runOne drives a single transcript to completion. It never returns an error
// itself (failures are reported on Result.Err) so that one session's failure
// never aborts the rest of the batch via errgroup cancellation.
func (r *Runner) runOne(ctx context.Context, t Transcript, factory Factory) Result {
	res := Result{SessionID: t.SessionID}

	s, err := factory(t)
	if err != nil {
		res.Err = fmt.Errorf("build session %s: %w", t.SessionID, err)
		return res
	}
	defer s.Close(ctx)

	if _, err := s.Start(ctx, t.DeclaredGrade, t.JobDescription); err != nil {
		res.Err = fmt.Errorf("start session %s: %w", t.SessionID, err)
		return res
	}

	for _, turn := range t.CandidateTurns {
		_, done, err := s.Process(ctx, turn)
		if err != nil {
			res.Err = fmt.Errorf("process turn in session %s: %w", t.SessionID, err)
			return res
		}
		res.TurnsProcessed++
		if done {
			break
		}
	}

	fb, summaryPath, detailedPath, err := s.Finish(ctx)
	if err != nil {
		res.Err = fmt.Errorf("finish session %s: %w", t.SessionID, err)
		return res
	}

	res.Feedback = fb
	res.SummaryLogPath = summaryPath
	res.DetailedLogPath = detailedPath
	return res
}
