// Package runner drives an engine through a command queue, one command per tick.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"robosim/internal/sim"
)

// Stepper is the engine surface the runner needs.
type Stepper interface {
	Step(cmd sim.Command) sim.StepResult
}

// StopReason says why a run ended.
type StopReason string

const (
	StopCompleted StopReason = "completed"
	StopDepleted  StopReason = "depleted"
	StopHalted    StopReason = "halted"
	StopCancelled StopReason = "cancelled"
	StopCallback  StopReason = "callback"
)

type Options struct {
	// Interval between ticks; zero runs the queue back to back.
	Interval time.Duration
	// HaltOnError stops the run after a step that logged an error or worse.
	HaltOnError bool
	Logger      *slog.Logger
	// OnStep sees every result; a non-nil error stops the run.
	OnStep func(sim.StepResult) error
	// RunID overrides the generated run id.
	RunID string
}

type Summary struct {
	RunID      string         `json:"runId"`
	Ticks      int            `json:"ticks"`
	Moves      int            `json:"moves"`
	Collisions int            `json:"collisions"`
	Reason     StopReason     `json:"reason"`
	Last       sim.StepResult `json:"last"`
}

// Run feeds cmds to s until the queue is exhausted, the battery runs out, the
// halt policy fires or ctx is done. A cancelled run returns ctx.Err() together
// with the summary so far.
func Run(ctx context.Context, s Stepper, cmds []sim.Command, opts Options) (Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sum := Summary{RunID: opts.RunID}
	if sum.RunID == "" {
		sum.RunID = uuid.New().String()[:8]
	}
	logger = logger.With("run", sum.RunID)
	logger.Info("run started", "commands", len(cmds), "interval", opts.Interval)

	var tick <-chan time.Time
	if opts.Interval > 0 {
		t := time.NewTicker(opts.Interval)
		defer t.Stop()
		tick = t.C
	}

	sum.Reason = StopCompleted
	for _, cmd := range cmds {
		if tick != nil {
			select {
			case <-ctx.Done():
				return cancelled(logger, sum, ctx.Err())
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return cancelled(logger, sum, err)
		}

		r := s.Step(cmd)
		sum.Ticks++
		sum.Last = r
		if r.Moved {
			sum.Moves++
		}
		if r.Sensors.Collision {
			sum.Collisions++
		}
		logStep(logger, r)

		if opts.OnStep != nil {
			if err := opts.OnStep(r); err != nil {
				sum.Reason = StopCallback
				logger.Warn("run stopped by observer", "tick", r.Tick, "err", err)
				return sum, fmt.Errorf("tick %d: %w", r.Tick, err)
			}
		}
		if r.Battery <= 0 {
			sum.Reason = StopDepleted
			break
		}
		if opts.HaltOnError && r.HasSeverity(sim.Error) {
			sum.Reason = StopHalted
			break
		}
	}

	logger.Info("run finished", "reason", sum.Reason, "ticks", sum.Ticks,
		"moves", sum.Moves, "collisions", sum.Collisions, "battery", sum.Last.Battery)
	return sum, nil
}

func cancelled(logger *slog.Logger, sum Summary, err error) (Summary, error) {
	sum.Reason = StopCancelled
	logger.Info("run cancelled", "ticks", sum.Ticks)
	return sum, err
}

func logStep(logger *slog.Logger, r sim.StepResult) {
	logger.Debug("tick",
		"n", r.Tick,
		"cmd", r.Command,
		"x", r.X,
		"y", r.Y,
		"dir", int(r.Direction),
		"battery", r.Battery,
		"distance", r.Sensors.Distance,
	)
	for _, l := range r.Logs {
		logger.Log(context.Background(), levelFor(l.Severity), l.Message, "tick", r.Tick, "severity", l.Severity)
	}
}

func levelFor(s sim.Severity) slog.Level {
	switch s {
	case sim.Info:
		return slog.LevelDebug
	case sim.Warning:
		return slog.LevelInfo
	case sim.Error:
		return slog.LevelWarn
	}
	return slog.LevelError
}
