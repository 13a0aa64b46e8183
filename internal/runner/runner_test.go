package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"robosim/internal/sim"
	"robosim/internal/world"
)

func newEngine(t *testing.T, consumption float64, battery float64) *sim.Engine {
	t.Helper()
	g := world.New(10, 10)
	g.Set(3, 3, world.Obstacle)
	cfg := sim.Configuration{
		Slots: map[sim.Slot]sim.ComponentDescriptor{
			sim.SlotFront: {ID: "ultrasonic", Type: "sensor-dist"},
			sim.SlotLeft:  {ID: "dc-motor", Type: "motor"},
		},
		Power: sim.PowerBudget{ConsumptionPerTick: consumption},
	}
	e, err := sim.New(cfg, g, sim.State{X: 1, Y: 3, Direction: sim.Right, Battery: battery}, sim.NewRand(3))
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestRunCompletes(t *testing.T) {
	var seen []sim.StepResult
	sum, err := Run(context.Background(), newEngine(t, 0.5, 100),
		[]sim.Command{sim.Forward, sim.Forward, sim.TurnRight, sim.Forward},
		Options{OnStep: func(r sim.StepResult) error { seen = append(seen, r); return nil }})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Reason != StopCompleted || sum.Ticks != 4 || len(seen) != 4 {
		t.Fatalf("summary %+v, observed %d", sum, len(seen))
	}
	if sum.Moves != 2 || sum.Collisions != 1 {
		t.Fatalf("moves %d collisions %d, want 2 and 1", sum.Moves, sum.Collisions)
	}
	if sum.Last.X != 2 || sum.Last.Y != 4 {
		t.Fatalf("final position (%d,%d)", sum.Last.X, sum.Last.Y)
	}
	if len(sum.RunID) != 8 {
		t.Fatalf("run id %q", sum.RunID)
	}
}

func TestRunStopsOnDepletion(t *testing.T) {
	cmds := make([]sim.Command, 50)
	for i := range cmds {
		cmds[i] = sim.Wait
	}
	sum, err := Run(context.Background(), newEngine(t, 10, 35), cmds, Options{RunID: "fixed"})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Reason != StopDepleted || sum.Ticks != 4 {
		t.Fatalf("summary %+v, want depleted after 4 ticks", sum)
	}
	if sum.RunID != "fixed" {
		t.Fatalf("run id %q", sum.RunID)
	}
	if sum.Last.Worst() != sim.Critical {
		t.Fatalf("last step should carry the depletion entry")
	}
}

func TestRunHaltOnError(t *testing.T) {
	cmds := []sim.Command{sim.Forward, sim.Forward, sim.Wait, sim.Wait}
	sum, err := Run(context.Background(), newEngine(t, 0.5, 100), cmds, Options{HaltOnError: true})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Reason != StopHalted || sum.Ticks != 2 {
		t.Fatalf("summary %+v, want halted on the collision at tick 2", sum)
	}

	sum, _ = Run(context.Background(), newEngine(t, 0.5, 100), cmds, Options{})
	if sum.Reason != StopCompleted || sum.Ticks != 4 {
		t.Fatalf("without halting the run should complete: %+v", sum)
	}
}

func TestRunCallbackError(t *testing.T) {
	boom := errors.New("client gone")
	sum, err := Run(context.Background(), newEngine(t, 0.5, 100), []sim.Command{sim.Wait, sim.Wait},
		Options{OnStep: func(sim.StepResult) error { return boom }})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped callback error", err)
	}
	if sum.Reason != StopCallback || sum.Ticks != 1 {
		t.Fatalf("summary %+v", sum)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := Run(ctx, newEngine(t, 0.5, 100), []sim.Command{sim.Wait}, Options{})
	if !errors.Is(err, context.Canceled) || sum.Reason != StopCancelled || sum.Ticks != 0 {
		t.Fatalf("got %+v, %v", sum, err)
	}
}

func TestRunInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ticks := 0
	opts := Options{
		Interval: 5 * time.Millisecond,
		OnStep: func(sim.StepResult) error {
			ticks++
			if ticks == 2 {
				cancel()
			}
			return nil
		},
	}
	cmds := []sim.Command{sim.Wait, sim.Wait, sim.Wait, sim.Wait}
	start := time.Now()
	sum, err := Run(ctx, newEngine(t, 0.5, 100), cmds, opts)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if sum.Ticks != 2 {
		t.Fatalf("ticks %d, want 2", sum.Ticks)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatalf("ticks were not paced by the interval")
	}
}

func TestRunLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := Run(context.Background(), newEngine(t, 0.5, 100), []sim.Command{sim.Forward, sim.Forward},
		Options{Logger: logger, RunID: "abc"})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"run=abc", "run started", "collision", "run finished", "reason=completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
