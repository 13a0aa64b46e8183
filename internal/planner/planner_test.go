package planner

import (
	"errors"
	"reflect"
	"testing"

	"robosim/internal/sim"
	"robosim/internal/world"
)

func mustGrid(t *testing.T, rows ...string) *world.Grid {
	t.Helper()
	g, err := world.FromRows(rows)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	return g
}

func TestPlanStraightLine(t *testing.T) {
	g := mustGrid(t, "....")
	got, err := Plan(g, Pose{X: 0, Y: 0, Direction: sim.Right}, 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []sim.Command{sim.Forward, sim.Forward, sim.Forward}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPlanTurns(t *testing.T) {
	tests := []struct {
		from, to sim.Direction
		want     []sim.Command
	}{
		{sim.Up, sim.Up, nil},
		{sim.Up, sim.Right, []sim.Command{sim.TurnRight}},
		{sim.Up, sim.Left, []sim.Command{sim.TurnLeft}},
		{sim.Right, sim.Left, []sim.Command{sim.TurnRight, sim.TurnRight}},
		{sim.Left, sim.Up, []sim.Command{sim.TurnRight}},
	}
	for _, tt := range tests {
		if got := turns(tt.from, tt.to); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("turns(%d,%d) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

// TestPlanDrivesEngineToGoal replays a plan through the engine around a wall.
func TestPlanDrivesEngineToGoal(t *testing.T) {
	g := mustGrid(t,
		".....",
		".###.",
		"...#.",
		"##.#.",
		".....",
	)
	from := Pose{X: 0, Y: 2, Direction: sim.Up}
	cmds, err := Plan(g, from, 4, 0)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	cfg := sim.Configuration{
		Slots: map[sim.Slot]sim.ComponentDescriptor{sim.SlotLeft: {ID: "m", Type: "motor"}},
		Power: sim.PowerBudget{ConsumptionPerTick: 0.1},
	}
	e, err := sim.New(cfg, g, sim.State{X: from.X, Y: from.Y, Direction: from.Direction, Battery: 100}, sim.NewRand(1))
	if err != nil {
		t.Fatal(err)
	}
	var r sim.StepResult
	for _, c := range cmds {
		r = e.Step(c)
		if r.Sensors.Collision {
			t.Fatalf("plan collided at tick %d", r.Tick)
		}
	}
	if r.X != 4 || r.Y != 0 {
		t.Fatalf("ended at (%d,%d), want (4,0)", r.X, r.Y)
	}
}

func TestPlanNoPath(t *testing.T) {
	g := mustGrid(t,
		".#.",
		".#.",
	)
	if _, err := Plan(g, Pose{}, 2, 0); !errors.Is(err, ErrNoPath) {
		t.Fatalf("walled goal: got %v", err)
	}
	if _, err := Plan(g, Pose{}, 1, 0); !errors.Is(err, ErrNoPath) {
		t.Fatalf("goal on obstacle: got %v", err)
	}
	if _, err := Plan(g, Pose{}, 9, 9); !errors.Is(err, ErrNoPath) {
		t.Fatalf("goal out of bounds: got %v", err)
	}
}

func TestPlanAtGoal(t *testing.T) {
	cmds, err := Plan(mustGrid(t, ".."), Pose{X: 1}, 1, 0)
	if err != nil || len(cmds) != 0 {
		t.Fatalf("got %v, %v", cmds, err)
	}
}

func TestFindPathLength(t *testing.T) {
	g := mustGrid(t,
		"...",
		"...",
		"...",
	)
	path, ok := FindPath(g, 0, 0, 2, 2)
	if !ok || len(path) != 5 {
		t.Fatalf("path %v ok=%v, want 5 cells", path, ok)
	}
	if path[0] != [2]int{0, 0} || path[4] != [2]int{2, 2} {
		t.Fatalf("path endpoints %v", path)
	}
}
