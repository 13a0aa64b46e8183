package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"robosim/internal/catalog"
	"robosim/internal/sim"
)

const sampleRobot = `{
  "processor": "arduino-uno",
  "slots": {"front": "ultrasonic", "left": "dc-motor", "right": "dc-motor"},
  "power": {"totalCapacity": 100, "current": 100, "consumptionPerTick": 0.5},
  "start": {"x": 1, "y": 3, "direction": 90, "temperature": 35},
  "seed": 42,
  "tickInterval": "250ms"
}`

func TestLoadAndResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot.json")
	if err := os.WriteFile(path, []byte(sampleRobot), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cfg, st, err := f.Resolve(context.Background(), catalog.NewDefaultStore())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !cfg.CanMove() || !cfg.CanRange() {
		t.Fatalf("resolved config lacks motors or range sensor: %+v", cfg.Slots)
	}
	if cfg.Processor == nil || cfg.Processor.Component.ID != "arduino-uno" {
		t.Fatalf("processor not resolved")
	}
	if cfg.Power.ConsumptionPerTick != 0.5 {
		t.Fatalf("consumption %v", cfg.Power.ConsumptionPerTick)
	}
	if st.X != 1 || st.Y != 3 || st.Direction != sim.Right || st.Battery != 100 || st.Temperature != 35 {
		t.Fatalf("unexpected start state %+v", st)
	}

	d, err := f.Interval()
	if err != nil || d != 250*time.Millisecond {
		t.Fatalf("interval %v %v", d, err)
	}
	if f.RandSeed() != 42 {
		t.Fatalf("seed %d", f.RandSeed())
	}
}

func TestDefaults(t *testing.T) {
	f, err := Parse([]byte(`{"slots": {"left": "dc-motor", "front": "lidar"}, "start": {}}`))
	if err != nil {
		t.Fatal(err)
	}
	cfg, st, err := f.Resolve(context.Background(), catalog.NewDefaultStore())
	if err != nil {
		t.Fatal(err)
	}
	want := 0.15 + 0.3
	if got := cfg.Power.ConsumptionPerTick; got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("derived consumption %v, want %v", got, want)
	}
	if cfg.Power.TotalCapacity != DefaultCapacity || cfg.Power.Current != DefaultCapacity {
		t.Fatalf("capacity defaults not applied: %+v", cfg.Power)
	}
	if st.Battery != sim.MaxBattery || st.Direction != sim.Up {
		t.Fatalf("start defaults not applied: %+v", st)
	}
	if d, _ := f.Interval(); d != DefaultTickInterval {
		t.Fatalf("interval %v", d)
	}
	if f.RandSeed() != DefaultSeed {
		t.Fatalf("seed %d", f.RandSeed())
	}
}

func TestInlineComponentsShadowCatalog(t *testing.T) {
	f, err := Parse([]byte(`{
		"slots": {"front": "ultrasonic"},
		"components": [{"id": "ultrasonic", "type": "camera", "name": "Fake", "powerDraw": 0}],
		"power": {"consumptionPerTick": 1},
		"start": {"battery": 10}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	cfg, st, err := f.Resolve(context.Background(), catalog.NewDefaultStore())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CanRange() {
		t.Fatalf("inline camera should shadow the catalog ultrasonic sensor")
	}
	if st.Battery != 10 {
		t.Fatalf("battery %v", st.Battery)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown component", `{"slots": {"front": "flux"}}`},
		{"unknown slot", `{"slots": {"top": "dc-motor"}}`},
		{"unknown processor", `{"processor": "quantum"}`},
		{"bad direction", `{"start": {"direction": 45}}`},
		{"negative consumption", `{"power": {"consumptionPerTick": -1}}`},
	}
	for _, tt := range tests {
		f, err := Parse([]byte(tt.src))
		if err != nil {
			t.Fatalf("%s: parse: %v", tt.name, err)
		}
		if _, _, err := f.Resolve(context.Background(), catalog.NewDefaultStore()); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	f, _ := Parse([]byte(`{"slots": {"front": "flux"}}`))
	if _, _, err := f.Resolve(context.Background(), nil); !errors.Is(err, ErrUnknownComponent) {
		t.Fatalf("got %v, want ErrUnknownComponent", err)
	}
	_, _, err := f.Resolve(context.Background(), catalog.NewDefaultStore())
	if !errors.Is(err, ErrUnknownComponent) || !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("catalog miss: got %v, want ErrUnknownComponent wrapping catalog.ErrNotFound", err)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte(`{"slots": `)); err == nil {
		t.Fatalf("truncated json should fail")
	}
	if _, err := Parse([]byte(`{"wheels": 4}`)); err == nil {
		t.Fatalf("unknown field should fail")
	}
	f, _ := Parse([]byte(`{"tickInterval": "soon"}`))
	if _, err := f.Interval(); err == nil {
		t.Fatalf("bad interval should fail")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Fatalf("missing file should fail")
	}
}
