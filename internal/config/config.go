// Package config loads robot definition files and resolves them against the
// component catalog.
package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"robosim/internal/catalog"
	"robosim/internal/sim"
)

const (
	DefaultTickInterval = 800 * time.Millisecond
	DefaultSeed         = 1
	DefaultCapacity     = 100.0
)

var ErrUnknownComponent = errors.New("unknown component")

// File is the on-disk robot definition.
type File struct {
	Processor      string                    `json:"processor,omitempty"`
	ProcessorMount string                    `json:"processorMount,omitempty"`
	Slots          map[sim.Slot]string       `json:"slots"`
	Components     []sim.ComponentDescriptor `json:"components,omitempty"`
	Power          Power                     `json:"power"`
	Start          Start                     `json:"start"`
	Seed           *uint64                   `json:"seed,omitempty"`
	TickInterval   string                    `json:"tickInterval,omitempty"`
}

// Power mirrors sim.PowerBudget; a nil ConsumptionPerTick means "sum of part draws".
type Power struct {
	TotalCapacity      float64  `json:"totalCapacity,omitempty"`
	Current            float64  `json:"current,omitempty"`
	ConsumptionPerTick *float64 `json:"consumptionPerTick,omitempty"`
}

type Start struct {
	X           int      `json:"x"`
	Y           int      `json:"y"`
	Direction   int      `json:"direction"`
	Battery     *float64 `json:"battery,omitempty"`
	Temperature float64  `json:"temperature"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a robot file, rejecting unknown fields.
func Parse(data []byte) (*File, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode robot file: %w", err)
	}
	return &f, nil
}

// Interval returns the tick interval, DefaultTickInterval when unset.
func (f *File) Interval() (time.Duration, error) {
	if f.TickInterval == "" {
		return DefaultTickInterval, nil
	}
	d, err := time.ParseDuration(f.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("tickInterval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("tickInterval: negative duration %s", d)
	}
	return d, nil
}

func (f *File) RandSeed() uint64 {
	if f.Seed == nil {
		return DefaultSeed
	}
	return *f.Seed
}

// Rand returns a generator seeded from the file.
func (f *File) Rand() sim.RandSource {
	return sim.NewRand(f.RandSeed())
}

// Resolve turns the file into an engine configuration and initial state.
// Inline components shadow catalog entries with the same id.
func (f *File) Resolve(ctx context.Context, store catalog.Store) (sim.Configuration, sim.State, error) {
	inline := make(map[string]sim.ComponentDescriptor, len(f.Components))
	for _, c := range f.Components {
		if c.ID == "" {
			return sim.Configuration{}, sim.State{}, errors.New("inline component without id")
		}
		inline[c.ID] = c
	}
	lookup := func(id string) (sim.ComponentDescriptor, error) {
		if c, ok := inline[id]; ok {
			return c, nil
		}
		if store == nil {
			return sim.ComponentDescriptor{}, fmt.Errorf("%w: %s", ErrUnknownComponent, id)
		}
		c, err := catalog.Lookup(ctx, store, id)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			return sim.ComponentDescriptor{}, fmt.Errorf("%w: %w", ErrUnknownComponent, err)
		case err != nil:
			return sim.ComponentDescriptor{}, fmt.Errorf("catalog lookup %s: %w", id, err)
		}
		return c, nil
	}

	cfg := sim.Configuration{Slots: make(map[sim.Slot]sim.ComponentDescriptor, len(f.Slots))}
	for slot, id := range f.Slots {
		if !slot.Valid() {
			return sim.Configuration{}, sim.State{}, fmt.Errorf("unknown slot %q", slot)
		}
		if id == "" {
			continue
		}
		c, err := lookup(id)
		if err != nil {
			return sim.Configuration{}, sim.State{}, fmt.Errorf("slot %s: %w", slot, err)
		}
		cfg.Slots[slot] = c
	}
	if f.Processor != "" {
		c, err := lookup(f.Processor)
		if err != nil {
			return sim.Configuration{}, sim.State{}, fmt.Errorf("processor: %w", err)
		}
		cfg.Processor = &sim.Processor{Component: c, Mount: f.ProcessorMount}
	}

	cfg.Power.TotalCapacity = f.Power.TotalCapacity
	if cfg.Power.TotalCapacity == 0 {
		cfg.Power.TotalCapacity = DefaultCapacity
	}
	cfg.Power.Current = f.Power.Current
	if cfg.Power.Current == 0 {
		cfg.Power.Current = cfg.Power.TotalCapacity
	}
	if f.Power.ConsumptionPerTick != nil {
		cfg.Power.ConsumptionPerTick = *f.Power.ConsumptionPerTick
	} else {
		cfg.Power.ConsumptionPerTick = cfg.PowerDraw()
	}
	if cfg.Power.ConsumptionPerTick < 0 {
		return sim.Configuration{}, sim.State{}, fmt.Errorf("negative consumptionPerTick %v", cfg.Power.ConsumptionPerTick)
	}

	st := sim.State{
		X:           f.Start.X,
		Y:           f.Start.Y,
		Direction:   sim.Direction(f.Start.Direction),
		Battery:     sim.MaxBattery,
		Temperature: f.Start.Temperature,
	}
	if f.Start.Battery != nil {
		st.Battery = *f.Start.Battery
	}
	if !st.Direction.Valid() {
		return sim.Configuration{}, sim.State{}, fmt.Errorf("start direction %d: %w", f.Start.Direction, sim.ErrInvalidDirection)
	}
	return cfg, st, nil
}
