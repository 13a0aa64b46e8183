// Package catalog stores the hardware parts a robot can be assembled from.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"robosim/internal/sim"
)

var ErrNotFound = errors.New("component not found")

// Store persists component descriptors keyed by id.
type Store interface {
	Init(ctx context.Context) error
	Get(ctx context.Context, id string) (sim.ComponentDescriptor, bool, error)
	List(ctx context.Context) ([]sim.ComponentDescriptor, error)
	Put(ctx context.Context, desc sim.ComponentDescriptor) error
}

// Defaults is the stock parts list offered to learners.
func Defaults() []sim.ComponentDescriptor {
	return []sim.ComponentDescriptor{
		{ID: "arduino-uno", Type: "processor", Name: "Arduino Uno", PowerDraw: 0.05},
		{ID: "raspberry-pi", Type: "processor", Name: "Raspberry Pi 4", PowerDraw: 0.6},
		{ID: "dc-motor", Type: "motor", Name: "DC Gear Motor", PowerDraw: 0.15},
		{ID: "servo-motor", Type: "servo-motor", Name: "Continuous Servo", PowerDraw: 0.1},
		{ID: "ultrasonic", Type: "sensor-dist", Name: "HC-SR04 Ultrasonic", PowerDraw: 0.02},
		{ID: "lidar", Type: "lidar", Name: "TF-Luna Lidar", PowerDraw: 0.3},
		{ID: "camera", Type: "camera", Name: "Camera Module", PowerDraw: 0.25},
		{ID: "light-sensor", Type: "sensor-light", Name: "Photoresistor", PowerDraw: 0.01},
		{ID: "thermal-sensor", Type: "sensor-temp", Name: "DS18B20 Thermometer", PowerDraw: 0.01},
	}
}

// Lookup is Get with a missing id reported as ErrNotFound.
func Lookup(ctx context.Context, store Store, id string) (sim.ComponentDescriptor, error) {
	d, ok, err := store.Get(ctx, id)
	if err != nil {
		return sim.ComponentDescriptor{}, err
	}
	if !ok {
		return sim.ComponentDescriptor{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d, nil
}

// Seed writes descs into store, overwriting entries with the same id.
func Seed(ctx context.Context, store Store, descs []sim.ComponentDescriptor) error {
	for _, d := range descs {
		if err := store.Put(ctx, d); err != nil {
			return fmt.Errorf("seed %s: %w", d.ID, err)
		}
	}
	return nil
}

func validate(desc sim.ComponentDescriptor) error {
	if desc.ID == "" {
		return fmt.Errorf("component id is required")
	}
	if desc.PowerDraw < 0 {
		return fmt.Errorf("component %s: negative power draw %v", desc.ID, desc.PowerDraw)
	}
	return nil
}
