package sim

const (
	// NoDistance is reported when no forward distance sensor is mounted.
	NoDistance = 999.0
	// MaxRange is reported when nothing blocks the ray within RayCells cells.
	MaxRange = 100.0
	RayCells = 10
	CellSize = 10.0 // simulated centimetres per cell

	AmbientTemperature = 24.0
	AmbientLight       = 80.0
	temperatureJitter  = 2.0
	lightJitter        = 10.0
)

// readSensors samples every channel using the current pose. Distance is gated by
// the front slot; temperature and light are ambient and always sampled.
func (e *Engine) readSensors(collision bool) SensorReading {
	return SensorReading{
		Distance:    e.rangeAhead(),
		Temperature: AmbientTemperature + e.rng.Float64()*temperatureJitter,
		Light:       AmbientLight - e.rng.Float64()*lightJitter,
		Collision:   collision,
	}
}

// rangeAhead casts a ray along the heading; the first blocked cell at step i
// reads i*CellSize.
func (e *Engine) rangeAhead() float64 {
	if !e.cfg.CanRange() {
		return NoDistance
	}
	dx, dy := e.state.Direction.Delta()
	x, y := e.state.X, e.state.Y
	for i := 1; i <= RayCells; i++ {
		x += dx
		y += dy
		if !e.grid.InBounds(x, y) || e.grid.IsObstacle(x, y) {
			return float64(i) * CellSize
		}
	}
	return MaxRange
}
