// Package planner turns a goal cell into a command sequence for the engine.
// It stands in for the external translation service that normally produces
// commands; the engine itself never plans.
package planner

import (
	"errors"

	"robosim/internal/sim"
	"robosim/internal/world"
)

var ErrNoPath = errors.New("no path to goal")

// Pose is where the robot starts and which way it faces.
type Pose struct {
	X, Y      int
	Direction sim.Direction
}

type cell struct{ x, y int }

// FindPath runs a BFS over free cells and returns the cells from start to goal,
// both included.
func FindPath(g *world.Grid, sx, sy, gx, gy int) ([][2]int, bool) {
	if !g.IsFree(gx, gy) || !g.InBounds(sx, sy) {
		return nil, false
	}
	moves := []cell{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	start := cell{sx, sy}
	goal := cell{gx, gy}
	prev := map[cell]cell{}
	visited := map[cell]bool{start: true}
	q := []cell{start}
	for len(q) > 0 {
		cur := q[0]
		q = q[1:]
		if cur == goal {
			var path [][2]int
			for c := cur; ; c = prev[c] {
				path = append(path, [2]int{c.x, c.y})
				if c == start {
					break
				}
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path, true
		}
		for _, mv := range moves {
			n := cell{cur.x + mv.x, cur.y + mv.y}
			if g.IsFree(n.x, n.y) && !visited[n] {
				visited[n] = true
				prev[n] = cur
				q = append(q, n)
			}
		}
	}
	return nil, false
}

// Plan returns the turns and FORWARD commands that drive the robot from pose to
// the goal along a shortest path. Reaching the goal from itself needs no commands.
func Plan(g *world.Grid, from Pose, gx, gy int) ([]sim.Command, error) {
	if from.X == gx && from.Y == gy {
		return nil, nil
	}
	path, ok := FindPath(g, from.X, from.Y, gx, gy)
	if !ok {
		return nil, ErrNoPath
	}
	var cmds []sim.Command
	heading := from.Direction
	for i := 1; i < len(path); i++ {
		want := headingFor(path[i][0]-path[i-1][0], path[i][1]-path[i-1][1])
		cmds = append(cmds, turns(heading, want)...)
		cmds = append(cmds, sim.Forward)
		heading = want
	}
	return cmds, nil
}

func headingFor(dx, dy int) sim.Direction {
	switch {
	case dx > 0:
		return sim.Right
	case dx < 0:
		return sim.Left
	case dy > 0:
		return sim.Down
	}
	return sim.Up
}

// turns picks the shorter rotation from one heading to another.
func turns(from, to sim.Direction) []sim.Command {
	switch (to - from + 360) % 360 {
	case 90:
		return []sim.Command{sim.TurnRight}
	case 180:
		return []sim.Command{sim.TurnRight, sim.TurnRight}
	case 270:
		return []sim.Command{sim.TurnLeft}
	}
	return nil
}
