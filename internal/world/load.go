package world

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads a grid file.
// Format:
// first line: W H sizes
// then H lines of W integers, 0 for empty and 1 for obstacle
func Load(r io.Reader) (*Grid, error) {
	var w, h int
	if _, err := fmt.Fscan(r, &w, &h); err != nil {
		return nil, fmt.Errorf("read grid size: %w", err)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("grid size %dx%d: %w", w, h, ErrEmptyGrid)
	}
	g := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var c int
			if _, err := fmt.Fscan(r, &c); err != nil {
				if errors.Is(err, io.EOF) {
					return nil, fmt.Errorf("grid truncated at cell (%d,%d)", x, y)
				}
				return nil, fmt.Errorf("read cell (%d,%d): %w", x, y, err)
			}
			switch c {
			case 0:
			case 1:
				g.cells[y][x] = Obstacle
			default:
				return nil, fmt.Errorf("cell (%d,%d): invalid value %d", x, y, c)
			}
		}
	}
	return g, nil
}

func LoadFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// FromRows builds a grid from a picture such as
//
//	"..#."
//	"...."
//
// where '#' or '1' marks an obstacle and '.' or '0' an empty cell.
func FromRows(rows []string) (*Grid, error) {
	if len(rows) == 0 || len(strings.TrimSpace(rows[0])) == 0 {
		return nil, ErrEmptyGrid
	}
	width := len(strings.TrimSpace(rows[0]))
	g := New(width, len(rows))
	for y, raw := range rows {
		row := strings.TrimSpace(raw)
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d cells, want %d", y, len(row), width)
		}
		for x, ch := range row {
			switch ch {
			case '.', '0':
			case '#', '1':
				g.cells[y][x] = Obstacle
			default:
				return nil, fmt.Errorf("row %d col %d: unexpected %q", y, x, ch)
			}
		}
	}
	return g, nil
}
