// internal/grid/grid.go
//
// Square tile grid addressed by a flat cell index.
//
// A grid of size N has N*N cells numbered 0..N*N-1 in row-major order:
//   row = index / N
//   col = index % N
//
// The grid holds no state besides its size; it only answers geometry
// questions (bounds, coordinates, orthogonal neighbors).

package grid

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned by New for non-positive sizes.
var ErrInvalidSize = errors.New("grid: size must be positive")

// Grid is an implicit Size x Size board.
type Grid struct {
	Size int
}

// New validates size and returns a Grid.
func New(size int) (Grid, error) {
	if size <= 0 {
		return Grid{}, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	return Grid{Size: size}, nil
}

// Cells returns the number of cells on the grid.
func (g Grid) Cells() int { return g.Size * g.Size }

// Contains reports whether index addresses a cell on the grid.
func (g Grid) Contains(index int) bool {
	return index >= 0 && index < g.Cells()
}

// Coord splits a flat index into its row and column.
func (g Grid) Coord(index int) (row, col int) {
	return index / g.Size, index % g.Size
}

// Index joins a row and column into a flat index.
func (g Grid) Index(row, col int) int {
	return row*g.Size + col
}

// Neighbors returns the orthogonal neighbors of index in the order
// up, down, left, right. Cells off the grid are skipped, so a corner has 2
// neighbors, an edge cell 3 and an interior cell 4.
func (g Grid) Neighbors(index int) []int {
	if !g.Contains(index) {
		return nil
	}
	row, col := g.Coord(index)
	out := make([]int, 0, 4)
	if row > 0 {
		out = append(out, index-g.Size) // up
	}
	if row < g.Size-1 {
		out = append(out, index+g.Size) // down
	}
	if col > 0 {
		out = append(out, index-1) // left
	}
	if col < g.Size-1 {
		out = append(out, index+1) // right
	}
	return out
}

// Adjacent reports whether b is an orthogonal neighbor of a.
func (g Grid) Adjacent(a, b int) bool {
	if !g.Contains(a) || !g.Contains(b) {
		return false
	}
	ar, ac := g.Coord(a)
	br, bc := g.Coord(b)
	return abs(ar-br)+abs(ac-bc) == 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
