// internal/path/path.go
//
// Random-walk path generation over a grid.
//
// A path starts on a uniformly random cell and grows one step at a time by
// picking a uniformly random orthogonal neighbor of the last cell. The walk
// may revisit cells and may step straight back to where it came from.

package path

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/robalobadob/pathrecall/internal/grid"
)

var (
	ErrInvalidLength = errors.New("path: length must be positive")
	ErrInvalidGrid   = errors.New("path: grid size must be positive")
	ErrDeadEnd       = errors.New("path: cell has no neighbors")
)

// Source supplies uniform integers in [0, n). *math/rand/v2.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// Generate returns a walk of exactly length cells on g.
func Generate(src Source, g grid.Grid, length int) ([]int, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLength, length)
	}
	if g.Size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidGrid, g.Size)
	}

	out := make([]int, 0, length)
	current := src.IntN(g.Cells())
	out = append(out, current)

	for len(out) < length {
		neighbors := g.Neighbors(current)
		if len(neighbors) == 0 {
			return nil, fmt.Errorf("%w: %d", ErrDeadEnd, current)
		}
		current = neighbors[src.IntN(len(neighbors))]
		out = append(out, current)
	}
	return out, nil
}

// CryptoSource draws from crypto/rand. The zero value is ready to use.
type CryptoSource struct{}

// IntN returns a uniform integer in [0, n). It panics if n <= 0.
func (CryptoSource) IntN(n int) int {
	if n <= 0 {
		panic("path: CryptoSource.IntN called with n <= 0")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("path: crypto/rand: %v", err))
	}
	return int(v.Int64())
}
