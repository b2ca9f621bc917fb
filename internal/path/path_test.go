package path

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/robalobadob/pathrecall/internal/grid"
)

func TestGenerateProducesAdjacentWalk(t *testing.T) {
	for size := 2; size <= 12; size++ {
		g := grid.Grid{Size: size}
		for length := 1; length <= 20; length++ {
			for seed := uint64(0); seed < 5; seed++ {
				src := rand.New(rand.NewPCG(seed, uint64(size*100+length)))
				p, err := Generate(src, g, length)
				if err != nil {
					t.Fatalf("Generate(size=%d, len=%d) failed: %v", size, length, err)
				}
				if len(p) != length {
					t.Fatalf("size=%d len=%d: got %d cells", size, length, len(p))
				}
				for i, c := range p {
					if !g.Contains(c) {
						t.Fatalf("size=%d: cell %d out of range in %v", size, c, p)
					}
					if i > 0 && !g.Adjacent(p[i-1], c) {
						t.Fatalf("size=%d: %d and %d are not adjacent in %v", size, p[i-1], c, p)
					}
				}
			}
		}
	}
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	g := grid.Grid{Size: 12}
	a, err := Generate(rand.New(rand.NewPCG(7, 9)), g, 8)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(rand.New(rand.NewPCG(7, 9)), g, 8)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced %v and %v", a, b)
		}
	}
}

// scripted replays fixed draws so the walk can be steered.
type scripted struct {
	draws []int
	i     int
}

func (s *scripted) IntN(n int) int {
	v := s.draws[s.i] % n
	s.i++
	return v
}

func TestGenerateFollowsDrawnNeighbors(t *testing.T) {
	g := grid.Grid{Size: 12}
	// Start at 5; neighbor lists are ordered up, down, left, right, so on the
	// top edge index 0 is "down" and in the interior index 1 is "down".
	src := &scripted{draws: []int{5, 0, 1}}
	p, err := Generate(src, g, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{5, 17, 29}
	for i := range want {
		if p[i] != want[i] {
			t.Fatalf("got %v, want %v", p, want)
		}
	}
}

func TestGenerateAllowsDoublingBack(t *testing.T) {
	g := grid.Grid{Size: 12}
	// 0 -> down (12) -> up (0)
	src := &scripted{draws: []int{0, 0, 0}}
	p, err := Generate(src, g, 3)
	if err != nil {
		t.Fatal(err)
	}
	if p[0] != 0 || p[1] != 12 || p[2] != 0 {
		t.Fatalf("expected walk to double back, got %v", p)
	}
}

func TestGenerateErrors(t *testing.T) {
	src := rand.New(rand.NewPCG(1, 1))

	cases := []struct {
		name   string
		g      grid.Grid
		length int
		want   error
	}{
		{"zero length", grid.Grid{Size: 12}, 0, ErrInvalidLength},
		{"negative length", grid.Grid{Size: 12}, -3, ErrInvalidLength},
		{"zero grid", grid.Grid{Size: 0}, 4, ErrInvalidGrid},
		{"single cell walk", grid.Grid{Size: 1}, 2, ErrDeadEnd},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Generate(src, tc.g, tc.length); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	p, err := Generate(src, grid.Grid{Size: 1}, 1)
	if err != nil || len(p) != 1 || p[0] != 0 {
		t.Fatalf("single cell, length 1: got %v, %v", p, err)
	}
}

func TestCryptoSourceRange(t *testing.T) {
	var src CryptoSource
	for i := 0; i < 500; i++ {
		if v := src.IntN(4); v < 0 || v >= 4 {
			t.Fatalf("IntN(4) = %d", v)
		}
	}
	p, err := Generate(src, grid.Grid{Size: 12}, 8)
	if err != nil || len(p) != 8 {
		t.Fatalf("Generate with CryptoSource: %v, %v", p, err)
	}
}
