// Package topo generates and imports repeater network topologies.
//
// Random topologies are produced by dropping repeater sites on a
// rectangle with a Poisson point process and linking sites that are
// within optical range of each other. Deterministic topologies are read
// from GraphML files. Both paths yield the same output shape: an
// undirected link list plus one coordinate per site, aligned by index.
package topo

import (
	"math"

	"github.com/entglab/swapnet/pkg/geo"
	"github.com/entglab/swapnet/pkg/rv"
)

// PoissonGrid samples repeater positions on a W×H rectangle. The number
// of positions per draw follows a Poisson distribution with rate Mu;
// each position is uniform on the rectangle. Successive calls to
// [PoissonGrid.Sample] advance the same generator state, so they are
// independent draws of the same process.
type PoissonGrid struct {
	mu     float64
	width  float64
	height float64
	src    *rv.Uniform
}

// NewPoissonGrid creates a grid sampler with rate mu on [0,w]×[0,h],
// seeded with seed.
func NewPoissonGrid(mu float64, seed uint64, w, h float64) *PoissonGrid {
	return &PoissonGrid{
		mu:     mu,
		width:  w,
		height: h,
		src:    rv.NewUniform(0, 1, seed),
	}
}

// Sample returns one draw of the point process. The returned slice may
// be empty: Poisson(mu) has positive mass at zero for any finite mu.
func (g *PoissonGrid) Sample() []geo.Coordinate {
	n := g.poisson()
	points := make([]geo.Coordinate, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, geo.Coordinate{
			X: g.src.Next() * g.width,
			Y: g.src.Next() * g.height,
		})
	}
	return points
}

// poisson draws a Poisson(mu) count from the uniform stream with Knuth's
// product method: uniforms are multiplied until the product falls to
// exp(-mu) or below.
func (g *PoissonGrid) poisson() int {
	limit := math.Exp(-g.mu)
	k := 0
	p := 1.0
	for {
		k++
		p *= g.src.Next()
		if p <= limit {
			return k - 1
		}
	}
}
