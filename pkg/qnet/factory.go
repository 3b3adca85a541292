package qnet

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/entglab/swapnet/pkg/errors"
	"github.com/entglab/swapnet/pkg/geo"
	"github.com/entglab/swapnet/pkg/rv"
	"github.com/entglab/swapnet/pkg/topo"
)

const (
	// maxConstructAttempts bounds the connectivity retry loop.
	maxConstructAttempts = 1_000_000
	// seedAdvance moves each retry onto a disjoint stream segment.
	seedAdvance = 1_000_000
)

// NewNetworkPPP builds a bidirectional capacity network from a Poisson
// point process on a gridLength×gridLength square. Sites within
// threshold of each other are linked with probability linkProbability;
// edge capacities are drawn from src. Construction retries with a fresh
// point-process seed until the link set is connected, failing with
// COULD_NOT_CONSTRUCT after the retry budget.
//
// Returns the network and the site coordinates, aligned with the node
// indices.
func NewNetworkPPP(src rv.Source, seed uint64, mu, gridLength, threshold, linkProbability float64) (*Network, []geo.Coordinate, error) {
	pppSeed := seed
	for attempt := 0; attempt < maxConstructAttempts; attempt++ {
		points := topo.NewPoissonGrid(mu, pppSeed, gridLength, gridLength).Sample()
		links := topo.FindLinks(points, threshold, linkProbability, seed)
		if topo.Connected(links) {
			n, err := NewNetwork(links, src, true)
			if err != nil {
				return nil, nil, err
			}
			return n, points, nil
		}
		log.Debug("topology not connected, trying a fresh seed", "seed", pppSeed, "sites", len(points))
		pppSeed += seedAdvance
	}
	return nil, nil, errors.New(errors.ErrCodeCouldNotConstruct,
		"could not find a connected network after %d tries", maxConstructAttempts)
}

// NewNetworkGraphML builds a bidirectional capacity network from a
// GraphML topology, drawing edge capacities from src. Fails with
// NOT_CONNECTED if the imported link set is not a single component.
func NewNetworkGraphML(src rv.Source, r io.Reader) (*Network, []geo.Coordinate, error) {
	links, coordinates, err := topo.ReadGraphML(r)
	if err != nil {
		return nil, nil, err
	}
	if !topo.Connected(links) {
		return nil, nil, errors.New(errors.ErrCodeNotConnected, "the GraphML network is not fully connected")
	}
	n, err := NewNetwork(links, src, true)
	if err != nil {
		return nil, nil, err
	}
	return n, coordinates, nil
}
