package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/entglab/swapnet/pkg/errors"
	"github.com/entglab/swapnet/pkg/geo"
	"github.com/entglab/swapnet/pkg/qnet"
	"github.com/entglab/swapnet/pkg/rv"
)

// Scenario is the TOML description of one routing experiment: where the
// network comes from, the demands to place on it, and the routing
// parameters.
type Scenario struct {
	Network NetworkSpec    `toml:"network"`
	Flows   []FlowSpec     `toml:"flows"`
	Apps    []AppSpec      `toml:"apps"`
	Routing RoutingOptions `toml:"routing"`
}

// NetworkSpec selects and parameterises the network source.
type NetworkSpec struct {
	Source string `toml:"source"` // "ppp", "graphml" or "edges"

	// Poisson point process parameters (source = "ppp").
	Mu              float64 `toml:"mu"`
	GridLength      float64 `toml:"grid_length"`
	Threshold       float64 `toml:"threshold"`
	LinkProbability float64 `toml:"link_probability"`
	Seed            uint64  `toml:"seed"`

	// Capacity draw bounds for generated edges (ppp and graphml).
	MinCapacity float64 `toml:"min_capacity"`
	MaxCapacity float64 `toml:"max_capacity"`

	// GraphML file path (source = "graphml").
	GraphML string `toml:"graphml"`

	// Explicit weighted edge list (source = "edges"): [u, v, weight].
	Edges [][]float64 `toml:"edges"`

	MeasurementProbability float64 `toml:"measurement_probability"`
}

// FlowSpec is one point-to-point demand.
type FlowSpec struct {
	Src          int     `toml:"src"`
	Dst          int     `toml:"dst"`
	MinGrossRate float64 `toml:"min_gross_rate"`
}

// AppSpec is one multi-destination demand.
type AppSpec struct {
	Src      int     `toml:"src"`
	Targets  []int   `toml:"targets"`
	Priority float64 `toml:"priority"`
}

// RoutingOptions parameterise application routing.
type RoutingOptions struct {
	PathLengthFactor float64 `toml:"path_length_factor"`
	NumPaths         int     `toml:"num_paths"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "reading scenario %s", path)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a TOML scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "decoding scenario")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	n := &s.Network
	switch n.Source {
	case "ppp":
		if n.Mu <= 0 || n.GridLength <= 0 || n.Threshold <= 0 {
			return errors.New(errors.ErrCodeInvalidScenario,
				"ppp network needs positive mu, grid_length and threshold")
		}
		if n.LinkProbability < 0 || n.LinkProbability > 1 {
			return errors.New(errors.ErrCodeInvalidScenario,
				"link_probability %v outside [0, 1]", n.LinkProbability)
		}
	case "graphml":
		if n.GraphML == "" {
			return errors.New(errors.ErrCodeInvalidScenario, "graphml network needs a file path")
		}
	case "edges":
		if len(n.Edges) == 0 {
			return errors.New(errors.ErrCodeInvalidScenario, "edge-list network has no edges")
		}
		for i, e := range n.Edges {
			if len(e) != 3 {
				return errors.New(errors.ErrCodeInvalidScenario,
					"edge %d has %d elements, want [u, v, weight]", i, len(e))
			}
		}
	default:
		return errors.New(errors.ErrCodeInvalidScenario,
			"unknown network source %q (want ppp, graphml or edges)", n.Source)
	}

	if n.Source != "edges" && n.MinCapacity >= n.MaxCapacity {
		return errors.New(errors.ErrCodeInvalidScenario,
			"capacity bounds [%v, %v) are empty", n.MinCapacity, n.MaxCapacity)
	}
	if q := n.MeasurementProbability; q < 0 || q > 1 {
		return errors.New(errors.ErrCodeInvalidScenario,
			"measurement_probability %v outside [0, 1]", q)
	}
	if len(s.Apps) > 0 {
		if s.Routing.PathLengthFactor < 1 {
			return errors.New(errors.ErrCodeInvalidScenario,
				"path_length_factor %v is below 1", s.Routing.PathLengthFactor)
		}
		if s.Routing.NumPaths < 1 {
			return errors.New(errors.ErrCodeInvalidScenario,
				"num_paths %d is below 1", s.Routing.NumPaths)
		}
	}
	return nil
}

// BuildNetwork constructs the scenario's network and applies the
// measurement probability. A zero or absent measurement_probability
// leaves the network's default of 1. The returned coordinates are nil
// for edge-list networks, which carry no geometry.
func (s *Scenario) BuildNetwork() (*qnet.Network, []geo.Coordinate, error) {
	n := &s.Network
	var (
		network     *qnet.Network
		coordinates []geo.Coordinate
		err         error
	)
	switch n.Source {
	case "ppp":
		src := rv.NewUniform(n.MinCapacity, n.MaxCapacity, n.Seed)
		network, coordinates, err = qnet.NewNetworkPPP(src, n.Seed, n.Mu, n.GridLength, n.Threshold, n.LinkProbability)
	case "graphml":
		f, openErr := os.Open(n.GraphML)
		if openErr != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeIO, openErr, "opening %s", n.GraphML)
		}
		defer f.Close()
		src := rv.NewUniform(n.MinCapacity, n.MaxCapacity, n.Seed)
		network, coordinates, err = qnet.NewNetworkGraphML(src, f)
	case "edges":
		edges := make([]qnet.WeightedEdge, len(n.Edges))
		for i, e := range n.Edges {
			edges[i] = qnet.WeightedEdge{U: int(e[0]), V: int(e[1]), W: e[2]}
		}
		network, err = qnet.NewNetworkFromWeights(edges)
	}
	if err != nil {
		return nil, nil, err
	}

	if q := n.MeasurementProbability; q > 0 {
		if err := network.SetMeasurementProbability(q); err != nil {
			return nil, nil, err
		}
	}
	return network, coordinates, nil
}
