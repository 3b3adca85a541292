// Package qnet implements the capacity-aware routing core of swapnet.
//
// A [Network] is a directed weighted multigraph over integer node
// indices. Each edge weight is the residual EPR-pair-per-second
// capacity of that directed link; routing operations consume capacity
// in place. A scalar measurement probability q models the per-swap
// success factor: an end-to-end path of h hops delivers a net rate of
// gross·q^(h-1).
//
// Networks are not safe for concurrent use: routing mutates edge
// weights, and callers sharing an instance must serialise access.
package qnet

import (
	"math"
	"sort"

	"github.com/entglab/swapnet/pkg/errors"
	"github.com/entglab/swapnet/pkg/rv"
	"github.com/entglab/swapnet/pkg/topo"
)

// WeightedEdge is a directed edge carrying its residual capacity.
type WeightedEdge struct {
	U int
	V int
	W float64
}

// edgeRecord is an arena entry. Removed edges keep their slot so that
// edge IDs stay stable for the lifetime of the network.
type edgeRecord struct {
	from    int
	to      int
	weight  float64
	removed bool
}

// edgeRef is an adjacency entry: target node plus arena index.
type edgeRef struct {
	to int
	id int
}

// Network is a directed weighted multigraph with residual-capacity
// bookkeeping. Parallel edges are permitted and act as distinct
// capacity channels.
type Network struct {
	out      [][]edgeRef // per-node outgoing adjacency
	inDegree []int
	edges    []edgeRecord
	live     int
	q        float64 // measurement probability
}

// NewNetwork builds a network from an undirected link list, drawing one
// independent weight per directed edge from src. With bidirectional set,
// each link contributes both directions; otherwise only A→B is added.
func NewNetwork(links []topo.Link, src rv.Source, bidirectional bool) (*Network, error) {
	n := newNetwork(0)
	for _, l := range links {
		if err := n.checkEndpoints(l.A, l.B); err != nil {
			return nil, err
		}
		n.grow(max(l.A, l.B) + 1)
		if err := n.addEdge(l.A, l.B, src.Next()); err != nil {
			return nil, err
		}
		if bidirectional {
			if err := n.addEdge(l.B, l.A, src.Next()); err != nil {
				return nil, err
			}
		}
	}
	return n, nil
}

// NewNetworkFromWeights builds a network from an explicit weighted edge
// list, used verbatim. Duplicate (U, V) pairs create parallel edges.
func NewNetworkFromWeights(edges []WeightedEdge) (*Network, error) {
	n := newNetwork(0)
	for _, e := range edges {
		if err := n.checkEndpoints(e.U, e.V); err != nil {
			return nil, err
		}
		n.grow(max(e.U, e.V) + 1)
		if err := n.addEdge(e.U, e.V, e.W); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func newNetwork(nodes int) *Network {
	return &Network{
		out:      make([][]edgeRef, nodes),
		inDegree: make([]int, nodes),
		q:        1,
	}
}

func (n *Network) checkEndpoints(u, v int) error {
	if u < 0 || v < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "negative node index in edge (%d, %d)", u, v)
	}
	if u == v {
		return errors.New(errors.ErrCodeInvalidArgument, "self-loop on node %d", u)
	}
	return nil
}

func (n *Network) grow(nodes int) {
	for len(n.out) < nodes {
		n.out = append(n.out, nil)
		n.inDegree = append(n.inDegree, 0)
	}
}

func (n *Network) addEdge(u, v int, w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "edge (%d, %d) has invalid weight %v", u, v, w)
	}
	id := len(n.edges)
	n.edges = append(n.edges, edgeRecord{from: u, to: v, weight: w})
	n.out[u] = append(n.out[u], edgeRef{to: v, id: id})
	n.inDegree[v]++
	n.live++
	return nil
}

// removeEdge takes an edge out of the adjacency structure. Its arena
// slot is retained so outstanding edge IDs stay valid.
func (n *Network) removeEdge(id int) {
	rec := &n.edges[id]
	if rec.removed {
		return
	}
	rec.removed = true
	refs := n.out[rec.from]
	for i, ref := range refs {
		if ref.id == id {
			n.out[rec.from] = append(refs[:i], refs[i+1:]...)
			break
		}
	}
	n.inDegree[rec.to]--
	n.live--
}

// findEdge returns the arena index of the first live edge u→v.
func (n *Network) findEdge(u, v int) (int, bool) {
	if u < 0 || u >= len(n.out) {
		return 0, false
	}
	for _, ref := range n.out[u] {
		if ref.to == v {
			return ref.id, true
		}
	}
	return 0, false
}

// NumNodes returns the number of nodes.
func (n *Network) NumNodes() int { return len(n.out) }

// NumEdges returns the number of live directed edges.
func (n *Network) NumEdges() int { return n.live }

// TotalCapacity returns the sum of all residual edge capacities.
func (n *Network) TotalCapacity() float64 {
	var total float64
	for _, rec := range n.edges {
		if !rec.removed {
			total += rec.weight
		}
	}
	return total
}

// Weights returns the live edges with their residual capacities, in
// insertion order.
func (n *Network) Weights() []WeightedEdge {
	out := make([]WeightedEdge, 0, n.live)
	for _, rec := range n.edges {
		if !rec.removed {
			out = append(out, WeightedEdge{U: rec.from, V: rec.to, W: rec.weight})
		}
	}
	return out
}

// NodeCapacities returns, per node, the sum of outgoing residual
// capacities.
func (n *Network) NodeCapacities() []float64 {
	caps := make([]float64, len(n.out))
	for u, refs := range n.out {
		for _, ref := range refs {
			caps[u] += n.edges[ref.id].weight
		}
	}
	return caps
}

// InDegree returns the minimum and maximum in-degree across nodes.
func (n *Network) InDegree() (int, int) {
	return degreeRange(n.inDegree)
}

// OutDegree returns the minimum and maximum out-degree across nodes.
func (n *Network) OutDegree() (int, int) {
	degrees := make([]int, len(n.out))
	for u, refs := range n.out {
		degrees[u] = len(refs)
	}
	return degreeRange(degrees)
}

func degreeRange(degrees []int) (int, int) {
	if len(degrees) == 0 {
		return 0, 0
	}
	lo, hi := degrees[0], degrees[0]
	for _, d := range degrees[1:] {
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return lo, hi
}

// MeasurementProbability returns the per-swap success factor q.
func (n *Network) MeasurementProbability() float64 { return n.q }

// SetMeasurementProbability sets q. Values outside [0, 1] are rejected.
func (n *Network) SetMeasurementProbability(q float64) error {
	if math.IsNaN(q) || q < 0 || q > 1 {
		return errors.New(errors.ErrCodeInvalidArgument, "measurement probability %v outside [0, 1]", q)
	}
	n.q = q
	return nil
}

// ReachableNodes returns, for every source u, the sorted set of nodes v
// whose shortest directed hop distance ℓ(u, v) satisfies
// minHops ≤ ℓ(u, v) ≤ maxHops. The second return value is the graph
// diameter: the largest ℓ over all reachable pairs, regardless of the
// bounds. Sources that reach nothing map to empty sets.
func (n *Network) ReachableNodes(minHops, maxHops int) (map[int][]int, int) {
	reachable := make(map[int][]int, len(n.out))
	diameter := 0
	for u := range n.out {
		dist := n.hopDistances(u)
		selected := []int{}
		for v, d := range dist {
			if v == u || d < 0 {
				continue
			}
			if d > diameter {
				diameter = d
			}
			if d >= minHops && d <= maxHops {
				selected = append(selected, v)
			}
		}
		sort.Ints(selected)
		reachable[u] = selected
	}
	return reachable, diameter
}

// hopDistances runs a BFS over live edges and returns the hop distance
// from src to every node, -1 where unreachable.
func (n *Network) hopDistances(src int) []int {
	dist := make([]int, len(n.out))
	for i := range dist {
		dist[i] = -1
	}
	dist[src] = 0
	queue := []int{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, ref := range n.out[u] {
			if dist[ref.to] < 0 {
				dist[ref.to] = dist[u] + 1
				queue = append(queue, ref.to)
			}
		}
	}
	return dist
}

// AddCapacityToPath adds delta (possibly negative) to every edge along
// src → hops[0] → hops[1] → …. The operation is two-phase: if any edge
// is absent or any resulting weight would become negative, no weight is
// changed.
func (n *Network) AddCapacityToPath(src int, hops []int, delta float64) error {
	if len(hops) == 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "empty path")
	}
	if src < 0 || src >= len(n.out) {
		return errors.New(errors.ErrCodeInvalidArgument, "source node %d out of range", src)
	}

	ids := make([]int, 0, len(hops))
	u := src
	for _, v := range hops {
		if v < 0 || v >= len(n.out) {
			return errors.New(errors.ErrCodeInvalidArgument, "path node %d out of range", v)
		}
		id, ok := n.findEdge(u, v)
		if !ok {
			return errors.New(errors.ErrCodeInvalidArgument, "no edge (%d, %d) in the network", u, v)
		}
		if n.edges[id].weight+delta < 0 {
			return errors.New(errors.ErrCodeInvalidArgument,
				"adding %v to edge (%d, %d) would make its capacity negative", delta, u, v)
		}
		ids = append(ids, id)
		u = v
	}

	for _, id := range ids {
		n.edges[id].weight += delta
	}
	return nil
}

// pathBottleneck returns the smallest residual capacity along
// src → hops…, or 0 if any edge is missing.
func (n *Network) pathBottleneck(src int, hops []int) float64 {
	bottleneck := math.Inf(1)
	u := src
	for _, v := range hops {
		id, ok := n.findEdge(u, v)
		if !ok {
			return 0
		}
		if w := n.edges[id].weight; w < bottleneck {
			bottleneck = w
		}
		u = v
	}
	if math.IsInf(bottleneck, 1) {
		return 0
	}
	return bottleneck
}
