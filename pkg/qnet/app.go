package qnet

import (
	"math"
	"slices"
	"sort"

	"github.com/entglab/swapnet/pkg/errors"
)

// PathAllocation records capacity granted to one candidate path.
// Repeated grants to the same path accumulate into a single record.
type PathAllocation struct {
	Hops      []int   // hop sequence, excluding the app source
	GrossRate float64 // total gross rate granted on this path
	NetRate   float64 // gross·q^(hops-1) at grant time
}

// CandidatePath is an enumerated path towards one target of an app.
type CandidatePath struct {
	Target int
	Hops   []int // excluding the app source
}

// AppDescriptor is a multi-destination demand: one source node serving
// a set of target nodes with a given priority. Routing fills in the
// output fields. A descriptor belongs to its caller and is mutated only
// during a single RouteApps call.
type AppDescriptor struct {
	Src      int
	Targets  []int
	Priority float64

	// Output fields.
	Allocated      map[int][]PathAllocation // target → granted paths
	RemainingPaths []CandidatePath          // candidates not yet drained; empty after routing
	Visits         int                      // packing-loop turns taken by this app
}

// GrossRate returns the total gross rate granted to the app.
func (a *AppDescriptor) GrossRate() float64 {
	var total float64
	for _, allocs := range a.Allocated {
		for _, alloc := range allocs {
			total += alloc.GrossRate
		}
	}
	return total
}

// NetRate returns the total end-to-end rate after swap losses.
func (a *AppDescriptor) NetRate() float64 {
	var total float64
	for _, allocs := range a.Allocated {
		for _, alloc := range allocs {
			total += alloc.NetRate
		}
	}
	return total
}

// RouteApps packs the given apps onto the network.
//
// All apps are validated up front; any invalid descriptor fails the
// whole call before any mutation. For each app and target, up to k
// shortest directed paths (hop metric, Yen) are enumerated, keeping
// those no longer than ceil(factor·ℓ*) where ℓ* is the shortest hop
// count to that target; the union forms the app's candidate set.
//
// Packing then proceeds in turns: apps rotate in descending-priority
// order, and each turn counts one visit. A turn either retires an app
// whose candidate set is empty, discards one candidate that has no
// feasible rate left, or grants capacity on the app's best candidate
// (largest bottleneck, ties to the shorter then lexicographically
// smaller path). A grant is capped at factor·q^(hops-1), so competing
// apps drain shared links in small quanta rather than in one claim; the
// final grant on a path takes whatever bottleneck remains. Edges driven
// to zero are removed from the graph. The loop ends when every app has
// retired.
func (n *Network) RouteApps(apps []*AppDescriptor, factor float64, k int) error {
	if factor < 1 {
		return errors.New(errors.ErrCodeInvalidArgument, "path length factor %v is below 1", factor)
	}
	if k < 1 {
		return errors.New(errors.ErrCodeInvalidArgument, "number of paths %d is below 1", k)
	}
	for _, a := range apps {
		if err := n.checkApp(a); err != nil {
			return err
		}
	}

	for _, a := range apps {
		a.Allocated = make(map[int][]PathAllocation)
		a.Visits = 0
		a.RemainingPaths = n.enumerateCandidates(a, factor, k)
	}

	// Rotation order: descending priority, stable on the input order.
	rotation := make([]*AppDescriptor, len(apps))
	copy(rotation, apps)
	sort.SliceStable(rotation, func(i, j int) bool {
		return rotation[i].Priority > rotation[j].Priority
	})

	for len(rotation) > 0 {
		a := rotation[0]
		rotation = rotation[1:]
		a.Visits++
		if len(a.RemainingPaths) == 0 {
			continue // retired
		}

		best, bottleneck := n.bestCandidate(a)
		if bottleneck <= 0 {
			a.RemainingPaths = slices.Delete(a.RemainingPaths, best, best+1)
			rotation = append(rotation, a)
			continue
		}

		candidate := a.RemainingPaths[best]
		grant := bottleneck
		if quantum := factor * pow(n.q, len(candidate.Hops)-1); quantum > 0 && quantum < bottleneck {
			grant = quantum
		}
		n.deductOnPath(a.Src, candidate.Hops, grant)
		a.record(candidate, grant, n.q)
		if grant >= bottleneck {
			a.RemainingPaths = slices.Delete(a.RemainingPaths, best, best+1)
		}
		rotation = append(rotation, a)
	}
	return nil
}

func (n *Network) checkApp(a *AppDescriptor) error {
	if a.Src < 0 || a.Src >= len(n.out) {
		return errors.New(errors.ErrCodeInvalidArgument, "app source %d out of range", a.Src)
	}
	if len(a.Targets) == 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "app with source %d has no targets", a.Src)
	}
	for _, t := range a.Targets {
		if t < 0 || t >= len(n.out) {
			return errors.New(errors.ErrCodeInvalidArgument, "app target %d out of range", t)
		}
		if t == a.Src {
			return errors.New(errors.ErrCodeInvalidArgument, "app target %d equals its source", t)
		}
	}
	if a.Priority <= 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "app priority %v is not positive", a.Priority)
	}
	return nil
}

// enumerateCandidates builds the candidate set of an app: for every
// target in ascending order, the k shortest paths by hop count, pruned
// to ceil(factor·ℓ*).
func (n *Network) enumerateCandidates(a *AppDescriptor, factor float64, k int) []CandidatePath {
	targets := slices.Clone(a.Targets)
	sort.Ints(targets)
	targets = slices.Compact(targets)

	var candidates []CandidatePath
	for _, t := range targets {
		paths := n.kShortestPaths(a.Src, t, k)
		if len(paths) == 0 {
			continue
		}
		shortest := len(paths[0]) - 1
		maxLen := int(math.Ceil(factor * float64(shortest)))
		for _, p := range paths {
			if len(p)-1 > maxLen {
				continue
			}
			candidates = append(candidates, CandidatePath{Target: t, Hops: slices.Clone(p[1:])})
		}
	}
	return candidates
}

// bestCandidate returns the index of the candidate with the largest
// feasible gross rate, ties broken by shorter then lexicographically
// smaller hop sequence, along with that rate.
func (n *Network) bestCandidate(a *AppDescriptor) (int, float64) {
	best := 0
	bestRate := n.pathBottleneck(a.Src, a.RemainingPaths[0].Hops)
	for i := 1; i < len(a.RemainingPaths); i++ {
		rate := n.pathBottleneck(a.Src, a.RemainingPaths[i].Hops)
		if rate > bestRate {
			best, bestRate = i, rate
			continue
		}
		if rate == bestRate && pathLess(a.RemainingPaths[i].Hops, a.RemainingPaths[best].Hops) {
			best = i
		}
	}
	return best, bestRate
}

// deductOnPath subtracts the grant from every edge on the path and
// removes edges whose capacity is exhausted.
func (n *Network) deductOnPath(src int, hops []int, grant float64) {
	u := src
	for _, v := range hops {
		id, _ := n.findEdge(u, v)
		n.edges[id].weight -= grant
		if n.edges[id].weight <= 0 {
			n.edges[id].weight = 0
			n.removeEdge(id)
		}
		u = v
	}
}

// record merges a grant into the app's allocation map.
func (a *AppDescriptor) record(c CandidatePath, grant, q float64) {
	allocs := a.Allocated[c.Target]
	for i := range allocs {
		if slices.Equal(allocs[i].Hops, c.Hops) {
			allocs[i].GrossRate += grant
			allocs[i].NetRate = allocs[i].GrossRate * pow(q, len(c.Hops)-1)
			return
		}
	}
	a.Allocated[c.Target] = append(allocs, PathAllocation{
		Hops:      slices.Clone(c.Hops),
		GrossRate: grant,
		NetRate:   grant * pow(q, len(c.Hops)-1),
	})
}
