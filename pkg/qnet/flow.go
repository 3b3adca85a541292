package qnet

import (
	"github.com/entglab/swapnet/pkg/errors"
)

// FlowDescriptor is a point-to-point demand with a minimum acceptable
// gross rate. Routing fills in the output fields; an unroutable flow
// ends up with an empty path and zero gross rate, which is a legitimate
// outcome rather than an error.
type FlowDescriptor struct {
	Src          int
	Dst          int
	MinGrossRate float64

	// Output fields, owned by the caller and filled by RouteFlows.
	Path          []int   // hop sequence, excluding Src
	GrossRate     float64 // allocated EPR pairs per second
	DijkstraCalls int     // shortest-path invocations, cumulative per routing call
}

// NetRate returns the end-to-end rate after swap losses: gross·q^(h-1)
// for a path of h hops under measurement probability q.
func (f *FlowDescriptor) NetRate(q float64) float64 {
	if len(f.Path) == 0 {
		return 0
	}
	return f.GrossRate * pow(q, len(f.Path)-1)
}

// AdmissionPolicy inspects a candidate flow, with Path and GrossRate
// filled in, and reports whether it may be admitted.
type AdmissionPolicy func(*FlowDescriptor) bool

// RouteFlows admits the given flows in order, one path each.
//
// Every flow is validated first; if any is invalid the whole call fails
// without touching the network. Per flow, a Dijkstra search over the
// reciprocal of the residual capacity (edges below MinGrossRate
// excluded) proposes the widest-tending path; the achievable gross rate
// is the path bottleneck. A candidate is discarded when its net rate
// after swap losses drops below MinGrossRate, or when the admission
// policy rejects it; either way the search repeats with the path's
// minimum-capacity edge excluded, until admission or exhaustion.
// Admitted rates are deducted from every edge on the path.
//
// Each flow's DijkstraCalls field receives the running number of
// searches performed by this call up to and including that flow.
func (n *Network) RouteFlows(flows []*FlowDescriptor, admit AdmissionPolicy) error {
	for _, f := range flows {
		if err := n.checkFlow(f); err != nil {
			return err
		}
	}

	calls := 0
	for _, f := range flows {
		f.Path = nil
		f.GrossRate = 0
		excluded := make(map[int]bool)
		for {
			calls++
			f.DijkstraCalls = calls
			hops, minEdge, ok := n.shortestPathRecip(f.Src, f.Dst, f.MinGrossRate, excluded)
			if !ok {
				break
			}
			rate := n.edges[minEdge].weight
			if rate*pow(n.q, len(hops)-1) < f.MinGrossRate {
				// The path is wide enough per hop but too long to
				// deliver the requested rate after swap losses.
				excluded[minEdge] = true
				continue
			}
			if admit != nil {
				candidate := *f
				candidate.Path = hops
				candidate.GrossRate = rate
				if !admit(&candidate) {
					excluded[minEdge] = true
					continue
				}
			}
			u := f.Src
			for _, v := range hops {
				id, _ := n.findEdge(u, v)
				n.edges[id].weight -= rate
				u = v
			}
			f.Path = hops
			f.GrossRate = rate
			break
		}
	}
	return nil
}

func (n *Network) checkFlow(f *FlowDescriptor) error {
	if f.Src == f.Dst {
		return errors.New(errors.ErrCodeInvalidArgument, "flow source and destination coincide (%d)", f.Src)
	}
	if f.Src < 0 || f.Src >= len(n.out) {
		return errors.New(errors.ErrCodeInvalidArgument, "flow source %d out of range", f.Src)
	}
	if f.Dst < 0 || f.Dst >= len(n.out) {
		return errors.New(errors.ErrCodeInvalidArgument, "flow destination %d out of range", f.Dst)
	}
	if f.MinGrossRate <= 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "flow minimum gross rate %v is not positive", f.MinGrossRate)
	}
	return nil
}

// pow computes q^k for small non-negative integer exponents.
func pow(q float64, k int) float64 {
	out := 1.0
	for i := 0; i < k; i++ {
		out *= q
	}
	return out
}
