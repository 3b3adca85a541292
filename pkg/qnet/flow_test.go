package qnet_test

import (
	"reflect"
	"testing"

	"github.com/entglab/swapnet/pkg/errors"
	"github.com/entglab/swapnet/pkg/qnet"
)

func TestRouteFlows(t *testing.T) {
	n := newExampleNetwork(t)
	if err := n.SetMeasurementProbability(0.5); err != nil {
		t.Fatal(err)
	}

	// No route exists towards the source side of the graph.
	flows := []*qnet.FlowDescriptor{{Src: 3, Dst: 0, MinGrossRate: 1}}
	if err := n.RouteFlows(flows, nil); err != nil {
		t.Fatalf("RouteFlows: %v", err)
	}
	if len(flows[0].Path) != 0 {
		t.Errorf("path = %v, want empty", flows[0].Path)
	}
	if flows[0].DijkstraCalls != 1 {
		t.Errorf("DijkstraCalls = %d, want 1", flows[0].DijkstraCalls)
	}

	// An unroutable and a routable flow in one call.
	flows = []*qnet.FlowDescriptor{
		{Src: 3, Dst: 0, MinGrossRate: 1},
		{Src: 0, Dst: 3, MinGrossRate: 1},
	}
	if err := n.RouteFlows(flows, nil); err != nil {
		t.Fatalf("RouteFlows: %v", err)
	}
	if len(flows[0].Path) != 0 || !almost(flows[0].GrossRate, 0) {
		t.Errorf("flow 0 = (%v, %v), want unrouted", flows[0].Path, flows[0].GrossRate)
	}
	if flows[0].DijkstraCalls != 1 {
		t.Errorf("flow 0 DijkstraCalls = %d, want 1", flows[0].DijkstraCalls)
	}
	if !reflect.DeepEqual(flows[1].Path, []int{1, 2, 3}) {
		t.Errorf("flow 1 path = %v, want [1 2 3]", flows[1].Path)
	}
	if !almost(flows[1].GrossRate, 4) {
		t.Errorf("flow 1 gross rate = %v, want 4", flows[1].GrossRate)
	}
	if flows[1].DijkstraCalls != 2 {
		t.Errorf("flow 1 DijkstraCalls = %d, want 2", flows[1].DijkstraCalls)
	}
	if !almost(flows[1].NetRate(n.MeasurementProbability()), 1) {
		t.Errorf("flow 1 net rate = %v, want 1", flows[1].NetRate(n.MeasurementProbability()))
	}
	checkWeights(t, n.Weights(), []qnet.WeightedEdge{
		{U: 0, V: 1, W: 0},
		{U: 1, V: 2, W: 0},
		{U: 2, V: 3, W: 0},
		{U: 0, V: 4, W: 1},
		{U: 4, V: 3, W: 4},
	})

	// The same route is not feasible anymore.
	flows = []*qnet.FlowDescriptor{{Src: 0, Dst: 3, MinGrossRate: 1}}
	if err := n.RouteFlows(flows, nil); err != nil {
		t.Fatalf("RouteFlows: %v", err)
	}
	if len(flows[0].Path) != 0 {
		t.Errorf("path = %v, want empty", flows[0].Path)
	}

	// A smaller request would fit, but the admission policy wants a
	// direct link.
	flows = []*qnet.FlowDescriptor{{Src: 0, Dst: 3, MinGrossRate: 0.5}}
	direct := func(f *qnet.FlowDescriptor) bool { return len(f.Path) == 1 }
	if err := n.RouteFlows(flows, direct); err != nil {
		t.Fatalf("RouteFlows: %v", err)
	}
	if len(flows[0].Path) != 0 {
		t.Errorf("path = %v, want rejected", flows[0].Path)
	}

	// Without the policy the request is admitted via node 4.
	flows = []*qnet.FlowDescriptor{{Src: 0, Dst: 3, MinGrossRate: 0.5}}
	if err := n.RouteFlows(flows, nil); err != nil {
		t.Fatalf("RouteFlows: %v", err)
	}
	if !reflect.DeepEqual(flows[0].Path, []int{4, 3}) {
		t.Errorf("path = %v, want [4 3]", flows[0].Path)
	}
	if !almost(flows[0].GrossRate, 1) {
		t.Errorf("gross rate = %v, want 1", flows[0].GrossRate)
	}
	checkWeights(t, n.Weights(), []qnet.WeightedEdge{
		{U: 0, V: 1, W: 0},
		{U: 1, V: 2, W: 0},
		{U: 2, V: 3, W: 0},
		{U: 0, V: 4, W: 0},
		{U: 4, V: 3, W: 3},
	})

	// A request between adjacent nodes drains the last link.
	flows = []*qnet.FlowDescriptor{{Src: 4, Dst: 3, MinGrossRate: 3}}
	if err := n.RouteFlows(flows, nil); err != nil {
		t.Fatalf("RouteFlows: %v", err)
	}
	if !reflect.DeepEqual(flows[0].Path, []int{3}) {
		t.Errorf("path = %v, want [3]", flows[0].Path)
	}
	if !almost(flows[0].GrossRate, 3) {
		t.Errorf("gross rate = %v, want 3", flows[0].GrossRate)
	}
	if !almost(n.TotalCapacity(), 0) {
		t.Errorf("TotalCapacity() = %v, want 0", n.TotalCapacity())
	}

	// No request can be served now.
	flows = nil
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			if i != j {
				flows = append(flows, &qnet.FlowDescriptor{Src: i, Dst: j, MinGrossRate: 0.001})
			}
		}
	}
	if err := n.RouteFlows(flows, nil); err != nil {
		t.Fatalf("RouteFlows: %v", err)
	}
	for _, f := range flows {
		if len(f.Path) != 0 || !almost(f.GrossRate, 0) {
			t.Errorf("flow (%d, %d) = (%v, %v), want unrouted", f.Src, f.Dst, f.Path, f.GrossRate)
		}
	}
}

func TestRouteFlowsValidation(t *testing.T) {
	tests := []struct {
		name string
		flow qnet.FlowDescriptor
	}{
		{name: "SameEndpoints", flow: qnet.FlowDescriptor{Src: 0, Dst: 0, MinGrossRate: 1}},
		{name: "ZeroRate", flow: qnet.FlowDescriptor{Src: 0, Dst: 1, MinGrossRate: 0}},
		{name: "NegativeRate", flow: qnet.FlowDescriptor{Src: 0, Dst: 1, MinGrossRate: -1}},
		{name: "DstOutOfRange", flow: qnet.FlowDescriptor{Src: 0, Dst: 99, MinGrossRate: 1}},
		{name: "SrcOutOfRange", flow: qnet.FlowDescriptor{Src: 99, Dst: 0, MinGrossRate: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newExampleNetwork(t)
			before := n.Weights()

			// Pair the invalid flow with a valid one: validation must
			// reject the whole call before any routing happens.
			flow := tt.flow
			flows := []*qnet.FlowDescriptor{
				{Src: 0, Dst: 3, MinGrossRate: 1},
				&flow,
			}
			err := n.RouteFlows(flows, nil)
			if !errors.Is(err, errors.ErrCodeInvalidArgument) {
				t.Fatalf("RouteFlows = %v, want INVALID_ARGUMENT", err)
			}
			if !reflect.DeepEqual(n.Weights(), before) {
				t.Error("failed call mutated the network")
			}
		})
	}
}

func TestRouteFlowsReciprocalCost(t *testing.T) {
	// Swap the weights of the example graph: the 1-valued edge becomes
	// 4 and vice versa. The reciprocal-cost search now goes via node 4.
	edges := exampleWeights()
	for i := range edges {
		if edges[i].W == 1 {
			edges[i].W = 4
		} else {
			edges[i].W = 1
		}
	}
	n, err := qnet.NewNetworkFromWeights(edges)
	if err != nil {
		t.Fatal(err)
	}
	if err := n.SetMeasurementProbability(0.5); err != nil {
		t.Fatal(err)
	}

	flows := []*qnet.FlowDescriptor{{Src: 0, Dst: 3, MinGrossRate: 0.1}}
	if err := n.RouteFlows(flows, nil); err != nil {
		t.Fatalf("RouteFlows: %v", err)
	}
	if flows[0].DijkstraCalls != 1 {
		t.Errorf("DijkstraCalls = %d, want 1", flows[0].DijkstraCalls)
	}
	if !reflect.DeepEqual(flows[0].Path, []int{4, 3}) {
		t.Errorf("path = %v, want [4 3]", flows[0].Path)
	}
}

func TestRouteFlowsMinRateMonotonic(t *testing.T) {
	// Raising the minimum rate can only shrink the admissible set: a
	// demand that fails at a low floor must also fail at a higher one.
	rates := []float64{0.5, 1, 2, 4, 4.5, 20}
	admitted := make([]bool, len(rates))
	for i, r := range rates {
		n := newExampleNetwork(t)
		flows := []*qnet.FlowDescriptor{{Src: 0, Dst: 3, MinGrossRate: r}}
		if err := n.RouteFlows(flows, nil); err != nil {
			t.Fatalf("RouteFlows(min=%v): %v", r, err)
		}
		admitted[i] = len(flows[0].Path) > 0
	}
	for i := 1; i < len(rates); i++ {
		if admitted[i] && !admitted[i-1] {
			t.Errorf("min %v admitted but smaller min %v was not", rates[i], rates[i-1])
		}
	}
	if !admitted[0] {
		t.Error("the easiest demand was not admitted")
	}
	if admitted[len(rates)-1] {
		t.Error("a demand above the widest edge was admitted")
	}
}

func TestRouteFlowsRejectionRetries(t *testing.T) {
	// The policy rejects everything; the search must walk through the
	// alternatives (excluding one bottleneck edge per round) and leave
	// the flow unrouted, counting every search.
	n := newExampleNetwork(t)
	flows := []*qnet.FlowDescriptor{{Src: 0, Dst: 3, MinGrossRate: 0.5}}
	never := func(*qnet.FlowDescriptor) bool { return false }
	if err := n.RouteFlows(flows, never); err != nil {
		t.Fatalf("RouteFlows: %v", err)
	}
	if len(flows[0].Path) != 0 {
		t.Errorf("path = %v, want empty", flows[0].Path)
	}
	if flows[0].DijkstraCalls < 3 {
		t.Errorf("DijkstraCalls = %d, want at least 3 (two candidates plus the final miss)", flows[0].DijkstraCalls)
	}
	if !almost(n.TotalCapacity(), 17) {
		t.Errorf("TotalCapacity() = %v, want untouched 17", n.TotalCapacity())
	}
}
