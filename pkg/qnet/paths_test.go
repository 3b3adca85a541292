package qnet

import (
	"reflect"
	"testing"
)

func buildWeighted(t *testing.T, edges []WeightedEdge) *Network {
	t.Helper()
	n, err := NewNetworkFromWeights(edges)
	if err != nil {
		t.Fatalf("NewNetworkFromWeights: %v", err)
	}
	return n
}

func TestShortestPathRecip(t *testing.T) {
	n := buildWeighted(t, []WeightedEdge{
		{0, 1, 4}, {1, 2, 2}, {2, 3, 4}, {0, 4, 1}, {4, 3, 4},
	})

	hops, minEdge, ok := n.shortestPathRecip(0, 3, 0.5, nil)
	if !ok {
		t.Fatal("no path found")
	}
	if want := []int{1, 2, 3}; !reflect.DeepEqual(hops, want) {
		t.Errorf("hops = %v, want %v", hops, want)
	}
	if w := n.edges[minEdge].weight; w != 2 {
		t.Errorf("bottleneck weight = %v, want 2", w)
	}

	// Raising the residual floor disconnects both routes.
	hops, minEdge, ok = n.shortestPathRecip(0, 3, 3, nil)
	if ok {
		t.Fatalf("path %v found, want none", hops)
	}

	// Excluding the bottleneck edge forces the alternative.
	_, minEdge, _ = n.shortestPathRecip(0, 3, 0.5, nil)
	hops, _, ok = n.shortestPathRecip(0, 3, 0.5, map[int]bool{minEdge: true})
	if !ok {
		t.Fatal("no alternative path")
	}
	if want := []int{4, 3}; !reflect.DeepEqual(hops, want) {
		t.Errorf("alternative hops = %v, want %v", hops, want)
	}
}

func TestShortestPathRecipPrefersWide(t *testing.T) {
	// Two parallel routes; the three-hop route is wide, the two-hop one
	// thin. Reciprocal costs prefer the wide route.
	n := buildWeighted(t, []WeightedEdge{
		{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {0, 4, 1}, {4, 3, 4},
	})
	hops, _, ok := n.shortestPathRecip(0, 3, 0.001, nil)
	if !ok || !reflect.DeepEqual(hops, []int{1, 2, 3}) {
		t.Errorf("hops = %v (ok=%v), want [1 2 3]", hops, ok)
	}
}

func TestBFSPath(t *testing.T) {
	n := buildWeighted(t, []WeightedEdge{
		{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {0, 4, 1}, {4, 3, 1},
	})

	path, ok := n.bfsPath(0, 3, nil, nil)
	if !ok || !reflect.DeepEqual(path, []int{0, 4, 3}) {
		t.Errorf("path = %v (ok=%v), want [0 4 3]", path, ok)
	}

	path, ok = n.bfsPath(0, 3, map[[2]int]bool{{0, 4}: true}, nil)
	if !ok || !reflect.DeepEqual(path, []int{0, 1, 2, 3}) {
		t.Errorf("masked path = %v (ok=%v), want [0 1 2 3]", path, ok)
	}

	if _, ok := n.bfsPath(3, 0, nil, nil); ok {
		t.Error("found a path from a sink node")
	}
}

func TestKShortestPaths(t *testing.T) {
	tests := []struct {
		name  string
		edges []WeightedEdge
		src   int
		dst   int
		k     int
		want  [][]int
	}{
		{
			name:  "TwoRoutes",
			edges: []WeightedEdge{{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {0, 4, 1}, {4, 3, 4}},
			src:   0, dst: 3, k: 99,
			want: [][]int{{0, 4, 3}, {0, 1, 2, 3}},
		},
		{
			name:  "Diamond",
			edges: []WeightedEdge{{0, 1, 1}, {0, 2, 1}, {1, 3, 1}, {2, 3, 1}},
			src:   0, dst: 3, k: 5,
			want: [][]int{{0, 1, 3}, {0, 2, 3}},
		},
		{
			name:  "KOne",
			edges: []WeightedEdge{{0, 1, 1}, {0, 2, 1}, {1, 3, 1}, {2, 3, 1}},
			src:   0, dst: 3, k: 1,
			want: [][]int{{0, 1, 3}},
		},
		{
			name:  "Unreachable",
			edges: []WeightedEdge{{0, 1, 1}, {2, 3, 1}},
			src:   0, dst: 3, k: 4,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := buildWeighted(t, tt.edges)
			got := n.kShortestPaths(tt.src, tt.dst, tt.k)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("kShortestPaths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKShortestPathsGrid(t *testing.T) {
	// A 2x3 lattice: many deviations, all loop-free, sorted by length.
	//
	//  0 - 1 - 2
	//  |   |   |
	//  3 - 4 - 5
	var edges []WeightedEdge
	und := [][2]int{{0, 1}, {1, 2}, {3, 4}, {4, 5}, {0, 3}, {1, 4}, {2, 5}}
	for _, e := range und {
		edges = append(edges, WeightedEdge{e[0], e[1], 1}, WeightedEdge{e[1], e[0], 1})
	}
	n := buildWeighted(t, edges)

	paths := n.kShortestPaths(0, 5, 10)
	if len(paths) < 3 {
		t.Fatalf("got %d paths, want at least 3", len(paths))
	}
	for i, p := range paths {
		if p[0] != 0 || p[len(p)-1] != 5 {
			t.Errorf("path %d = %v does not run 0→5", i, p)
		}
		seen := map[int]bool{}
		for _, v := range p {
			if seen[v] {
				t.Errorf("path %d = %v revisits node %d", i, p, v)
			}
			seen[v] = true
		}
		if i > 0 && len(paths[i-1]) > len(p) {
			t.Errorf("paths not sorted by length: %v before %v", paths[i-1], p)
		}
	}
	// The two shortest lattice routes have three hops.
	if len(paths[0]) != 4 || len(paths[1]) != 4 {
		t.Errorf("shortest two paths = %v, %v, want length-3 routes", paths[0], paths[1])
	}
}
