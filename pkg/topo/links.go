package topo

import (
	"github.com/entglab/swapnet/pkg/geo"
	"github.com/entglab/swapnet/pkg/rv"
)

// Link is an undirected edge between two site indices.
type Link struct {
	A int
	B int
}

// FindLinks returns the candidate links of a set of sites: every
// unordered pair {i, j} with i < j whose Euclidean distance is at most
// threshold, each retained independently with probability p. Retention
// draws come from a uniform stream seeded with seed, and are consumed
// only for pairs within range.
func FindLinks(points []geo.Coordinate, threshold, p float64, seed uint64) []Link {
	src := rv.NewUniform(0, 1, seed)
	var links []Link
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if geo.Distance(points[i], points[j]) > threshold {
				continue
			}
			if src.Next() < p {
				links = append(links, Link{A: i, B: j})
			}
		}
	}
	return links
}

// Connected reports whether the undirected graph formed by the links is
// a single connected component. The vertex set is the set of link
// endpoints; an empty link list is not connected.
func Connected(links []Link) bool {
	if len(links) == 0 {
		return false
	}

	adj := make(map[int][]int)
	for _, l := range links {
		adj[l.A] = append(adj[l.A], l.B)
		adj[l.B] = append(adj[l.B], l.A)
	}

	start := links[0].A
	seen := map[int]bool{start: true}
	frontier := []int{start}
	for len(frontier) > 0 {
		u := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for _, v := range adj[u] {
			if !seen[v] {
				seen[v] = true
				frontier = append(frontier, v)
			}
		}
	}
	return len(seen) == len(adj)
}
