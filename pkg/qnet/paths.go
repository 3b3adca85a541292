package qnet

import (
	"container/heap"
	"slices"
)

// shortestPathRecip runs Dijkstra from src to dst with edge cost equal
// to the reciprocal of the residual capacity, so wide links are cheap.
// Edges whose residual is below minResidual are not traversed (this
// also keeps zero-capacity edges out of the frontier, where 1/w is
// undefined), and neither are edges in the excluded set.
//
// On success it returns the hop sequence after src and the arena index
// of the minimum-capacity edge along the path.
func (n *Network) shortestPathRecip(src, dst int, minResidual float64, excluded map[int]bool) ([]int, int, bool) {
	const unreached = -1

	dist := make([]float64, len(n.out))
	prevEdge := make([]int, len(n.out))
	visited := make([]bool, len(n.out))
	for i := range prevEdge {
		prevEdge[i] = unreached
	}

	pq := nodeQueue{{node: src, dist: 0}}
	reached := make([]bool, len(n.out))
	reached[src] = true

	for len(pq) > 0 {
		item := heap.Pop(&pq).(queueItem)
		u := item.node
		if visited[u] {
			continue // stale entry under lazy decrease-key
		}
		visited[u] = true
		if u == dst {
			break
		}
		for _, ref := range n.out[u] {
			w := n.edges[ref.id].weight
			if w < minResidual || w <= 0 || excluded[ref.id] {
				continue
			}
			candidate := item.dist + 1/w
			if !reached[ref.to] || candidate < dist[ref.to] {
				reached[ref.to] = true
				dist[ref.to] = candidate
				prevEdge[ref.to] = ref.id
				heap.Push(&pq, queueItem{node: ref.to, dist: candidate})
			}
		}
	}

	if !visited[dst] || src == dst {
		return nil, 0, false
	}

	// Walk the predecessor edges back to src, tracking the bottleneck.
	var hops []int
	minEdge := prevEdge[dst]
	for v := dst; v != src; {
		id := prevEdge[v]
		hops = append(hops, v)
		if n.edges[id].weight < n.edges[minEdge].weight {
			minEdge = id
		}
		v = n.edges[id].from
	}
	slices.Reverse(hops)
	return hops, minEdge, true
}

// queueItem is a (node, distance) pair in the Dijkstra frontier.
type queueItem struct {
	node int
	dist float64
}

// nodeQueue is a min-heap over queueItem ordered by distance. Stale
// duplicates are pushed instead of decreasing keys and skipped on pop.
type nodeQueue []queueItem

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(queueItem)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

// bfsPath returns the shortest src→dst path by hop count as a full node
// sequence including src, honouring banned nodes and banned (u, v)
// pairs. Neighbour exploration follows adjacency insertion order, so
// equal-length ties resolve deterministically.
func (n *Network) bfsPath(src, dst int, bannedEdges map[[2]int]bool, bannedNodes map[int]bool) ([]int, bool) {
	if src == dst || bannedNodes[src] {
		return nil, false
	}
	prev := make([]int, len(n.out))
	for i := range prev {
		prev[i] = -1
	}
	prev[src] = src
	queue := []int{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if u == dst {
			break
		}
		for _, ref := range n.out[u] {
			v := ref.to
			if prev[v] >= 0 || bannedNodes[v] || bannedEdges[[2]int{u, v}] {
				continue
			}
			prev[v] = u
			queue = append(queue, v)
		}
	}
	if prev[dst] < 0 {
		return nil, false
	}
	var path []int
	for v := dst; v != src; v = prev[v] {
		path = append(path, v)
	}
	path = append(path, src)
	slices.Reverse(path)
	return path, true
}

// kShortestPaths enumerates up to k loop-free shortest paths from src
// to dst under the hop-count metric using Yen's deviation scheme.
// Paths are returned as full node sequences in non-decreasing length;
// candidates of equal length rank lexicographically.
func (n *Network) kShortestPaths(src, dst, k int) [][]int {
	first, ok := n.bfsPath(src, dst, nil, nil)
	if !ok {
		return nil
	}
	accepted := [][]int{first}
	var candidates [][]int

	for len(accepted) < k {
		last := accepted[len(accepted)-1]
		for i := 0; i < len(last)-1; i++ {
			spur := last[i]
			root := last[:i+1]

			// Mask edges used by already-accepted paths sharing this
			// prefix, and the prefix nodes themselves, so the spur
			// search deviates.
			bannedEdges := make(map[[2]int]bool)
			for _, p := range accepted {
				if len(p) > i+1 && slices.Equal(p[:i+1], root) {
					bannedEdges[[2]int{p[i], p[i+1]}] = true
				}
			}
			bannedNodes := make(map[int]bool, i)
			for _, v := range root[:i] {
				bannedNodes[v] = true
			}

			spurPath, ok := n.bfsPath(spur, dst, bannedEdges, bannedNodes)
			if !ok {
				continue
			}
			candidate := append(slices.Clone(root[:i]), spurPath...)
			if containsPath(accepted, candidate) || containsPath(candidates, candidate) {
				continue
			}
			candidates = append(candidates, candidate)
		}
		if len(candidates) == 0 {
			break
		}
		best := 0
		for i := 1; i < len(candidates); i++ {
			if pathLess(candidates[i], candidates[best]) {
				best = i
			}
		}
		accepted = append(accepted, candidates[best])
		candidates = slices.Delete(candidates, best, best+1)
	}
	return accepted
}

func containsPath(paths [][]int, p []int) bool {
	for _, q := range paths {
		if slices.Equal(q, p) {
			return true
		}
	}
	return false
}

// pathLess orders paths by length, then lexicographically.
func pathLess(a, b []int) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return slices.Compare(a, b) < 0
}
