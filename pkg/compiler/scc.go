package compiler

import (
	"sort"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/flowlane/sff/internal/graphir"
	"github.com/flowlane/sff/pkg/cpferr"
)

// sccInfo is the per-component-index bookkeeping produced by cycle
// detection, keyed by an arbitrary but stable component index (not the
// eventual "cycle_1" naming, which is assigned only to cyclic components
// after deterministic ordering).
type sccInfo struct {
	nodeIdx   []int // arena node indices belonging to this component, sorted
	cyclic    bool
	cycleID   string // "" for non-cyclic components
	cycleLvl  int
	exitNodes []int // arena node indices with an edge leaving the component
}

// detectCycles runs Tarjan's SCC over the next_nodes adjacency (via the
// arena's gonum projection), builds the condensation DAG, validates every
// cyclic component has an exit, and assigns cycle_id/cycle_level
// deterministically.
func detectCycles(a *graphir.Arena) ([]sccInfo, []int, error) {
	g := a.ToGonum()
	components := topo.TarjanSCC(g)

	n := len(a.NodeIDs)
	nodeSCC := make([]int, n)
	infos := make([]sccInfo, len(components))
	for ci, comp := range components {
		idxs := make([]int, len(comp))
		for i, nd := range comp {
			idxs[i] = int(nd.ID())
			nodeSCC[idxs[i]] = ci
		}
		sort.Ints(idxs)
		infos[ci] = sccInfo{nodeIdx: idxs, cyclic: len(idxs) > 1}
	}

	// Condensation edges (deduplicated) and exit-node detection.
	condEdgeSet := map[[2]int]bool{}
	var condFrom, condTo []int
	for ni := range a.Next {
		for _, nj := range a.Next[ni] {
			ci, cj := nodeSCC[ni], nodeSCC[nj]
			if ci == cj {
				continue
			}
			infos[ci].exitNodes = append(infos[ci].exitNodes, ni)
			key := [2]int{ci, cj}
			if !condEdgeSet[key] {
				condEdgeSet[key] = true
				condFrom = append(condFrom, ci)
				condTo = append(condTo, cj)
			}
		}
	}
	for ci := range infos {
		infos[ci].exitNodes = sortUniqueInts(infos[ci].exitNodes)
	}

	for ci := range infos {
		if infos[ci].cyclic && len(infos[ci].exitNodes) == 0 {
			ids := make([]string, len(infos[ci].nodeIdx))
			for i, ni := range infos[ci].nodeIdx {
				ids[i] = a.NodeIDs[ni]
			}
			return nil, nil, &cpferr.CycleWithoutExitError{NodeIDs: ids}
		}
	}

	// Deterministic cycle_id ordering: by minimum node id inside each
	// cyclic component.
	var cyclicComponents []int
	for ci := range infos {
		if infos[ci].cyclic {
			cyclicComponents = append(cyclicComponents, ci)
		}
	}
	sort.Slice(cyclicComponents, func(i, j int) bool {
		return a.NodeIDs[infos[cyclicComponents[i]].nodeIdx[0]] < a.NodeIDs[infos[cyclicComponents[j]].nodeIdx[0]]
	})
	for i, ci := range cyclicComponents {
		infos[ci].cycleID = cycleName(i + 1)
	}

	assignCycleLevels(infos, condFrom, condTo)

	return infos, nodeSCC, nil
}

func cycleName(n int) string {
	return "cycle_" + itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func sortUniqueInts(xs []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	sort.Ints(out)
	return out
}

// assignCycleLevels computes, for each cyclic component, the length of the
// longest chain of cyclic components reaching it in the condensation DAG
// (base case 1), via a single topological (Kahn) pass. No recursion, so
// deep condensations cannot blow the stack.
func assignCycleLevels(infos []sccInfo, condFrom, condTo []int) {
	n := len(infos)
	adj := make([][]int, n)
	indeg := make([]int, n)
	for i := range condFrom {
		adj[condFrom[i]] = append(adj[condFrom[i]], condTo[i])
		indeg[condTo[i]]++
	}

	chainSoFar := make([]int, n) // max cyclic-chain length reaching this component, not counting itself
	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			queue = append(queue, i)
		}
	}
	sort.Ints(queue)
	processed := make([]bool, n)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if processed[cur] {
			continue
		}
		processed[cur] = true

		passOn := chainSoFar[cur]
		if infos[cur].cyclic {
			infos[cur].cycleLvl = chainSoFar[cur] + 1
			passOn = infos[cur].cycleLvl
		}

		nexts := append([]int(nil), adj[cur]...)
		sort.Ints(nexts)
		for _, nx := range nexts {
			if passOn > chainSoFar[nx] {
				chainSoFar[nx] = passOn
			}
			indeg[nx]--
			if indeg[nx] == 0 {
				queue = append(queue, nx)
				sort.Ints(queue)
			}
		}
	}
}
