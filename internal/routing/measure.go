package routing

// nodeMatrixMeasure implements route.ByIndex directly against a dense
// domain-node distance/time matrix (see DESIGN.md, "internal/matrix"). The router's
// own index space is not the Normalizer's node index: it numbers the stops
// slice passed to route.NewRouter first (in the order we built it: ride
// tasks, then synthetic break stops), followed by each vehicle's start and
// end position, one pair per vehicle, in Starts/Ends order. engineToNode
// translates from that engine index space back to a row/column in the
// shared N×N matrix built by the Matrix Adapter.
type nodeMatrixMeasure struct {
	matrix       [][]float64
	engineToNode []int
}

// newNodeMatrixMeasure builds a route.ByIndex-compatible measure over m,
// translating engine indices through engineToNode before each lookup.
func newNodeMatrixMeasure(m [][]float64, engineToNode []int) nodeMatrixMeasure {
	return nodeMatrixMeasure{matrix: m, engineToNode: engineToNode}
}

// Cost satisfies route.ByIndex.
func (n nodeMatrixMeasure) Cost(from, to int) float64 {
	return n.matrix[n.engineToNode[from]][n.engineToNode[to]]
}

// buildEngineIndex constructs the engineToNode translation table described
// above: stopIDs[i] first, then each vehicle's start/end domain node index.
// Synthetic break stops have no row of their own in the Matrix Adapter's
// output (the Normalizer never allocates them a node), so a break stop is
// aliased onto its owning vehicle's start depot node, which shares its
// coordinates exactly.
func buildEngineIndex(stopIDs []string, nodeIndexByStopID map[string]int, breakOwner map[string]string, vehicleIDs []string, vehicleStarts, vehicleEnds []int) []int {
	vehicleIndexByID := make(map[string]int, len(vehicleIDs))
	for k, id := range vehicleIDs {
		vehicleIndexByID[id] = k
	}

	engineToNode := make([]int, len(stopIDs)+2*len(vehicleIDs))
	for i, id := range stopIDs {
		if nodeIdx, ok := nodeIndexByStopID[id]; ok && nodeIdx >= 0 {
			engineToNode[i] = nodeIdx
			continue
		}
		owner := vehicleIndexByID[breakOwner[id]]
		engineToNode[i] = vehicleStarts[owner]
	}

	for k := range vehicleIDs {
		engineToNode[len(stopIDs)+2*k] = vehicleStarts[k]
		engineToNode[len(stopIDs)+2*k+1] = vehicleEnds[k]
	}

	return engineToNode
}
