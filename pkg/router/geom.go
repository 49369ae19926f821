package router

// hSegmentHitsNode reports whether a horizontal segment at height y from
// x0 to x1 crosses box, ignoring the endpoints' own nodes (callers exclude
// by skipping src/dst in the candidate slice).
func hSegmentHitsNode(x0, x1, y float64, box NodeBox) bool {
	if y < box.top() || y > box.bottom() {
		return false
	}
	lo, hi := x0, x1
	if lo > hi {
		lo, hi = hi, lo
	}
	return hi >= box.left() && lo <= box.right()
}

// vSegmentHitsNode is the vertical symmetric of hSegmentHitsNode.
func vSegmentHitsNode(y0, y1, x float64, box NodeBox) bool {
	if x < box.left() || x > box.right() {
		return false
	}
	lo, hi := y0, y1
	if lo > hi {
		lo, hi = hi, lo
	}
	return hi >= box.top() && lo <= box.bottom()
}

// otherNodes returns every node box except the two endpoints of the edge
// being routed, in map iteration order (callers only test whether any box
// is hit, so the order does not matter).
func (r *Router) otherNodes(excludeA, excludeB string) []NodeBox {
	out := make([]NodeBox, 0, len(r.Nodes))
	for id, b := range r.Nodes {
		if id == excludeA || id == excludeB {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (r *Router) hSegmentClear(x0, x1, y float64, excludeA, excludeB string) bool {
	for _, b := range r.otherNodes(excludeA, excludeB) {
		if hSegmentHitsNode(x0, x1, y, b) {
			return false
		}
	}
	return true
}

func (r *Router) vSegmentClear(y0, y1, x float64, excludeA, excludeB string) bool {
	for _, b := range r.otherNodes(excludeA, excludeB) {
		if vSegmentHitsNode(y0, y1, x, b) {
			return false
		}
	}
	return true
}
