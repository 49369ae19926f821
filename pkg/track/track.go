// Package track implements the Track System: per-lane
// occupancy maps for horizontal and vertical routed segments, conflict
// tests, and track expansion.
//
// Occupancy is kept as a sorted, non-overlapping vector of intervals per
// (lane, orientation, track) so conflict tests reduce to a binary search
// rather than a full scan.
package track

import "sort"

// Segment is one routed interval on a single track.
type Segment struct {
	Start  float64
	End    float64
	EdgeID string
}

func normalize(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}

// LaneTracks is the occupancy state for one lane's horizontal and vertical
// tracks.
type LaneTracks struct {
	Lane        string
	TracksTotal int
	CenterTrack int
	TrackGap    float64

	h map[int][]Segment
	v map[int][]Segment
}

// NewLaneTracks allocates empty occupancy maps for a lane.
func NewLaneTracks(lane string, tracksTotal, centerTrack int, trackGap float64) *LaneTracks {
	return &LaneTracks{
		Lane:        lane,
		TracksTotal: tracksTotal,
		CenterTrack: centerTrack,
		TrackGap:    trackGap,
		h:           make(map[int][]Segment),
		v:           make(map[int][]Segment),
	}
}

// CheckHConflict reports whether a new horizontal segment on track would
// overlap an existing one, once min_separation is accounted for on both
// sides of the new segment.
func (lt *LaneTracks) CheckHConflict(trackIdx int, xa, xb, minSep float64) bool {
	return conflicts(lt.h[trackIdx], xa, xb, minSep)
}

// CheckVConflict is the vertical symmetric of CheckHConflict.
func (lt *LaneTracks) CheckVConflict(trackIdx int, ya, yb, minSep float64) bool {
	return conflicts(lt.v[trackIdx], ya, yb, minSep)
}

func conflicts(segs []Segment, a, b, minSep float64) bool {
	lo, hi := normalize(a, b)
	lo -= minSep
	hi += minSep
	// segs is sorted by Start; binary-search for the first segment whose
	// End could possibly overlap [lo, hi], then scan forward until a
	// segment's Start exceeds hi.
	i := sort.Search(len(segs), func(i int) bool { return segs[i].End >= lo })
	for ; i < len(segs); i++ {
		if segs[i].Start > hi {
			break
		}
		if segs[i].End >= lo && segs[i].Start <= hi {
			return true
		}
	}
	return false
}

// OccupyHSegment reserves a horizontal interval on track. The caller must
// have already verified CheckHConflict is false; this method performs no
// validation, only the sorted insert needed to keep future conflict checks
// a binary search.
func (lt *LaneTracks) OccupyHSegment(trackIdx int, xa, xb float64, edgeID string) {
	lo, hi := normalize(xa, xb)
	lt.h[trackIdx] = insertSorted(lt.h[trackIdx], Segment{Start: lo, End: hi, EdgeID: edgeID})
}

// OccupyVSegment is the vertical symmetric of OccupyHSegment.
func (lt *LaneTracks) OccupyVSegment(trackIdx int, ya, yb float64, edgeID string) {
	lo, hi := normalize(ya, yb)
	lt.v[trackIdx] = insertSorted(lt.v[trackIdx], Segment{Start: lo, End: hi, EdgeID: edgeID})
}

func insertSorted(segs []Segment, s Segment) []Segment {
	i := sort.Search(len(segs), func(i int) bool { return segs[i].Start >= s.Start })
	segs = append(segs, Segment{})
	copy(segs[i+1:], segs[i:])
	segs[i] = s
	return segs
}

// GetTrackOffset returns the perpendicular offset of track from the lane's
// center line.
func (lt *LaneTracks) GetTrackOffset(trackIdx int) float64 {
	return float64(trackIdx-lt.CenterTrack) * lt.TrackGap
}

// ExpandLane grows tracks_total by 2. center_track is unchanged, so with
// tracks indexed 1..tracks_total both new indices lie above the center.
// Existing occupancy is preserved unchanged; only the valid track range
// grows.
func (lt *LaneTracks) ExpandLane() {
	lt.TracksTotal += 2
}

// ValidTrack reports whether a track index is within [1, tracks_total].
func (lt *LaneTracks) ValidTrack(trackIdx int) bool {
	return trackIdx >= 1 && trackIdx <= lt.TracksTotal
}

// HOccupancySnapshot returns a copy of all horizontal occupancy, keyed by
// track index, for debug dumps.
func (lt *LaneTracks) HOccupancySnapshot() map[int][]Segment {
	return snapshot(lt.h)
}

// VOccupancySnapshot is the vertical symmetric of HOccupancySnapshot.
func (lt *LaneTracks) VOccupancySnapshot() map[int][]Segment {
	return snapshot(lt.v)
}

func snapshot(m map[int][]Segment) map[int][]Segment {
	out := make(map[int][]Segment, len(m))
	for k, v := range m {
		cp := make([]Segment, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// TracksTouched returns the count of distinct track indices holding any
// horizontal or vertical occupancy, for the Congestion Manager's TUR.
func (lt *LaneTracks) TracksTouched() int {
	seen := make(map[int]bool, len(lt.h)+len(lt.v))
	for t, segs := range lt.h {
		if len(segs) > 0 {
			seen[t] = true
		}
	}
	for t, segs := range lt.v {
		if len(segs) > 0 {
			seen[t] = true
		}
	}
	return len(seen)
}

// SymmetricTrackOrder yields candidate track indices around center in the
// router's documented iteration order: center, center+1, center-1,
// center+2, center-2, ... clipped to [1, tracks_total].
func (lt *LaneTracks) SymmetricTrackOrder() []int {
	var order []int
	seen := make(map[int]bool)
	add := func(t int) {
		if lt.ValidTrack(t) && !seen[t] {
			seen[t] = true
			order = append(order, t)
		}
	}
	add(lt.CenterTrack)
	for d := 1; d < lt.TracksTotal; d++ {
		add(lt.CenterTrack + d)
		add(lt.CenterTrack - d)
		if len(order) >= lt.TracksTotal {
			break
		}
	}
	return order
}
