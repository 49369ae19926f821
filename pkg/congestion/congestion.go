// Package congestion implements the Congestion Manager:
// pre-routing projection, per-edge metric sampling, and the global
// expansion policy the Layout Engine applies when a lane saturates.
package congestion

import (
	"github.com/flowlane/sff/pkg/cpferr"
	"github.com/flowlane/sff/pkg/model"
	"github.com/flowlane/sff/pkg/track"
)

const (
	turCritical = 0.85
	redCritical = 0.04
	bsCritical  = 0.75

	safeCapacityPerTrack = 4
	maxGlobalExpansions  = 3
	rankGapStep          = 40.0
)

// Metrics is one lane's sampled congestion state.
type Metrics struct {
	TUR float64
	RED float64
	BS  float64
}

func (m Metrics) exceedsCritical() bool {
	return m.TUR > turCritical || m.RED > redCritical || m.BS > bsCritical
}

// Manager tracks the global expansion counter across a single Layout
// Engine attempt loop; a fresh Manager is not required per attempt since
// the counter must persist across attempts.
type Manager struct {
	GlobalExpansionCount int
	MaxGlobalExpansions  int
}

// NewManager constructs a Manager with the default expansion cap.
func NewManager() *Manager {
	return &Manager{MaxGlobalExpansions: maxGlobalExpansions}
}

// NewManagerWithCap constructs a Manager with a caller-supplied expansion
// cap (e.g. from pkg/config), falling back to the default when cap<=0.
func NewManagerWithCap(cap int) *Manager {
	if cap <= 0 {
		cap = maxGlobalExpansions
	}
	return &Manager{MaxGlobalExpansions: cap}
}

// AnalyzePrerouting estimates edges-per-lane before any routing happens and
// reports whether an initial global expansion should run first.
func (m *Manager) AnalyzePrerouting(lanes map[string]*model.Lane, edgesPerLane map[string]int) bool {
	for id, lane := range lanes {
		capacity := float64(lane.TracksTotal * safeCapacityPerTrack)
		if capacity == 0 {
			continue
		}
		if float64(edgesPerLane[id])/capacity > turCritical {
			return true
		}
	}
	return false
}

// UpdateAfterEdge recomputes TUR/RED/BS for one lane immediately after an
// edge is placed and returns a
// *cpferr.CongestionDetectedError if any metric exceeds its critical value.
// It is a free function, not a Manager method, since sampling needs no
// state beyond the lane and track system passed in.
func UpdateAfterEdge(laneID string, lane *model.Lane, lt *track.LaneTracks, edgesInRank int, laneWidth float64, mainPathTracksUsed int) (Metrics, error) {
	metrics := Metrics{
		TUR: float64(lt.TracksTouched()) / float64(lane.TracksTotal),
		RED: float64(edgesInRank) / laneWidth,
		BS:  float64(mainPathTracksUsed) / float64(lane.TracksTotal),
	}
	if metrics.exceedsCritical() {
		return metrics, &cpferr.CongestionDetectedError{Lane: laneID, TUR: metrics.TUR, RED: metrics.RED, BS: metrics.BS}
	}
	return metrics, nil
}

// ApplyGlobalExpansion grows every lane's tracks_total by 2 (center_track
// is unchanged, so both new track indices lie above it) and, from the
// second expansion
// onward, widens rank_gap. It increments the shared counter
// and returns the new rank_gap; the caller must rebuild a fresh Track
// System and re-route everything.
func (m *Manager) ApplyGlobalExpansion(lanes map[string]*model.Lane, baseRankGap float64) (float64, error) {
	if m.GlobalExpansionCount >= m.MaxGlobalExpansions {
		return baseRankGap, &cpferr.UnscalableStructureError{Expansions: m.GlobalExpansionCount}
	}
	m.GlobalExpansionCount++
	for _, lane := range lanes {
		lane.TracksTotal += 2
	}
	rankGap := baseRankGap
	if m.GlobalExpansionCount >= 2 {
		rankGap = baseRankGap + float64(m.GlobalExpansionCount)*rankGapStep
	}
	return rankGap, nil
}
