package layout

import "github.com/flowlane/sff/pkg/model"

// computeComplexity summarizes the laid-out graph's shape, mirroring the
// compiled stats block plus the realized canvas extent.
func computeComplexity(cr *model.CompileResult, laneGeoms []model.LaneGeometry, maxRank int, rankGap float64) model.Complexity {
	width := 0.0
	for _, lg := range laneGeoms {
		if lg.End > width {
			width = lg.End
		}
	}
	height := float64(maxRank+1) * rankGap

	return model.Complexity{
		N:               cr.CPFF.Stats.NodesTotal,
		E:               cr.CPFF.Stats.EdgesTotal,
		L:               cr.CPFF.Stats.LanesTotal,
		TMax:            cr.CPFF.Stats.MaxTracksPerLane,
		DMax:            cr.CPFF.Stats.MaxDepth,
		BMax:            cr.CPFF.Stats.MaxBranchDepth,
		CyclesTotal:     cr.CPFF.Stats.CyclesTotal,
		MaxCycleDepth:   cr.CPFF.Stats.MaxCycleDepth,
		EstimatedWidth:  width,
		EstimatedHeight: height,
	}
}
