package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/flowlane/sff/pkg/debug"
	"github.com/flowlane/sff/pkg/model"
)

// DumpDir is where writeDumps/writeFailureDump persist debug artifacts.
// Overridable by pkg/config at startup.
var DumpDir = ".sff-debug"

type occupancySnapshot struct {
	Lane string            `json:"lane"`
	H    map[int][]segDump `json:"h"`
	V    map[int][]segDump `json:"v"`
}

type segDump struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	EdgeID string  `json:"edge_id"`
}

func writeDumps(result *model.GeometricLayout, trace *engineTrace) {
	if err := os.MkdirAll(DumpDir, 0o755); err != nil {
		debug.Log("layout: could not create dump dir %s: %v", DumpDir, err)
		return
	}
	writeJSON(filepath.Join(DumpDir, "layout_dump.json"), result)

	laneIDs := make([]string, 0, len(trace.tracks))
	for lane := range trace.tracks {
		laneIDs = append(laneIDs, lane)
	}
	sort.Strings(laneIDs)

	var snaps []occupancySnapshot
	for _, lane := range laneIDs {
		lt := trace.tracks[lane]
		h := map[int][]segDump{}
		for t, segs := range lt.HOccupancySnapshot() {
			for _, s := range segs {
				h[t] = append(h[t], segDump{s.Start, s.End, s.EdgeID})
			}
		}
		v := map[int][]segDump{}
		for t, segs := range lt.VOccupancySnapshot() {
			for _, s := range segs {
				v[t] = append(v[t], segDump{s.Start, s.End, s.EdgeID})
			}
		}
		snaps = append(snaps, occupancySnapshot{Lane: lane, H: h, V: v})
	}
	writeJSON(filepath.Join(DumpDir, "occupancy_dump.json"), snaps)

	writeJSON(filepath.Join(DumpDir, "bridge_dump.json"), map[string]any{
		"bridges":   trace.r.Bridges,
		"backbones": trace.r.Backbones,
	})
}

func writeFailureDump(failures []attemptFailure) {
	if len(failures) == 0 {
		return
	}
	if err := os.MkdirAll(DumpDir, 0o755); err != nil {
		debug.Log("layout: could not create dump dir %s: %v", DumpDir, err)
		return
	}
	writeJSON(filepath.Join(DumpDir, "routing_failures.json"), failures)
}

func writeJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		debug.Log("layout: could not marshal dump %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		debug.Log("layout: could not write dump %s: %v", path, err)
	}
}
