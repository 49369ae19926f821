// Package cpferr defines the pipeline's stable error taxonomy.
// Each type carries the documented string prefix via Error() so callers can
// either pattern-match the message or use errors.As for the typed form.
package cpferr

import (
	"fmt"
	"strings"
)

// StructuralError reports a malformed or incomplete sff document. Fatal at
// compile start.
type StructuralError struct {
	Reasons []string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("SFF_STRUCTURAL_ERROR: %s", strings.Join(e.Reasons, "; "))
}

// LogicError reports a logical inconsistency (uniqueness of start,
// reachability, isolated nodes, decision branch/edge consistency). Fatal at
// compile.
type LogicError struct {
	Reasons []string
}

func (e *LogicError) Error() string {
	return fmt.Sprintf("SFF_LOGIC_ERROR: %s", strings.Join(e.Reasons, "; "))
}

// SelfLoopError reports an edge with From == To. Fatal at compile.
type SelfLoopError struct {
	EdgeID string
}

func (e *SelfLoopError) Error() string {
	return fmt.Sprintf("SELF_LOOP_NOT_SUPPORTED_V1: edge %s", e.EdgeID)
}

// CycleWithoutExitError reports a strongly connected component with no
// outgoing condensed edge. Fatal at compile.
type CycleWithoutExitError struct {
	NodeIDs []string
}

func (e *CycleWithoutExitError) Error() string {
	return fmt.Sprintf("CYCLE_WITHOUT_EXIT: nodes [%s]", strings.Join(e.NodeIDs, ", "))
}

// RoutingImpossibleError is recoverable within the Layout Engine's retry
// loop: the caller may apply a global expansion and retry.
type RoutingImpossibleError struct {
	EdgeID string
	Reason string
}

func (e *RoutingImpossibleError) Error() string {
	return fmt.Sprintf("ROUTING_IMPOSSIBLE: %s (edge %s)", e.Reason, e.EdgeID)
}

// CongestionDetectedError is recoverable within the Layout Engine's retry
// loop.
type CongestionDetectedError struct {
	Lane string
	TUR  float64
	RED  float64
	BS   float64
}

func (e *CongestionDetectedError) Error() string {
	return fmt.Sprintf("CONGESTION_DETECTED: lane=%s TUR=%.3f, RED=%.3f, BS=%.3f", e.Lane, e.TUR, e.RED, e.BS)
}

// UnscalableStructureError is raised when the global expansion cap is
// reached without resolving congestion or routing failures. Terminal.
type UnscalableStructureError struct {
	Expansions int
}

func (e *UnscalableStructureError) Error() string {
	return fmt.Sprintf("LAYOUT_UNSCALABLE_STRUCTURE: exceeded %d global expansions", e.Expansions)
}

// LayoutImpossibleError reports a missing required IR field or other
// unrecoverable invariant failure. Fatal at layout.
type LayoutImpossibleError struct {
	Reason string
}

func (e *LayoutImpossibleError) Error() string {
	return fmt.Sprintf("LAYOUT_IMPOSSIBLE_WITH_CURRENT_GRID: %s", e.Reason)
}

// Recoverable reports whether err is one the Layout Engine's retry loop is
// allowed to catch and retry past (ROUTING_IMPOSSIBLE, CONGESTION_DETECTED).
// All other error types must surface immediately to the caller.
func Recoverable(err error) bool {
	switch err.(type) {
	case *RoutingImpossibleError, *CongestionDetectedError:
		return true
	default:
		return false
	}
}
