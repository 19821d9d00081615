// Package model defines the catalog record, resolution result and job
// aggregate types shared across the resolver.
package model

// Sentinel is the literal written wherever an attribute was sought but not
// found. It appears verbatim in exported cells.
const Sentinel = "#NA"

// Supplier is a normalized procurement channel identity.
type Supplier string

const (
	SupplierSeco         Supplier = "seco"
	SupplierSandvik      Supplier = "sandvik"
	SupplierWalter       Supplier = "walter"
	SupplierKennametal   Supplier = "kennametal"
	SupplierUnrecognized Supplier = "unrecognized"
)

// ToolType is a normalized tool-type identity. Labels outside the strict
// vocabulary map to ToolUnsupported; they are completed without any network
// attempt.
type ToolType string

const (
	ToolSolidEndmill    ToolType = "solid_endmill"
	ToolBallNoseEndmill ToolType = "ball_nose_endmill"
	ToolSolidDrill      ToolType = "solid_drill"
	ToolSolidReamer     ToolType = "solid_reamer"
	ToolUnsupported     ToolType = "unsupported"
)

// Record is one catalog item. The six attribute fields hold the raw cell
// value from import ("" when the cell was absent); they are mutated only by
// the orchestrator's merge step, which never overwrites a filled field.
type Record struct {
	Index         int    `json:"index"`
	Sequence      int    `json:"sequence"`
	Description   string `json:"description"`
	TypeLabel     string `json:"type_label"`
	Channel       string `json:"channel"`
	Diameter      string `json:"diameter,omitempty"`
	CornerRadius  string `json:"corner_radius,omitempty"`
	FluteLength   string `json:"flute_length,omitempty"`
	OverallLength string `json:"overall_length,omitempty"`
	EdgeCount     string `json:"edge_count,omitempty"`
	ShankDiameter string `json:"shank_diameter,omitempty"`
}

// Slot identifies one of the six generic attribute positions in a
// resolution result. Semantic meaning is supplier- and tool-type-dependent.
type Slot int

const (
	SlotDiameter Slot = iota
	SlotFluteLength
	SlotCornerRadius
	SlotOverallLength
	SlotEdgeCount
	SlotShankDiameter

	NumSlots = 6
)

// String returns the slot's generic attribute name.
func (s Slot) String() string {
	switch s {
	case SlotDiameter:
		return "diameter"
	case SlotFluteLength:
		return "flute_length"
	case SlotCornerRadius:
		return "corner_radius"
	case SlotOverallLength:
		return "overall_length"
	case SlotEdgeCount:
		return "edge_count"
	case SlotShankDiameter:
		return "shank_diameter"
	}
	return "unknown"
}

// Field returns the record field backing the given slot.
func (r *Record) Field(s Slot) string {
	switch s {
	case SlotDiameter:
		return r.Diameter
	case SlotFluteLength:
		return r.FluteLength
	case SlotCornerRadius:
		return r.CornerRadius
	case SlotOverallLength:
		return r.OverallLength
	case SlotEdgeCount:
		return r.EdgeCount
	case SlotShankDiameter:
		return r.ShankDiameter
	}
	return ""
}

// SetField writes the record field backing the given slot.
func (r *Record) SetField(s Slot, v string) {
	switch s {
	case SlotDiameter:
		r.Diameter = v
	case SlotFluteLength:
		r.FluteLength = v
	case SlotCornerRadius:
		r.CornerRadius = v
	case SlotOverallLength:
		r.OverallLength = v
	case SlotEdgeCount:
		r.EdgeCount = v
	case SlotShankDiameter:
		r.ShankDiameter = v
	}
}

// Filled reports whether the slot's backing field already holds a value.
func (r *Record) Filled(s Slot) bool {
	v := r.Field(s)
	return v != "" && v != Sentinel
}
