// Package classify normalizes free-text supplier channels and tool-type
// labels into the closed identity sets the resolver dispatches on.
package classify

import (
	"strings"

	"github.com/sells-group/toolspec-cli/internal/model"
)

// supplierNames maps a lowercase substring of the procurement channel to a
// supplier identity. Matched in declaration order.
var supplierNames = []struct {
	needle   string
	supplier model.Supplier
}{
	{"seco", model.SupplierSeco},
	{"sandvik", model.SupplierSandvik},
	{"walter", model.SupplierWalter},
	{"kennametal", model.SupplierKennametal},
}

// toolTypes is the strict tool-type vocabulary. Exact case-insensitive
// match only: unknown labels are deliberately unsupported, not guessed.
var toolTypes = map[string]model.ToolType{
	"solid endmill":     model.ToolSolidEndmill,
	"ball nose endmill": model.ToolBallNoseEndmill,
	"solid drill":       model.ToolSolidDrill,
	"solid reamer":      model.ToolSolidReamer,
}

// Supplier resolves a raw procurement channel string to a supplier
// identity by case-insensitive substring match.
func Supplier(channel string) model.Supplier {
	c := strings.ToLower(channel)
	for _, s := range supplierNames {
		if strings.Contains(c, s.needle) {
			return s.supplier
		}
	}
	return model.SupplierUnrecognized
}

// ToolType resolves a raw type label to a tool-type identity.
func ToolType(label string) model.ToolType {
	if t, ok := toolTypes[strings.ToLower(strings.TrimSpace(label))]; ok {
		return t
	}
	return model.ToolUnsupported
}

// Record classifies a record's text fields. Pure function; identities are
// derived, never stored on the record.
func Record(r *model.Record) (model.Supplier, model.ToolType) {
	return Supplier(r.Channel), ToolType(r.TypeLabel)
}
