package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/toolspec-cli/internal/model"
)

func TestSupplier(t *testing.T) {
	tests := []struct {
		name    string
		channel string
		want    model.Supplier
	}{
		{"exact", "Seco", model.SupplierSeco},
		{"substring in distributor name", "SANDVIK COROMANT US", model.SupplierSandvik},
		{"mixed case", "wAlTeR tools", model.SupplierWalter},
		{"embedded", "via Kennametal distribution", model.SupplierKennametal},
		{"unknown vendor", "Guhring", model.SupplierUnrecognized},
		{"empty", "", model.SupplierUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Supplier(tt.channel))
		})
	}
}

func TestToolType(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  model.ToolType
	}{
		{"endmill upper", "SOLID ENDMILL", model.ToolSolidEndmill},
		{"endmill lower", "solid endmill", model.ToolSolidEndmill},
		{"ball nose", "Ball Nose Endmill", model.ToolBallNoseEndmill},
		{"drill", "SOLID DRILL", model.ToolSolidDrill},
		{"reamer", "solid reamer", model.ToolSolidReamer},
		{"padded", "  SOLID DRILL  ", model.ToolSolidDrill},
		{"partial is not a match", "ENDMILL", model.ToolUnsupported},
		{"superset is not a match", "SOLID ENDMILL 4FL", model.ToolUnsupported},
		{"empty", "", model.ToolUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToolType(tt.label))
		})
	}
}

func TestRecord(t *testing.T) {
	r := &model.Record{Channel: "Seco Tools LLC", TypeLabel: "solid drill"}
	sup, tool := Record(r)
	assert.Equal(t, model.SupplierSeco, sup)
	assert.Equal(t, model.ToolSolidDrill, tool)
}
