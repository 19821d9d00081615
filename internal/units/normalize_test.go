package units

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/toolspec-cli/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", model.Sentinel},
		{"whitespace only", "   ", model.Sentinel},
		{"metric passthrough", "10 mm", "10 mm"},
		{"metric decimal passthrough", "9.525 mm", "9.525 mm"},
		{"inch word converted", "0.5 inch", "12.70 mm"},
		{"inch abbreviation converted", "0.375 in", "9.52 mm"},
		{"inch quote converted", `1"`, "25.40 mm"},
		{"comma decimal inch", "0,25 in", "6.35 mm"},
		{"unitless count passthrough", "4", "4"},
		{"unitless decimal passthrough", "0.5", "0.5"},
		{"mm wins over inch token", "12 mm (0.472 in)", "12 mm (0.472 in)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw, false))
		})
	}
}

func TestNormalizeMetricOnly(t *testing.T) {
	// Inch-only values are discarded entirely rather than converted.
	assert.Equal(t, model.Sentinel, Normalize("0.5 inch", true))
	assert.Equal(t, model.Sentinel, Normalize(`3/8" shank`, true))

	// Metric and unit-less values are unaffected by the flag.
	assert.Equal(t, "10 mm", Normalize("10 mm", true))
	assert.Equal(t, "4", Normalize("4", true))
}

func TestNormalizeIdempotent(t *testing.T) {
	// A converted value re-entering Normalize must not convert again.
	once := Normalize("0.5 in", false)
	assert.Equal(t, "12.70 mm", once)
	assert.Equal(t, once, Normalize(once, false))
}

func TestNormalizeExactFactor(t *testing.T) {
	assert.Equal(t, "25.40 mm", Normalize("1 in", false))
	assert.Equal(t, "50.80 mm", Normalize("2 in", false))
}
