package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNameplate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Nameplate
	}{
		{
			name: "all fields",
			raw:  "manufacturer: Planmeca\nmodel: ProX\nserial: XP123456\nmanufactured: 2019-04",
			expected: Nameplate{
				Manufacturer: "Planmeca", Model: "ProX", Serial: "XP123456", Manufactured: "2019-04",
			},
		},
		{
			name:     "preamble and markdown",
			raw:      "Here is what I can read:\n- **Manufacturer:** Gendex\n- **Serial Number:** GX-77\n",
			expected: Nameplate{Manufacturer: "Gendex", Serial: "GX-77"},
		},
		{
			name:     "unknown values are dropped",
			raw:      "manufacturer: Sirona\nmodel: unknown\nserial: N/A",
			expected: Nameplate{Manufacturer: "Sirona"},
		},
		{
			name:     "first value wins",
			raw:      "model: A1\nmodel number: B2",
			expected: Nameplate{Model: "A1"},
		},
		{
			name:     "value containing a colon",
			raw:      "serial: SN:0042",
			expected: Nameplate{Serial: "SN:0042"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			np := ParseNameplate(tt.raw)
			tt.expected.Raw = tt.raw
			assert.Equal(t, tt.expected, *np)
		})
	}
}

func TestNameplateEmpty(t *testing.T) {
	assert.True(t, ParseNameplate("I cannot read this plate.").Empty())
	assert.False(t, ParseNameplate("serial: 1").Empty())
}
