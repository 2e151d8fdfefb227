package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"stmariedumont_warfare":    "stmariedumontwarfare",
		"St Marie Du Mont Warfare": "stmariedumontwarfare",
		"ST MARIE DU MONT WARFARE": "stmariedumontwarfare",
		"  hill 400  ":             "hill400",
		"El-Alamein (Warfare)":     "elalameinwarfare",
		"":                         "",
		"___":                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeKey(in), "input %q", in)
	}
}
