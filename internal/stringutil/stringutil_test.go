package stringutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTailLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{name: "empty", input: "", n: 3, expected: ""},
		{name: "fewer lines than requested", input: "a\nb\n", n: 3, expected: "a\nb"},
		{name: "keeps the last lines", input: "a\nb\nc\nd\n", n: 2, expected: "c\nd"},
		{name: "zero lines", input: "a\nb", n: 0, expected: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, TailLines(test.input, test.n))
		})
	}
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n  b", Indent("a\nb", "  "))
}

func TestTprintf(t *testing.T) {
	data := map[string]interface{}{
		"appName": "extupdate",
	}
	assert.Equal(t, "run extupdate --dry-run", Tprintf("run {{.appName}} --dry-run", data))
	assert.Equal(t, "EXTUPDATE_PLATFORM_VERSION", Tprintf("{{ .appName | upper }}_PLATFORM_VERSION", data))
	assert.Equal(t, "", Tprintf("{{ .appName | fail }}", data))
}
