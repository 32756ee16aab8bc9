package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		maxSize int
		want    string
	}{
		{"empty", "", 10, ""},
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "0123456789", 10, "0123456789"},
		{"over limit", `{"jsonrpc":"2.0"}`, 5, `{"jso...(truncated)`},
		{"does not split a rune", "aé", 2, "a...(truncated)"},
		{"multibyte at boundary", "éé", 2, "é...(truncated)"},
		{"default limit", strings.Repeat("x", MaxLogBodySize), 0, strings.Repeat("x", MaxLogBodySize)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TruncateBody(tt.data, tt.maxSize))
		})
	}

	long := strings.Repeat("y", MaxLogBodySize+1)
	assert.Equal(t, strings.Repeat("y", MaxLogBodySize)+"...(truncated)", TruncateBody(long, -1))
}
