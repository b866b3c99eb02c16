package cuid2

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int64
		expected string
	}{
		{"zero", 0, "000000"},
		{"one second", 1, "000001"},
		{"62 seconds", 62, "000010"},
		{"one minute", 60, "00000y"},
		{"one day", 86400, "000MTY"},
		{"2024-01-01", 1704067200, "1rK5iq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EncodeTimestamp(tt.seconds))
		})
	}
}

func TestNew_Format(t *testing.T) {
	id := New("cat")
	assert.Regexp(t, regexp.MustCompile(`^cat_[0-9A-Za-z]{24}$`), id)
}

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := New("prd")
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewAt_SortsByTime(t *testing.T) {
	earlier := NewAt("run", time.Unix(1704067200, 0))
	later := NewAt("run", time.Unix(1704067200+3600, 0))
	assert.True(t, strings.Compare(earlier[:10], later[:10]) < 0)
}
