package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPage(t *testing.T) {
	tests := []struct {
		name           string
		limit, offset  int
		wantL, wantOff int
	}{
		{name: "defaults", limit: 0, offset: 0, wantL: DefaultPageLimit, wantOff: 0},
		{name: "negative offset", limit: 10, offset: -5, wantL: 10, wantOff: 0},
		{name: "limit capped", limit: 10_000, offset: 20, wantL: MaxPageLimit, wantOff: 20},
		{name: "passthrough", limit: 25, offset: 75, wantL: 25, wantOff: 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, o := ClampPage(tt.limit, tt.offset)
			assert.Equal(t, tt.wantL, l)
			assert.Equal(t, tt.wantOff, o)
		})
	}
}

func TestNewPageKeepsTotal(t *testing.T) {
	page := NewPage(-1, 3, 42)
	assert.Equal(t, Page{Limit: DefaultPageLimit, Offset: 3, Total: 42}, page)
}
