package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name                 string
		page, size           int
		wantPage, wantSize   int
	}{
		{"zero values fall back to defaults", 0, 0, 1, 20},
		{"negative page floored to one", -5, 10, 1, 10},
		{"oversized page size capped", 3, 500, 3, 100},
		{"max page size passes through", 1, 100, 1, 100},
		{"ordinary values untouched", 2, 25, 2, 25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, s := Sanitize(tc.page, tc.size)
			assert.Equal(t, tc.wantPage, p)
			assert.Equal(t, tc.wantSize, s)
		})
	}
}

func TestOffsetLimit(t *testing.T) {
	off, lim := OffsetLimit(1, 20)
	assert.Equal(t, 0, off)
	assert.Equal(t, 20, lim)

	off, lim = OffsetLimit(3, 25)
	assert.Equal(t, 50, off)
	assert.Equal(t, 25, lim)

	// Unsanitised inputs are clamped before computing the offset.
	off, lim = OffsetLimit(0, 0)
	assert.Equal(t, 0, off)
	assert.Equal(t, 20, lim)
}

func TestBuildMeta(t *testing.T) {
	meta := BuildMeta(0, 1, 20)
	assert.Equal(t, 1, meta.TotalPages, "empty collection still has one page")
	assert.Equal(t, int64(0), meta.Total)

	meta = BuildMeta(21, 1, 20)
	assert.Equal(t, 2, meta.TotalPages)

	meta = BuildMeta(20, 1, 20)
	assert.Equal(t, 1, meta.TotalPages)

	meta = BuildMeta(101, 2, 50)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 2, meta.Page)
}

func TestNewPageNormalisesNil(t *testing.T) {
	page := NewPage[string](nil, BuildMeta(0, 1, 20))
	assert.NotNil(t, page.Items)
	assert.Len(t, page.Items, 0)
}
