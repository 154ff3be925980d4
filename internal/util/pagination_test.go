package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page, size int
		from, lim  int
	}{
		{name: "first page", page: 1, size: 10, from: 0, lim: 10},
		{name: "third page", page: 3, size: 10, from: 20, lim: 10},
		{name: "page below one", page: 0, size: 5, from: 0, lim: 5},
		{name: "size too big", page: 2, size: 500, from: DefaultPageSize, lim: DefaultPageSize},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			from, lim := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.lim, lim)
		})
	}
}

func TestParseIntDefaultAndTotalPages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4, ParseIntDefault("4", 1))
	assert.Equal(t, 1, ParseIntDefault("x", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))
	assert.EqualValues(t, 3, TotalPages(21, 10))
	assert.EqualValues(t, 0, TotalPages(0, 10))
}
