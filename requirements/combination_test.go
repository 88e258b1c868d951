package requirements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct(t *testing.T) {
	tests := []struct {
		name   string
		groups [][]int
		want   [][]int
	}{
		{"No groups", nil, [][]int{{}}},
		{"Single group", [][]int{{1, 2}}, [][]int{{1}, {2}}},
		{"Two groups in order", [][]int{{1, 2}, {3, 4, 5}}, [][]int{
			{1, 3}, {1, 4}, {1, 5},
			{2, 3}, {2, 4}, {2, 5},
		}},
		{"Empty group", [][]int{{1, 2}, {}}, [][]int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Product(tt.groups))
		})
	}
}

func TestProduct_SizeIsProductOfGroupSizes(t *testing.T) {
	groups := [][]string{{"a", "b"}, {"c", "d", "e"}, {"f", "g"}}
	got := Product(groups)
	require.Len(t, got, 12)
	for _, combo := range got {
		assert.Len(t, combo, len(groups))
	}
}

func TestProduct_CombinationsDoNotShareStorage(t *testing.T) {
	got := Product([][]int{{1}, {2, 3}})
	require.Len(t, got, 2)

	got[0][0] = 99
	assert.Equal(t, []int{1, 3}, got[1])
}
