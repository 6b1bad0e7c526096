package choropleth

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-research/housing-dashboard/internal/model"
)

func vals(vs ...float64) []*float64 {
	out := make([]*float64, len(vs))
	for i, v := range vs {
		out[i] = model.Float(v)
	}
	return out
}

func testRamp(n int) []Color {
	ramp := make([]Color, n)
	for i := range ramp {
		ramp[i] = Color{R: uint8(i * 10)}
	}
	return ramp
}

func bins(c Classification) []int {
	out := make([]int, len(c.Assignments))
	for i, a := range c.Assignments {
		out[i] = a.Bin
	}
	return out
}

func TestClassify_EqualWidth(t *testing.T) {
	c, err := Classify(vals(10, 20, 30, 40), testRamp(4))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3}, bins(c))
	assert.Equal(t, []float64{10, 17.5, 25, 32.5, 40}, c.Edges)
	for i, a := range c.Assignments {
		require.NotNil(t, a.Color)
		assert.Equal(t, c.Ramp[a.Bin], *a.Color, "value %d", i)
	}
}

func TestClassify_EdgeGoesToLowerBin(t *testing.T) {
	c, err := Classify(vals(10, 17.5, 25, 40), testRamp(4))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 3}, bins(c))
}

func TestClassify_RangeWiderThanFloat64(t *testing.T) {
	c, err := Classify(vals(-math.MaxFloat64, 0, math.MaxFloat64), testRamp(4))
	require.NoError(t, err)
	for _, e := range c.Edges {
		assert.False(t, math.IsNaN(e) || math.IsInf(e, 0), "edges %v", c.Edges)
	}
	assert.Equal(t, []int{0, 1, 3}, bins(c))
}

func TestClassify_ConstantColumn(t *testing.T) {
	c, err := Classify(vals(5, 5, 5), testRamp(5))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, bins(c))

	single, err := Classify(vals(42), testRamp(3))
	require.NoError(t, err)
	assert.Equal(t, []int{0}, bins(single))
}

func TestClassify_NullsKeepAlignment(t *testing.T) {
	values := []*float64{model.Float(1), nil, model.Float(3), model.Float(math.NaN()), model.Float(2)}
	c, err := Classify(values, testRamp(2))
	require.NoError(t, err)

	require.Len(t, c.Assignments, len(values))
	assert.Equal(t, []int{0, NoBin, 1, NoBin, 0}, bins(c))
	assert.Nil(t, c.Assignments[1].Color)
	assert.Nil(t, c.Assignments[3].Color)
}

func TestClassify_AllNull(t *testing.T) {
	c, err := Classify([]*float64{nil, nil}, testRamp(3))
	require.NoError(t, err)
	assert.Equal(t, []int{NoBin, NoBin}, bins(c))
	assert.Empty(t, c.Edges)
}

func TestClassify_EmptyRamp(t *testing.T) {
	_, err := Classify(vals(1, 2), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}

func TestClassify_FewDistinctValues(t *testing.T) {
	// two distinct values over seven bins leaves the middle bins empty
	c, err := Classify(vals(1, 1, 8, 8), testRamp(7))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 6, 6}, bins(c))
	assert.Equal(t, []int{2, 0, 0, 0, 0, 0, 2}, c.Counts())
}

func TestClassify_BinsInRange(t *testing.T) {
	inputs := [][]float64{
		{0.1, 0.2, 0.30000000000000004, 0.7},
		{-5, 5, 0, 2.5, -2.5},
		{1e9, 1e9 + 1, 1e9 + 2},
		{3.3, 3.3, 3.3, 9.9},
	}
	for _, in := range inputs {
		for n := 1; n <= 7; n++ {
			c, err := Classify(vals(in...), testRamp(n))
			require.NoError(t, err)
			require.Len(t, c.Assignments, len(in))
			for _, a := range c.Assignments {
				assert.GreaterOrEqual(t, a.Bin, 0)
				assert.Less(t, a.Bin, n)
			}
		}
	}
}

func TestClassify_MaxInLastBin(t *testing.T) {
	c, err := Classify(vals(0.1, 0.2, 0.7), testRamp(3))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Assignments[2].Bin)
	assert.Equal(t, 0.7, c.Edges[3])
}
