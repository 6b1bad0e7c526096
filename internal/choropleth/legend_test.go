package choropleth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-research/housing-dashboard/internal/format"
)

func TestLegend_Currency(t *testing.T) {
	c, err := Classify(vals(100000, 150000, 200000, 300000), testRamp(2))
	require.NoError(t, err)

	legend := Legend(c, format.Currency)
	require.Len(t, legend, 2)
	assert.Equal(t, "$100,000 - $200,000", legend[0].Label)
	assert.Equal(t, "$200,000 - $300,000", legend[1].Label)
	assert.Equal(t, 3, legend[0].Count)
	assert.Equal(t, 1, legend[1].Count)
	assert.Equal(t, c.Ramp[1], legend[1].Color)
}

func TestLegend_Percent(t *testing.T) {
	c, err := Classify(vals(-1, 2), testRamp(3))
	require.NoError(t, err)

	legend := Legend(c, format.Percent)
	require.Len(t, legend, 3)
	assert.Equal(t, "-1.0% - 0.0%", legend[0].Label)
	assert.Equal(t, "1.0% - 2.0%", legend[2].Label)
}

func TestLegend_NoData(t *testing.T) {
	c, err := Classify([]*float64{nil}, testRamp(3))
	require.NoError(t, err)
	assert.Nil(t, Legend(c, format.Currency))
}
