package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantileInterpolates(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, quantile(sorted, 0))
	assert.Equal(t, 4.0, quantile(sorted, 1))
	assert.InDelta(t, 2.5, quantile(sorted, 0.5), 1e-9)
	assert.True(t, math.IsNaN(quantile(nil, 0.5)))
}

func TestQuantileEdgesCollapseDuplicates(t *testing.T) {
	assert.Equal(t, []float64{10, 20, 30, 40, 50}, quantileEdges([]float64{50, 10, 30, 20, 40}, 4))
	assert.Equal(t, []float64{7}, quantileEdges([]float64{7, 7, math.NaN(), 7}, 5))
	assert.Nil(t, quantileEdges([]float64{math.NaN()}, 5))
}

func TestBinIndex(t *testing.T) {
	edges := []float64{0, 10, 20}
	assert.Equal(t, 0, binIndex(edges, 0), "lowest edge is inclusive")
	assert.Equal(t, 0, binIndex(edges, 10), "bins are right-closed")
	assert.Equal(t, 1, binIndex(edges, 10.5))
	assert.Equal(t, 1, binIndex(edges, 20))
	assert.Equal(t, -1, binIndex(edges, 21))
	assert.Equal(t, -1, binIndex(edges, -1))
	assert.Equal(t, -1, binIndex(edges, math.NaN()))

	assert.Equal(t, -1, binIndex([]float64{5}, 5), "a collapsed edge set has no bins")
	assert.Equal(t, -1, binIndex(nil, 5))
}

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1.0, pearson([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-9)
	assert.InDelta(t, -1.0, pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-9)
	assert.InDelta(t, 1.0, pearson([]float64{1, math.NaN(), 2, 3}, []float64{1, 100, 2, 3}), 1e-9)
	assert.True(t, math.IsNaN(pearson([]float64{1}, []float64{1})))
	assert.True(t, math.IsNaN(pearson([]float64{1, 1, 1}, []float64{1, 2, 3})))
}

func TestSummarizeSkipsNaN(t *testing.T) {
	s := summarize([]float64{3, math.NaN(), 1, 2})
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 2.0, s.Mean, 1e-9)
	assert.InDelta(t, 2.0, s.Median, 1e-9)

	empty := summarize(nil)
	assert.Zero(t, empty.Count)
	assert.True(t, math.IsNaN(empty.Mean))
}
