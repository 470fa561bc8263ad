package analysis

import (
	"math"
	"sort"
)

// summarize computes mean, median and count over the non-NaN values.
func summarize(vals []float64) Stats {
	clean := dropNaN(vals)
	if len(clean) == 0 {
		return Stats{Mean: math.NaN(), Median: math.NaN()}
	}
	var sum float64
	for _, v := range clean {
		sum += v
	}
	sort.Float64s(clean)
	return Stats{
		Mean:   sum / float64(len(clean)),
		Median: quantile(clean, 0.5),
		Count:  len(clean),
	}
}

func mean(vals []float64) float64 {
	return summarize(vals).Mean
}

func dropNaN(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// quantileEdges returns the distinct bin edges splitting vals into up to
// n equal-frequency bins. Duplicate edges collapse, so fewer bins result
// when values repeat.
func quantileEdges(vals []float64, n int) []float64 {
	clean := dropNaN(vals)
	if len(clean) == 0 || n <= 0 {
		return nil
	}
	sort.Float64s(clean)
	edges := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		e := quantile(clean, float64(i)/float64(n))
		if len(edges) > 0 && e == edges[len(edges)-1] {
			continue
		}
		edges = append(edges, e)
	}
	return edges
}

// binIndex places x into right-closed bins defined by edges, with the
// lowest edge inclusive. It returns -1 for NaN or out-of-range values.
// Fewer than two edges define no bin at all, so a group whose values are
// all equal gets no bin and drops out of the result.
func binIndex(edges []float64, x float64) int {
	if math.IsNaN(x) || len(edges) < 2 {
		return -1
	}
	if x < edges[0] || x > edges[len(edges)-1] {
		return -1
	}
	if x == edges[0] {
		return 0
	}
	// first edge >= x closes the bin
	i := sort.SearchFloat64s(edges, x)
	return i - 1
}

// pearson computes the correlation over pairwise non-NaN observations.
// Fewer than two pairs or zero variance yields NaN.
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	var px, py []float64
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		px = append(px, xs[i])
		py = append(py, ys[i])
	}
	if len(px) < 2 {
		return math.NaN()
	}
	var mx, my float64
	for i := range px {
		mx += px[i]
		my += py[i]
	}
	mx /= float64(len(px))
	my /= float64(len(py))
	var sxy, sxx, syy float64
	for i := range px {
		dx := px[i] - mx
		dy := py[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	denom := math.Sqrt(sxx * syy)
	if denom == 0 {
		return math.NaN()
	}
	r := sxy / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}
