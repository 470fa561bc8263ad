package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/earnings-cli/internal/dataset"
)

// Dataset columns read by the analyzers (normalized names).
const (
	ColPaymentMethod = "payment_method"
	ColRegion        = "client_region"
	ColExperience    = "experience_level"
	ColSuccessRate   = "job_success_rate"
	ColCompleted     = "job_completed"
	ColRating        = "client_rating"
	ColDuration      = "job_duration_days"
	ColEarnings      = "earnings_usd"
)

// RatingRanges are the fixed client-rating buckets used by SalaryVsRating.
var RatingRanges = []string{"3.0–3.5", "3.5–4.0", "4.0–4.5", "4.5–5.0"}

var ratingEdges = []float64{3.0, 3.5, 4.0, 4.5, 5.0}

// successBins is the requested number of success-rate quantile bins.
const successBins = 4

// ComparePaymentMethods returns mean earnings per payment method.
func ComparePaymentMethods(t *dataset.Table) (Result, error) {
	if err := requireColumns(t, ColPaymentMethod, ColEarnings); err != nil {
		return nil, err
	}
	methods, err := t.Text(ColPaymentMethod)
	if err != nil {
		return nil, err
	}
	earnings, err := t.Numbers(ColEarnings)
	if err != nil {
		return nil, err
	}
	groups := groupBy(len(methods), func(i int) ([]string, bool) {
		return []string{methods[i]}, methods[i] != ""
	}, earnings)

	out := make(Mapping, 0, len(groups))
	for _, g := range groups {
		out = append(out, Entry{Key: g.key[0], Value: mean(g.vals)})
	}
	return out, nil
}

// DistributionByRegion returns mean, median and count of earnings per client region.
func DistributionByRegion(t *dataset.Table) (Result, error) {
	if err := requireColumns(t, ColRegion, ColEarnings); err != nil {
		return nil, err
	}
	regions, err := t.Text(ColRegion)
	if err != nil {
		return nil, err
	}
	earnings, err := t.Numbers(ColEarnings)
	if err != nil {
		return nil, err
	}
	groups := groupBy(len(regions), func(i int) ([]string, bool) {
		return []string{regions[i]}, regions[i] != ""
	}, earnings)
	return toTable([]string{ColRegion}, groups), nil
}

// ExpertBelow100Projects returns the percentage of "expert" records with
// fewer than 100 completed jobs. With no experts the result is NaN.
func ExpertBelow100Projects(t *dataset.Table) (Result, error) {
	if err := requireColumns(t, ColExperience, ColCompleted); err != nil {
		return nil, err
	}
	levels, err := t.Text(ColExperience)
	if err != nil {
		return nil, err
	}
	completed, err := t.Numbers(ColCompleted)
	if err != nil {
		return nil, err
	}
	var experts, below int
	for i, lvl := range levels {
		if !strings.EqualFold(lvl, "expert") {
			continue
		}
		experts++
		// NaN compares false, so missing counts are never "below"
		if completed[i] < 100 {
			below++
		}
	}
	if experts == 0 {
		return Percentage(math.NaN()), nil
	}
	return Percentage(float64(below) / float64(experts) * 100), nil
}

// SalaryVsSuccessRate splits job success rate into up to four quantile
// bins within each region and summarizes earnings per (region, bin).
// Duplicate edges collapse; a region whose rates are all equal has no bin
// and is left out.
func SalaryVsSuccessRate(t *dataset.Table) (Result, error) {
	if err := requireColumns(t, ColRegion, ColSuccessRate, ColEarnings); err != nil {
		return nil, err
	}
	regions, err := t.Text(ColRegion)
	if err != nil {
		return nil, err
	}
	rates, err := t.Numbers(ColSuccessRate)
	if err != nil {
		return nil, err
	}
	earnings, err := t.Numbers(ColEarnings)
	if err != nil {
		return nil, err
	}

	// per-region edges
	byRegion := map[string][]float64{}
	for i, r := range regions {
		if r == "" {
			continue
		}
		byRegion[r] = append(byRegion[r], rates[i])
	}
	edges := make(map[string][]float64, len(byRegion))
	for r, vals := range byRegion {
		edges[r] = quantileEdges(vals, successBins)
	}

	groups := groupBy(len(regions), func(i int) ([]string, bool) {
		if regions[i] == "" {
			return nil, false
		}
		bin := binIndex(edges[regions[i]], rates[i])
		if bin < 0 {
			return nil, false
		}
		return []string{regions[i], strconv.Itoa(bin)}, true
	}, earnings)
	return toTable([]string{"region", "success_quartile"}, groups), nil
}

// SalaryVsRating summarizes earnings per region across four fixed
// client-rating ranges, keeping empty ranges with a zero count.
func SalaryVsRating(t *dataset.Table) (Result, error) {
	if err := requireColumns(t, ColRegion, ColRating, ColEarnings); err != nil {
		return nil, err
	}
	regions, err := t.Text(ColRegion)
	if err != nil {
		return nil, err
	}
	ratings, err := t.Numbers(ColRating)
	if err != nil {
		return nil, err
	}
	earnings, err := t.Numbers(ColEarnings)
	if err != nil {
		return nil, err
	}

	cells := map[string][][]float64{}
	for i, r := range regions {
		if r == "" || math.IsNaN(ratings[i]) || ratings[i] < 3.0 {
			continue
		}
		if cells[r] == nil {
			cells[r] = make([][]float64, len(RatingRanges))
		}
		bin := binIndex(ratingEdges, ratings[i])
		if bin < 0 {
			// above the top range: region stays, row is not counted
			continue
		}
		cells[r][bin] = append(cells[r][bin], earnings[i])
	}

	names := make([]string, 0, len(cells))
	for r := range cells {
		names = append(names, r)
	}
	sort.Strings(names)

	out := &Table{Keys: []string{"region", "rating_range"}}
	for _, r := range names {
		for b, label := range RatingRanges {
			out.Rows = append(out.Rows, GroupRow{Key: []string{r, label}, Stats: summarize(cells[r][b])})
		}
	}
	return out, nil
}

// JobDurationCorrelation returns the Pearson correlation between job
// duration and earnings. Constant columns give NaN.
func JobDurationCorrelation(t *dataset.Table) (Result, error) {
	if err := requireColumns(t, ColDuration, ColEarnings); err != nil {
		return nil, err
	}
	days, err := t.Numbers(ColDuration)
	if err != nil {
		return nil, err
	}
	earnings, err := t.Numbers(ColEarnings)
	if err != nil {
		return nil, err
	}
	return Correlation(pearson(days, earnings)), nil
}

// SalaryByExperience summarizes earnings per (region, experience level).
func SalaryByExperience(t *dataset.Table) (Result, error) {
	if err := requireColumns(t, ColRegion, ColExperience, ColEarnings); err != nil {
		return nil, err
	}
	regions, err := t.Text(ColRegion)
	if err != nil {
		return nil, err
	}
	levels, err := t.Text(ColExperience)
	if err != nil {
		return nil, err
	}
	earnings, err := t.Numbers(ColEarnings)
	if err != nil {
		return nil, err
	}
	groups := groupBy(len(regions), func(i int) ([]string, bool) {
		return []string{regions[i], levels[i]}, regions[i] != "" && levels[i] != ""
	}, earnings)
	return toTable([]string{"region", ColExperience}, groups), nil
}

// requireColumns reports every missing column at once.
func requireColumns(t *dataset.Table, names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", dataset.ErrColumnNotFound, strings.Join(missing, ", "))
	}
	return nil
}

type group struct {
	key  []string
	vals []float64
}

// groupBy collects vals by the key returned for each row index; rows whose
// key is rejected are skipped. Groups come back sorted by key.
func groupBy(n int, keyOf func(i int) ([]string, bool), vals []float64) []*group {
	index := map[string]*group{}
	var out []*group
	for i := 0; i < n; i++ {
		key, ok := keyOf(i)
		if !ok {
			continue
		}
		id := strings.Join(key, "\x00")
		g := index[id]
		if g == nil {
			g = &group{key: key}
			index[id] = g
			out = append(out, g)
		}
		g.vals = append(g.vals, vals[i])
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].key, out[j].key
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return out
}

func toTable(keys []string, groups []*group) *Table {
	t := &Table{Keys: keys, Rows: make([]GroupRow, 0, len(groups))}
	for _, g := range groups {
		t.Rows = append(t.Rows, GroupRow{Key: g.key, Stats: summarize(g.vals)})
	}
	return t
}

// Describe names the shape of a result, e.g. "table with 8 rows".
func Describe(r Result) string {
	switch v := r.(type) {
	case Mapping:
		return fmt.Sprintf("mapping with %d categories", len(v))
	case Percentage:
		return "percentage"
	case Correlation:
		return "correlation coefficient"
	case *Table:
		return fmt.Sprintf("table with %d rows", len(v.Rows))
	default:
		return "result"
	}
}
