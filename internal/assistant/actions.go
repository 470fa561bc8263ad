package assistant

import (
	"sort"

	"github.com/KaramelBytes/earnings-cli/internal/analysis"
)

// Action names one analysis the classifier can route a question to.
type Action string

// NoAction means the question matched no analysis; the prompt falls back
// to a raw data sample.
const NoAction Action = ""

const (
	ComparePayment         Action = "compare_payment"
	ByRegion               Action = "by_region"
	ExpertUnder100         Action = "expert_under_100"
	SalaryVsSuccessRate    Action = "salary_vs_success_rate"
	SalaryVsRating         Action = "salary_vs_rating"
	JobDurationCorrelation Action = "job_duration_correlation"
	SalaryByExperience     Action = "salary_by_experience"
)

// ActionSpec binds an action to its analyzer and a one-line description
// shown to the classifier and by the actions command.
type ActionSpec struct {
	Name        Action
	Analyzer    analysis.Analyzer
	Description string
}

var actions = map[Action]ActionSpec{
	ComparePayment: {
		Name:        ComparePayment,
		Analyzer:    analysis.ComparePaymentMethods,
		Description: "mean earnings per payment method",
	},
	ByRegion: {
		Name:        ByRegion,
		Analyzer:    analysis.DistributionByRegion,
		Description: "mean, median and count of earnings per client region",
	},
	ExpertUnder100: {
		Name:        ExpertUnder100,
		Analyzer:    analysis.ExpertBelow100Projects,
		Description: "percentage of expert freelancers with fewer than 100 completed jobs",
	},
	SalaryVsSuccessRate: {
		Name:        SalaryVsSuccessRate,
		Analyzer:    analysis.SalaryVsSuccessRate,
		Description: "earnings per region across job success rate quartiles",
	},
	SalaryVsRating: {
		Name:        SalaryVsRating,
		Analyzer:    analysis.SalaryVsRating,
		Description: "earnings per region across client rating ranges (3.0 to 5.0)",
	},
	JobDurationCorrelation: {
		Name:        JobDurationCorrelation,
		Analyzer:    analysis.JobDurationCorrelation,
		Description: "correlation between job duration and earnings",
	},
	SalaryByExperience: {
		Name:        SalaryByExperience,
		Analyzer:    analysis.SalaryByExperience,
		Description: "earnings per region and experience level",
	},
}

// Lookup returns the ActionSpec for a known action.
func Lookup(a Action) (ActionSpec, bool) {
	spec, ok := actions[a]
	return spec, ok
}

// ParseAction matches s exactly against the known identifiers. Anything
// else, including case variants, yields NoAction.
func ParseAction(s string) Action {
	a := Action(s)
	if _, ok := actions[a]; ok {
		return a
	}
	return NoAction
}

// Actions lists all specs sorted by name.
func Actions() []ActionSpec {
	out := make([]ActionSpec, 0, len(actions))
	for _, spec := range actions {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
