package assistant

import (
	"fmt"

	"github.com/KaramelBytes/earnings-cli/internal/analysis"
	"github.com/KaramelBytes/earnings-cli/internal/dataset"
)

// DefaultSampleRows is how many raw rows the fallback prompt carries.
const DefaultSampleRows = 40

// BuildPrompt produces the answering prompt for a classified question.
// NoAction sends a raw sample of the table; a known action runs its
// analyzer and fills the action's template with the result.
func BuildPrompt(action Action, question string, table *dataset.Table, sampleRows int) (string, error) {
	spec, ok := Lookup(action)
	if !ok {
		return fallbackPrompt(question, table, sampleRows)
	}
	result, err := spec.Analyzer(table)
	if err != nil {
		return "", fmt.Errorf("run %s: %w", action, err)
	}
	return resultPrompt(action, question, result)
}

func fallbackPrompt(question string, table *dataset.Table, sampleRows int) (string, error) {
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}
	head := table.Head(sampleRows)
	return render(fallbackTemplate, promptData{
		Question: question,
		Rows:     head.Len(),
		Table:    analysis.MarkdownRows(head.Columns(), head.Records()),
	})
}

func resultPrompt(action Action, question string, result analysis.Result) (string, error) {
	switch r := result.(type) {
	case analysis.Mapping:
		return render(templateFor(action), promptData{Question: question, Data: r.String()})
	case analysis.Percentage, analysis.Correlation:
		// templates pick whichever name reads naturally
		v := r.String()
		return render(templateFor(action), promptData{Question: question, Pct: v, Corr: v})
	case *analysis.Table:
		return render(templateFor(action), promptData{Question: question, Table: analysis.RenderTable(r)})
	default:
		return fmt.Sprintf("Question: %s\n\nAnalysis result: %s", question, result), nil
	}
}
