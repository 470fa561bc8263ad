package assistant

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Parsed once at package init; each template is named after its file.
var prompts = template.Must(template.New("prompts").ParseFS(promptFS, "prompts/*.tmpl"))

const (
	classifierTemplate = "classifier.tmpl"
	fallbackTemplate   = "fallback.tmpl"
)

// templateFor returns the template file bound to an action.
func templateFor(a Action) string { return string(a) + ".tmpl" }

// promptData is the value every template executes against. Only the fields
// a template references need to be set.
type promptData struct {
	Question string
	Data     string
	Pct      string
	Corr     string
	Table    string
	Rows     int
	Actions  []ActionSpec
}

func render(name string, data promptData) (string, error) {
	t := prompts.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("prompt template %q not found", name)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return b.String(), nil
}
