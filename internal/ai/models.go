package ai

import (
	"sort"
	"strings"
)

// Model metadata and simple pricing helpers for debug cost estimates.
// Prices are illustrative and should be verified against provider docs.

type ModelInfo struct {
	Name          string
	ContextTokens int     // approximate context window
	InputPerK     float64 // USD per 1K input tokens
	OutputPerK    float64 // USD per 1K output tokens
}

var models = map[string]ModelInfo{
	"gpt-4.1": {
		Name:          "gpt-4.1",
		ContextTokens: 1047576,
		InputPerK:     0.002,
		OutputPerK:    0.008,
	},
	"gpt-4.1-mini": {
		Name:          "gpt-4.1-mini",
		ContextTokens: 1047576,
		InputPerK:     0.0004,
		OutputPerK:    0.0016,
	},
	"gpt-4o": {
		Name:          "gpt-4o",
		ContextTokens: 128000,
		InputPerK:     0.0025,
		OutputPerK:    0.01,
	},
	"gpt-4o-mini": {
		Name:          "gpt-4o-mini",
		ContextTokens: 128000,
		InputPerK:     0.00015,
		OutputPerK:    0.0006,
	},
	// Common local (Ollama) tags
	"llama3.1:8b-instruct": {
		Name:          "llama3.1:8b-instruct",
		ContextTokens: 8192,
	},
	"mistral:7b-instruct": {
		Name:          "mistral:7b-instruct",
		ContextTokens: 8192,
	},
}

// LookupModel returns ModelInfo and ok flag. OpenRouter-style names
// ("openai/gpt-4.1") resolve to their bare entry.
func LookupModel(name string) (ModelInfo, bool) {
	if mi, ok := models[name]; ok {
		return mi, true
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		mi, ok := models[name[i+1:]]
		return mi, ok
	}
	return ModelInfo{}, false
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	inCost := (float64(promptTokens) / 1000.0) * mi.InputPerK
	outCost := (float64(completionTokens) / 1000.0) * mi.OutputPerK
	return inCost + outCost, true
}

// Catalog returns model names in sorted order with their metadata.
func Catalog() []ModelInfo {
	out := make([]ModelInfo, 0, len(models))
	for _, mi := range models {
		out = append(out, mi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
