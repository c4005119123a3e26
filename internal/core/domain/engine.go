package domain

import (
	"sort"
	"strings"
)

// Engine identifies a search-answer source (an AI overview, an answer engine).
// The set is open: engines beyond the built-in ones are registered at start-up.
type Engine string

// Built-in engines.
const (
	// EngineGoogleAIOverview is Google's AI Overview panel.
	EngineGoogleAIOverview Engine = "google_ai_overview"

	// EngineGoogleSnippet is Google's classic featured snippet and answer boxes.
	EngineGoogleSnippet Engine = "google_featured_snippet"

	// EnginePerplexity is Perplexity answers.
	EnginePerplexity Engine = "perplexity"

	// EngineBingCopilot is Bing Copilot answers.
	EngineBingCopilot Engine = "bing_copilot"

	// EngineChatGPTSearch is ChatGPT search answers.
	EngineChatGPTSearch Engine = "chatgpt_search"
)

// String returns the string representation.
func (e Engine) String() string {
	return string(e)
}

// ParseEngine normalises a free-form engine tag ("Bing Copilot" -> "bing_copilot").
func ParseEngine(s string) Engine {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return Engine(s)
}

// EngineRegistry holds the engines a run accepts.
// Records tagged with an unregistered engine fail validation.
type EngineRegistry struct {
	engines map[Engine]string
}

// NewEngineRegistry creates a registry with the built-in engines plus extra.
func NewEngineRegistry(extra ...Engine) *EngineRegistry {
	r := &EngineRegistry{
		engines: map[Engine]string{
			EngineGoogleAIOverview: "Google AI Overview",
			EngineGoogleSnippet:    "Google featured snippet",
			EnginePerplexity:       "Perplexity",
			EngineBingCopilot:      "Bing Copilot",
			EngineChatGPTSearch:    "ChatGPT search",
		},
	}
	for _, e := range extra {
		r.Register(e, "")
	}
	return r
}

// Register adds an engine. Registering an existing engine updates its description.
func (r *EngineRegistry) Register(e Engine, description string) {
	e = ParseEngine(string(e))
	if e == "" {
		return
	}
	if description == "" {
		description = string(e)
	}
	r.engines[e] = description
}

// Has returns true if the engine is registered.
func (r *EngineRegistry) Has(e Engine) bool {
	_, ok := r.engines[e]
	return ok
}

// Description returns the human-readable engine name.
func (r *EngineRegistry) Description(e Engine) string {
	if d, ok := r.engines[e]; ok {
		return d
	}
	return unknownDescription
}

// Names returns all registered engines in lexical order.
func (r *EngineRegistry) Names() []Engine {
	names := make([]Engine, 0, len(r.engines))
	for e := range r.engines {
		names = append(names, e)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
