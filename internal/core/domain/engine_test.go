package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEngine(t *testing.T) {
	assert.Equal(t, EngineBingCopilot, ParseEngine("Bing Copilot"))
	assert.Equal(t, EngineChatGPTSearch, ParseEngine("chatgpt-search"))
	assert.Equal(t, Engine(""), ParseEngine("  "))
}

func TestEngineRegistry(t *testing.T) {
	r := NewEngineRegistry("You.com Answers")

	assert.True(t, r.Has(EnginePerplexity))
	assert.True(t, r.Has("you.com_answers"))
	assert.False(t, r.Has("altavista"))
	assert.Equal(t, "Perplexity", r.Description(EnginePerplexity))
	assert.Equal(t, unknownDescription, r.Description("altavista"))

	names := r.Names()
	assert.Len(t, names, 6)
	assert.IsIncreasing(t, names)
}

func TestEngineRegistry_RegisterIgnoresEmpty(t *testing.T) {
	r := NewEngineRegistry()
	r.Register("", "nothing")

	assert.Len(t, r.Names(), 5)
}
