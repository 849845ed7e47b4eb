package llm

import (
	_ "embed"
	"sync"

	. "hybridai/internal/logging"
	"gopkg.in/yaml.v3"
)

//go:embed personalities.yaml
var personalitiesYAML []byte

var (
	personalityOnce    sync.Once
	personalityPrompts map[string]map[string]string
)

// loadPersonalities parses the embedded prompt tables once.
func loadPersonalities() {
	personalityOnce.Do(func() {
		if err := yaml.Unmarshal(personalitiesYAML, &personalityPrompts); err != nil {
			// Embedded resource, parse failure is a build defect.
			L_error("llm: failed to parse personality tables", "error", err)
			personalityPrompts = map[string]map[string]string{}
		}
	})
}

// SystemPrompt returns the system prompt for a backend type and
// personality tag. Unknown personalities fall back to helpful; an
// unknown backend type falls back to the local table.
func SystemPrompt(backendType, personality string) string {
	loadPersonalities()

	table, ok := personalityPrompts[backendType]
	if !ok {
		table = personalityPrompts[TypeLocal]
	}
	if prompt, ok := table[NormalizePersonality(personality)]; ok {
		return prompt
	}
	return table[PersonalityHelpful]
}
