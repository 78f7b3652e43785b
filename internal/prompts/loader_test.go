package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	prompt, err := Get("planner.json", "system")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Presentation Planner")
}

func TestGet_InvalidFile(t *testing.T) {
	_, err := Get("nonexistent.json", "system")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	_, err := Get("planner.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("nonexistent.json", "system")
	})
}

func TestAllStagePromptsPresent(t *testing.T) {
	for _, file := range []string{"planner.json", "researcher.json", "writer.json"} {
		for _, key := range []string{"system", "user"} {
			prompt, err := Get(file, key)
			require.NoError(t, err, "%s/%s", file, key)
			assert.NotEmpty(t, prompt)
		}
	}
}

func TestWriterPromptDemandsChart(t *testing.T) {
	system := MustGet("writer.json", "system")
	assert.Contains(t, system, "MANDATORY")
	assert.Contains(t, system, "chart")
}

func TestFormat(t *testing.T) {
	template := "Topic: {{.Topic}}\nSlides: {{.SlideCount}}"
	result := Format(template, map[string]string{
		"Topic":      "Quantum Computing",
		"SlideCount": "3",
	})
	assert.Equal(t, "Topic: Quantum Computing\nSlides: 3", result)
}
