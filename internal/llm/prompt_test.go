package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationPrompt(t *testing.T) {
	req, err := GenerationPrompt(GenerationVars{
		Schema:         "TABLE: expenses\n  - amount: real",
		Question:       "how much did I spend this month?",
		CurrentDateIST: "2025-01-01 01:30:00 IST (UTC+05:30)",
		CurrentYear:    2025,
		Dialect:        "SQLite",
	})
	require.NoError(t, err)

	assert.Equal(t, "how much did I spend this month?", req.Prompt)
	assert.Contains(t, req.System, "SQLite database")
	assert.Contains(t, req.System, "CURRENT DATE AND TIME (IST): 2025-01-01 01:30:00 IST (UTC+05:30)")
	assert.Contains(t, req.System, "CURRENT YEAR: 2025")
	assert.Contains(t, req.System, "TABLE: expenses\n  - amount: real")
}

func TestGenerationPromptDefaultDialect(t *testing.T) {
	req, err := GenerationPrompt(GenerationVars{Question: "q"})
	require.NoError(t, err)
	assert.Contains(t, req.System, "PostgreSQL database")
}

func TestGenerationPromptDoesNotEscape(t *testing.T) {
	req, err := GenerationPrompt(GenerationVars{Schema: "note <text> & 'x'", Question: "a < b"})
	require.NoError(t, err)
	assert.Contains(t, req.System, "note <text> & 'x'")
	assert.Equal(t, "a < b", req.Prompt)
}

func TestExplanationPrompt(t *testing.T) {
	req, err := ExplanationPrompt(ExplanationVars{
		Question: "top categories?",
		Result:   "rows[2]{category,total}:\n  food,19.75\n  travel,40",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, req.System)
	assert.Equal(t, "QUESTION: top categories?\n\nRESULT:\nrows[2]{category,total}:\n  food,19.75\n  travel,40", req.Prompt)
}
