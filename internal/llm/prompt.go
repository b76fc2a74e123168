package llm

import (
	"strings"
	"text/template"
)

// GenerationVars fill the SQL generation prompt.
type GenerationVars struct {
	Schema         string
	Question       string
	CurrentDateIST string
	CurrentYear    int
	Dialect        string // "PostgreSQL" or "SQLite"
}

// ExplanationVars fill the result explanation prompt.
type ExplanationVars struct {
	Question string
	Result   string
}

var generationSystem = template.Must(template.New("generation").Parse(
	`You are a SQL query generator for a {{.Dialect}} database that tracks personal expenses. Your job is to convert a natural language question into one valid SQL query.

RULES:
1. Output ONLY the SQL query - no explanations, no markdown code blocks, no comments
2. Output exactly ONE SELECT statement ending with a single semicolon
3. Never use INSERT, UPDATE, DELETE, DROP, ALTER, TRUNCATE, CREATE, GRANT or any other modifying statement
4. Use only tables and columns that appear in the schema below
5. Use table aliases for readability when joining multiple tables
6. If the question is ambiguous, make reasonable assumptions and proceed
7. Resolve relative dates ("today", "this month", "last year") against the current date below, not against the sample rows

CURRENT DATE AND TIME (IST): {{.CurrentDateIST}}
CURRENT YEAR: {{.CurrentYear}}

DATABASE SCHEMA (with sample rows):
{{.Schema}}`))

var explanationSystem = `You explain SQL query results to a non-technical user of an expense tracker.

RULES:
1. Answer the user's question directly in one or two short paragraphs
2. Use only the data provided; do not invent values
3. Mention amounts, dates and categories exactly as they appear
4. Tabular data may be given as rows[N]{columns}: followed by one CSV line per row`

var explanationUser = template.Must(template.New("explanation").Parse(
	`QUESTION: {{.Question}}

RESULT:
{{.Result}}`))

// GenerationPrompt builds the request that asks the model for SQL.
func GenerationPrompt(vars GenerationVars) (Request, error) {
	if vars.Dialect == "" {
		vars.Dialect = "PostgreSQL"
	}
	var sb strings.Builder
	if err := generationSystem.Execute(&sb, vars); err != nil {
		return Request{}, err
	}
	return Request{System: sb.String(), Prompt: vars.Question}, nil
}

// ExplanationPrompt builds the request that asks the model to explain a result.
func ExplanationPrompt(vars ExplanationVars) (Request, error) {
	var sb strings.Builder
	if err := explanationUser.Execute(&sb, vars); err != nil {
		return Request{}, err
	}
	return Request{System: explanationSystem, Prompt: sb.String()}, nil
}
