package pipeline

import (
	"context"
	"errors"

	"github.com/JonMunkholm/sqlask/internal/sqlguard"
)

var (
	// ErrSchemaUnavailable means the schema provider could not describe the database.
	ErrSchemaUnavailable = errors.New("schema unavailable")

	// ErrGeneration means the SQL generation call to the model failed.
	ErrGeneration = errors.New("sql generation failed")

	// ErrEmptyGeneration means the model returned no statement.
	ErrEmptyGeneration = sqlguard.ErrEmptyGeneration

	// ErrUnsafeQuery means the generated statement failed the safety policy.
	// It is a correct refusal, not a malfunction.
	ErrUnsafeQuery = errors.New("unsafe query rejected")

	// ErrExecution means the database rejected or failed to run the statement.
	ErrExecution = errors.New("query execution failed")

	// ErrExplanation means the explanation call to the model failed.
	ErrExplanation = errors.New("result explanation failed")
)

// Fixed answers returned in place of a model explanation.
const (
	AnswerSchemaUnavailable = "Sorry, I couldn't read the database schema right now. Please try again later."
	AnswerGenerationFailed  = "Sorry, I couldn't generate a query for that question right now. Please try again later."
	AnswerEmptyGeneration   = "Sorry, I couldn't come up with a query for that question. Try rephrasing it."
	AnswerUnsafeQuery       = "Sorry, I can only run read-only SELECT queries. The generated query was blocked for safety."
	AnswerExecutionFailed   = "Sorry, the generated query could not be executed against the database."
	AnswerNoResult          = "No matching records were found for your question."
	AnswerExplanationFailed = "The query ran, but I couldn't put the result into words right now. Please try again later."
	AnswerCanceled          = "The request was canceled before it finished."
	AnswerInternal          = "Sorry, something went wrong while answering your question."
)

// answerFor maps a pipeline error to its fixed answer.
func answerFor(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return AnswerCanceled
	case errors.Is(err, ErrUnsafeQuery):
		return AnswerUnsafeQuery
	case errors.Is(err, ErrEmptyGeneration):
		return AnswerEmptyGeneration
	case errors.Is(err, ErrSchemaUnavailable):
		return AnswerSchemaUnavailable
	case errors.Is(err, ErrGeneration):
		return AnswerGenerationFailed
	case errors.Is(err, ErrExecution):
		return AnswerExecutionFailed
	case errors.Is(err, ErrExplanation):
		return AnswerExplanationFailed
	default:
		return AnswerInternal
	}
}
