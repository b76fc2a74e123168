package pipeline

// State is a step of a single Ask.
type State string

const (
	StateInit         State = "init"
	StateSchemaLoaded State = "schema_loaded"
	StateGenerated    State = "generated"
	StateExtracted    State = "extracted"
	StateValidated    State = "validated"
	StateExecuted     State = "executed"
	StateSummarized   State = "summarized"
	StateDone         State = "done"
	StateError        State = "error"
)

// Outcome classifies an Answer.
type Outcome string

const (
	// OutcomeAnswered means the model explained real query results.
	OutcomeAnswered Outcome = "answered"
	// OutcomeNoResult means the query ran and matched nothing.
	OutcomeNoResult Outcome = "no_result"
	// OutcomeRejected means the safety policy refused the generated statement.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means a collaborator failed or the request was canceled.
	OutcomeFailed Outcome = "failed"
)
