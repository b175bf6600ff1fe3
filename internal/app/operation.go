package app

// Operation statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation tracks a command or request that mutates the database.
// Operations are created in memory with ID=0 and get an auto-increment ID
// once recorded.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string
}

// NewOperation creates a new in-memory operation.
func NewOperation(operation, parameters string) *Operation {
	return &Operation{
		Operation:  operation,
		Parameters: parameters,
		Status:     StatusRunning,
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// Finish sets the final status from the outcome of the operation.
func (op *Operation) Finish(err error) {
	if err != nil {
		op.Status = StatusError
		return
	}
	op.Status = StatusSuccess
}
