package sales

import "context"

// Notifier is the user-visible alert surface. Every error and success message
// a controller produces goes through it.
type Notifier interface {
	Alert(msg string)
	Success(msg string)
}

// Confirmer asks the user a blocking yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}
