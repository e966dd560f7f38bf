package ports

import "context"

// Port: the operator at the console.
type Prompter interface {
	// Print a line of output for the operator.
	Say(format string, args ...any)
	// Print question and return the operator's trimmed answer.
	// io.EOF means the operator closed the input.
	Ask(ctx context.Context, question string) (string, error)
}
