package proof

import "fmt"

// Error implements the error interface so a ValidationError can be used
// anywhere a plain error is wanted (logging, wrapping for an API
// response), without forcing every caller through the accumulative
// ProofCheckResult shape.
func (e ValidationError) Error() string {
	return fmt.Sprintf("step %s: %s (%s)", e.StepID, e.Message, e.Code)
}
