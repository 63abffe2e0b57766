// Package result is the envelope every service operation returns. A value is
// in exactly one of three states: success with a payload, failure with a
// single message, or failure with a list of validation messages. Values are
// only produced through the constructors and never mutated afterwards.
package result

// Result wraps the outcome of a service operation carrying data of type T.
type Result[T any] struct {
	success          bool
	data             T
	errorMessage     string
	validationErrors []string
}

func Success[T any](data T) Result[T] {
	return Result[T]{success: true, data: data}
}

func Failure[T any](message string) Result[T] {
	return Result[T]{errorMessage: message}
}

func ValidationFailure[T any](messages []string) Result[T] {
	errs := make([]string, len(messages))
	copy(errs, messages)
	return Result[T]{validationErrors: errs}
}

func (r Result[T]) IsSuccess() bool { return r.success }

// Data returns the payload. It is the zero value of T unless IsSuccess.
func (r Result[T]) Data() T { return r.data }

func (r Result[T]) ErrorMessage() string { return r.errorMessage }

// ValidationErrors returns the field-level messages, in the order they were
// reported. Empty unless the value is in the validation-failure state.
func (r Result[T]) ValidationErrors() []string {
	errs := make([]string, len(r.validationErrors))
	copy(errs, r.validationErrors)
	return errs
}

// Void is the data-less variant for operations that return no payload.
type Void struct {
	success          bool
	errorMessage     string
	validationErrors []string
}

func VoidSuccess() Void {
	return Void{success: true}
}

func VoidFailure(message string) Void {
	return Void{errorMessage: message}
}

func VoidValidationFailure(messages []string) Void {
	errs := make([]string, len(messages))
	copy(errs, messages)
	return Void{validationErrors: errs}
}

func (r Void) IsSuccess() bool { return r.success }

func (r Void) ErrorMessage() string { return r.errorMessage }

func (r Void) ValidationErrors() []string {
	errs := make([]string, len(r.validationErrors))
	copy(errs, r.validationErrors)
	return errs
}
