// Package lookup models the outcome of best-effort reads where absence is a
// normal branch rather than an error.
package lookup

type Outcome int

const (
	Found Outcome = iota
	NotFound
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	default:
		return "failed"
	}
}

type Result[T any] struct {
	Outcome Outcome
	Value   *T
	Err     error
}

func Hit[T any](v *T) Result[T] {
	return Result[T]{Outcome: Found, Value: v}
}

func Miss[T any]() Result[T] {
	return Result[T]{Outcome: NotFound}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{Outcome: Failed, Err: err}
}

// Get returns the value and whether it was found.
func (r Result[T]) Get() (*T, bool) {
	return r.Value, r.Outcome == Found
}
