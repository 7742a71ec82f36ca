package gateway

import "fmt"

// Outcome classifies how a webhook call settled.
type Outcome int

const (
	// OutcomeOK means a 2xx response with a decodable JSON body.
	OutcomeOK Outcome = iota
	// OutcomeSkipped means no request was sent (e.g. empty token).
	OutcomeSkipped
	// OutcomeTimedOut means the timeout fired before the response arrived.
	OutcomeTimedOut
	// OutcomeHTTPError means a non-2xx status; StatusCode holds it.
	OutcomeHTTPError
	// OutcomeFailed covers network errors, cancelled callers and bodies
	// that are not JSON.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeHTTPError:
		return "http_error"
	default:
		return "failed"
	}
}

// Result is what every gateway operation returns. When the outcome is not
// OutcomeOK, Value holds the operation's documented fallback.
type Result[T any] struct {
	Value      T
	Outcome    Outcome
	StatusCode int
	Err        error
}

func (r Result[T]) OK() bool { return r.Outcome == OutcomeOK }

func (r Result[T]) String() string {
	switch r.Outcome {
	case OutcomeHTTPError:
		return fmt.Sprintf("%s (%d)", r.Outcome, r.StatusCode)
	case OutcomeFailed, OutcomeTimedOut:
		if r.Err != nil {
			return fmt.Sprintf("%s: %v", r.Outcome, r.Err)
		}
	}
	return r.Outcome.String()
}

// Level is the severity of a user-facing notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier receives the user-facing notices of a gateway call. A nil
// Notifier discards them.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

func notify(n Notifier, level Level, message string) {
	if n != nil {
		n.Notify(level, message)
	}
}
