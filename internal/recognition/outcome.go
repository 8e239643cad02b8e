package recognition

import "fmt"

type Kind string

const (
	KindRecognized         Kind = "RECOGNIZED"
	KindNotRecognized      Kind = "NOT_RECOGNIZED"
	KindServiceUnavailable Kind = "SERVICE_UNAVAILABLE"
)

// Outcome is produced once per request by Client.Recognize and never mutated.
type Outcome struct {
	Kind       Kind
	PersonName string
	Confidence float64
	// Convention that produced the response, empty when every attempt failed.
	Convention string
	Attempts   []Attempt
	Cause      error
}

// Attempt records one convention try for logs and diagnostics.
type Attempt struct {
	Convention string
	Err        error
}

func (o Outcome) Recognized() bool {
	return o.Kind == KindRecognized
}

func (o Outcome) String() string {
	switch o.Kind {
	case KindRecognized:
		return fmt.Sprintf("recognized %q (%.2f via %s)", o.PersonName, o.Confidence, o.Convention)
	case KindNotRecognized:
		return fmt.Sprintf("not recognized (%.2f via %s)", o.Confidence, o.Convention)
	default:
		return fmt.Sprintf("service unavailable after %d attempts: %v", len(o.Attempts), o.Cause)
	}
}
