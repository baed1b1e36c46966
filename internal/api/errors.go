package api

import "fmt"

// Kind classifies a failed call. The UI treats every kind the same way;
// the distinction exists for logs and scripting.
type Kind int

const (
	KindTransport Kind = iota
	KindStatus
	KindDecode
	KindUnsupported
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindUnsupported:
		return "unsupported"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

type Error struct {
	Op         string
	Kind       Kind
	StatusCode int
	Body       string
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s failed: status %d", e.Op, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("%s failed: %s: %v", e.Op, e.Kind, e.Cause)
	default:
		return fmt.Sprintf("%s failed: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}
