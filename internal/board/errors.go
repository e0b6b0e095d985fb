package board

import "errors"

var (
	ErrMalformedInput     = errors.New("malformed input")
	ErrInvalidCatalog     = errors.New("invalid piece catalog")
	ErrInvariantViolation = errors.New("position invariant violated")
	ErrIllegalMove        = errors.New("illegal move")
)

// InvariantError is raised with panic when the position reaches a state
// the rules cannot represent. The engine recovers it at its boundary.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return ErrInvariantViolation.Error() + ": " + e.Reason
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

func invariant(reason string) {
	panic(&InvariantError{Reason: reason})
}

// RecoverInvariant converts an InvariantError panic into *err. It must be
// deferred directly; any other panic is re-raised.
func RecoverInvariant(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if ie, ok := r.(*InvariantError); ok {
		*err = ie
		return
	}
	panic(r)
}
