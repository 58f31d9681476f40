package draft

import (
	"errors"
	"fmt"
)

var (
	// ErrStructuralMismatch matches every failure caused by the page not
	// having the expected shape, including per-slot DecodeErrors.
	ErrStructuralMismatch = errors.New("structural mismatch")

	// ErrWrongPage means the page-identity precondition did not hold and
	// nothing was evaluated.
	ErrWrongPage = errors.New("not a scoreboard page")
)

// MismatchError reports where in the pipeline the page diverged.
type MismatchError struct {
	Where string
	Err   error
}

func (e *MismatchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("structural mismatch at %s", e.Where)
	}
	return fmt.Sprintf("structural mismatch at %s: %v", e.Where, e.Err)
}

func (e *MismatchError) Unwrap() error { return e.Err }

func (e *MismatchError) Is(target error) bool { return target == ErrStructuralMismatch }

func mismatch(where string, err error) error {
	return &MismatchError{Where: where, Err: err}
}

// DecodeError is a hero slot that could not be turned into a HeroName.
type DecodeError struct {
	Slot int // position within its container, -1 when unknown
	Src  string
	Err  error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Src != "":
		return fmt.Sprintf("decode hero slot %d (src %q): %v", e.Slot, e.Src, e.Err)
	default:
		return fmt.Sprintf("decode hero slot %d: %v", e.Slot, e.Err)
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrStructuralMismatch }
