// core/qcerr/qcerr.go
// Validation errors shared by every core package.
//
// All engine failures are recoverable values of *ValidationError. Callers test
// the kind with errors.Is against the sentinels below, e.g.
//
//	if errors.Is(err, qcerr.ErrAnchorOutOfRange) { ... }
package qcerr

import (
	"errors"
	"fmt"
)

// Kind enumerates the validation failures the engine can report.
type Kind int

const (
	SequenceTooShort Kind = iota + 1
	InvalidIonConcentration
	AnchorOutOfRange
	InsufficientFlankingSequence
	TunableRangeEmpty
	InvalidNucleotide
	ExtensionLimitExceeded
	NoMatch
	NoProduct
)

var kindNames = map[Kind]string{
	SequenceTooShort:             "sequence too short",
	InvalidIonConcentration:      "invalid ion concentration",
	AnchorOutOfRange:             "anchor out of range",
	InsufficientFlankingSequence: "insufficient flanking sequence",
	TunableRangeEmpty:            "tunable range empty",
	InvalidNucleotide:            "invalid nucleotide",
	ExtensionLimitExceeded:       "extension limit exceeded",
	NoMatch:                      "no match",
	NoProduct:                    "no product",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ValidationError is the single error type returned by core operations.
type ValidationError struct {
	Kind   Kind
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Detail
}

// Is matches any *ValidationError of the same Kind, so the sentinels below
// work with errors.Is regardless of Detail.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

// New builds a ValidationError with a formatted detail.
func New(k Kind, format string, a ...any) error {
	return &ValidationError{Kind: k, Detail: fmt.Sprintf(format, a...)}
}

// KindOf returns the Kind of err, or 0 if err is not a *ValidationError.
func KindOf(err error) Kind {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Kind
	}
	return 0
}

// Sentinels for errors.Is.
var (
	ErrSequenceTooShort             = &ValidationError{Kind: SequenceTooShort}
	ErrInvalidIonConcentration      = &ValidationError{Kind: InvalidIonConcentration}
	ErrAnchorOutOfRange             = &ValidationError{Kind: AnchorOutOfRange}
	ErrInsufficientFlankingSequence = &ValidationError{Kind: InsufficientFlankingSequence}
	ErrTunableRangeEmpty            = &ValidationError{Kind: TunableRangeEmpty}
	ErrInvalidNucleotide            = &ValidationError{Kind: InvalidNucleotide}
	ErrExtensionLimitExceeded       = &ValidationError{Kind: ExtensionLimitExceeded}
	ErrNoMatch                      = &ValidationError{Kind: NoMatch}
	ErrNoProduct                    = &ValidationError{Kind: NoProduct}
)
