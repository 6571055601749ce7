package qcerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("primer p1: %w", New(AnchorOutOfRange, "anchor %d outside (%d,%d)", 40, 10, 30))
	if !errors.Is(err, ErrAnchorOutOfRange) {
		t.Fatalf("errors.Is lost the kind: %v", err)
	}
	if errors.Is(err, ErrNoMatch) {
		t.Fatalf("matched the wrong kind")
	}
	if KindOf(err) != AnchorOutOfRange {
		t.Fatalf("KindOf = %v", KindOf(err))
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Fatalf("plain errors have no kind")
	}
}

func TestErrorText(t *testing.T) {
	if got := New(SequenceTooShort, "%d nt", 1).Error(); got != "sequence too short: 1 nt" {
		t.Fatalf("got %q", got)
	}
	if got := ErrNoProduct.Error(); got != "no product" {
		t.Fatalf("got %q", got)
	}
	if got := Kind(99).String(); got != "kind(99)" {
		t.Fatalf("got %q", got)
	}
}
