package errors

import (
	"fmt"
	"testing"
)

func TestRegisterRejectsDuplicateCodes(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	Register(2, "already taken by ErrMalformedInput")
}

func TestIsMatchesThroughWrapping(t *testing.T) {
	err := Wrap(ErrInsufficientWeight, "40 of required 70")
	err = Wrap(err, "authorize")

	if !ErrInsufficientWeight.Is(err) {
		t.Fatalf("want ErrInsufficientWeight, got %+v", err)
	}
	if ErrUnauthorizedSigner.Is(err) {
		t.Fatal("must not match an unrelated root")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "no error here") != nil {
		t.Fatal("wrapping nil must return nil")
	}
}

func TestWrapfFormats(t *testing.T) {
	err := Wrapf(ErrNotFound, "instance %q", "abc")
	const want = `instance "abc": not found`
	if got := err.Error(); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestNewIsWrap(t *testing.T) {
	err := ErrState.New("no invoker configured")
	if !ErrState.Is(err) {
		t.Fatalf("want ErrState, got %+v", err)
	}
}

func TestRecover(t *testing.T) {
	var err error
	func() {
		defer Recover(&err)
		panic("the sky is falling")
	}()
	if !ErrPanic.Is(err) {
		t.Fatalf("want ErrPanic, got %+v", err)
	}
}

func TestWrapAttachesStackTraceOnce(t *testing.T) {
	err := Wrap(ErrOverflow, "inner")
	st := stackTrace(err)
	if st == nil {
		t.Fatal("no stack trace attached")
	}
	outer := Wrap(err, "outer")
	if fmt.Sprintf("%v", stackTrace(outer)[0]) != fmt.Sprintf("%v", st[0]) {
		t.Fatal("outer wrap must not replace the stack trace")
	}
}
