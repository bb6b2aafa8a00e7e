package result

import (
	"testing"

	"github.com/fixkme/evkit/errs"
)

func TestZeroValueIsEmpty(t *testing.T) {
	var r Result[int]
	if !r.IsEmpty() || r.IsOk() || r.IsError() {
		t.Fatalf("zero value state wrong")
	}
}

func TestOk(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() {
		t.Fatalf("not ok")
	}
	if r.GetResult() != 42 {
		t.Fatalf("got %d", r.GetResult())
	}
	if v := r.PassResult(); v != 42 {
		t.Fatalf("passed %d", v)
	}
	if !r.IsEmpty() {
		t.Fatalf("pass did not clear the result")
	}
}

func TestErr(t *testing.T) {
	r := Err[int](errs.MkGeneralError(1, "bad", "test"))
	if !r.IsError() {
		t.Fatalf("not error")
	}
	if r.GetError().GetMessage() != "bad" {
		t.Fatalf("wrong error")
	}
	e := r.PassError()
	if e == nil || !r.IsEmpty() {
		t.Fatalf("pass error did not clear")
	}
}

func TestPassValueOfErrorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("no panic")
		}
	}()
	r := Err[int](errs.MkGeneralError(1, "bad", "test"))
	r.PassResult()
}
