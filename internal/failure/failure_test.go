package failure

import (
	"errors"
	"testing"
	"time"
)

func TestSetRecordsFirstError(t *testing.T) {
	f := New()
	f.Set(errors.New("first"))
	f.Set(errors.New("second"))

	if !f.IsSet() {
		t.Fatal("expected IsSet() == true")
	}
	if f.Err().Error() != "first" {
		t.Errorf("Err() = %v, want first", f.Err())
	}
}

func TestSetNilIsNoop(t *testing.T) {
	f := New()
	f.Set(nil)
	if f.IsSet() {
		t.Error("Set(nil) must not mark the flag")
	}
}

func TestDoneClosesOnSet(t *testing.T) {
	f := New()
	go f.Set(errors.New("boom"))

	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() did not close after Set")
	}
}

func TestUnsetFlagNeverDone(t *testing.T) {
	f := New()
	select {
	case <-f.Done():
		t.Fatal("Done() closed without Set")
	default:
	}
}
