package worker

import "testing"

func TestSemaphoreAcquireRelease(t *testing.T) {
	s := NewSemaphore(2)

	<-s.Chan()
	<-s.Chan()

	select {
	case <-s.Chan():
		t.Fatal("expected semaphore to be exhausted after two acquires")
	default:
	}

	s.Release()
	select {
	case <-s.Chan():
	default:
		t.Fatal("expected a permit to be available after Release")
	}
}

func TestNewSemaphoreClampsNonPositiveCount(t *testing.T) {
	s := NewSemaphore(0)
	select {
	case <-s.Chan():
	default:
		t.Fatal("expected at least one permit for count <= 0")
	}
}
