package anim

import (
	"testing"
	"time"
)

func TestStageWaiterTimerElapses(t *testing.T) {
	w := NewStageWaiter(time.Millisecond, 1.0)
	if !w.Wait(nil) {
		t.Error("timer wait reported cancellation")
	}
}

func TestStageWaiterSpeedScalesDelay(t *testing.T) {
	w := NewStageWaiter(200*time.Millisecond, 100)
	start := time.Now()
	if !w.Wait(nil) {
		t.Fatal("wait cancelled")
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("speed 100 over 200ms base took %v, want about 2ms", elapsed)
	}
}

func TestStageWaiterStopWakesTimerWait(t *testing.T) {
	w := NewStageWaiter(time.Hour, 1.0)
	stop := make(chan struct{})
	go func() {
		time.Sleep(5 * time.Millisecond)
		close(stop)
	}()

	start := time.Now()
	if w.Wait(stop) {
		t.Error("stopped wait reported normal elapse")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("stop took %v to wake the wait", elapsed)
	}
}

func TestStageWaiterManualAdvance(t *testing.T) {
	w := NewStageWaiter(time.Hour, 0) // speed 0 selects manual pacing

	result := make(chan bool)
	go func() { result <- w.Wait(nil) }()

	// The wait must be pending until a signal arrives.
	select {
	case <-result:
		t.Fatal("manual wait completed without a signal")
	case <-time.After(20 * time.Millisecond):
	}

	w.Advance()
	select {
	case ok := <-result:
		if !ok {
			t.Error("advanced wait reported cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Advance did not release the pending wait")
	}
}

func TestStageWaiterSignalWithNoPendingWaitIsNoop(t *testing.T) {
	w := NewStageWaiter(time.Hour, 0)

	// No wait pending: the signal must be dropped, not buffered.
	w.Advance()
	time.Sleep(10 * time.Millisecond)

	result := make(chan bool)
	go func() { result <- w.Wait(nil) }()

	select {
	case <-result:
		t.Fatal("stale signal released a later wait")
	case <-time.After(30 * time.Millisecond):
	}

	w.Advance()
	select {
	case <-result:
	case <-time.After(time.Second):
		t.Fatal("fresh signal did not release the wait")
	}
}

func TestStageWaiterRapidSignalsReleaseOneWait(t *testing.T) {
	w := NewStageWaiter(time.Hour, 0)

	result := make(chan bool)
	go func() { result <- w.Wait(nil) }()
	time.Sleep(10 * time.Millisecond) // let the wait become pending

	w.Advance()
	w.Advance() // no pending wait by now; must be dropped

	select {
	case <-result:
	case <-time.After(time.Second):
		t.Fatal("signal did not release the pending wait")
	}

	// A later wait must still require its own signal.
	time.Sleep(10 * time.Millisecond)
	go func() { result <- w.Wait(nil) }()
	select {
	case <-result:
		t.Fatal("second wait released by a coalesced earlier signal")
	case <-time.After(30 * time.Millisecond):
	}
	w.Advance()
	<-result
}

func TestStageWaiterSetManualOverridesSpeed(t *testing.T) {
	w := NewStageWaiter(time.Millisecond, 5.0)
	w.SetManual(true)

	result := make(chan bool)
	go func() { result <- w.Wait(nil) }()

	select {
	case <-result:
		t.Fatal("manual-forced wait completed on the timer")
	case <-time.After(20 * time.Millisecond):
	}
	w.Advance()
	<-result

	w.SetManual(false)
	if !w.Wait(nil) {
		t.Error("timer wait after releasing manual mode failed")
	}
}

func TestStageWaiterStopWakesManualWait(t *testing.T) {
	w := NewStageWaiter(time.Hour, 0)
	stop := make(chan struct{})

	result := make(chan bool)
	go func() { result <- w.Wait(stop) }()
	time.Sleep(5 * time.Millisecond)
	close(stop)

	select {
	case ok := <-result:
		if ok {
			t.Error("stopped manual wait reported normal elapse")
		}
	case <-time.After(time.Second):
		t.Fatal("stop did not wake the manual wait")
	}
}
