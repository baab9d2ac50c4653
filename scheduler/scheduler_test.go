package scheduler

import "testing"

func TestGetNextEventNotDueYieldsFalse(t *testing.T) {
	s := New()
	s.Schedule(Vblank, 100)
	if _, _, ok := s.GetNextEvent(); ok {
		t.Fatalf("event should not be due yet")
	}
}

func TestGetNextEventFiresAfterTick(t *testing.T) {
	s := New()
	s.Schedule(Vblank, 100)
	s.Tick(100)
	kind, late, ok := s.GetNextEvent()
	if !ok {
		t.Fatalf("event should be due")
	}
	if kind != Vblank {
		t.Fatalf("kind = %v, want Vblank", kind)
	}
	if late != 0 {
		t.Fatalf("late = %d, want 0", late)
	}
}

func TestGetNextEventReportsHowLate(t *testing.T) {
	s := New()
	s.Schedule(HblankEnd, 50)
	s.Tick(70)
	_, late, ok := s.GetNextEvent()
	if !ok {
		t.Fatalf("event should be due")
	}
	if late != 20 {
		t.Fatalf("late = %d, want 20", late)
	}
}

func TestEqualDeadlineFiresInInsertionOrder(t *testing.T) {
	s := New()
	s.Schedule(Timer0, 10)
	s.Schedule(Timer1, 10)
	s.Tick(10)

	first, _, _ := s.GetNextEvent()
	second, _, _ := s.GetNextEvent()
	if first != Timer0 || second != Timer1 {
		t.Fatalf("got order %v, %v; want Timer0, Timer1", first, second)
	}
}

func TestRemoveCancelsPendingEventsOfKind(t *testing.T) {
	s := New()
	s.Schedule(CDExecuteCommand, 5)
	s.Schedule(CDExecuteCommand, 15)
	s.Schedule(Vblank, 5)

	removed := s.Remove(CDExecuteCommand)
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}

	s.Tick(20)
	kind, _, ok := s.GetNextEvent()
	if !ok || kind != Vblank {
		t.Fatalf("expected only Vblank left, got kind=%v ok=%v", kind, ok)
	}
	if _, _, ok := s.GetNextEvent(); ok {
		t.Fatalf("no further events expected")
	}
}

func TestPendingReportsQueuedKind(t *testing.T) {
	s := New()
	if s.Pending(Vblank) {
		t.Fatalf("nothing scheduled yet")
	}
	s.Schedule(Vblank, 10)
	if !s.Pending(Vblank) {
		t.Fatalf("Vblank should be pending")
	}
}

func TestDmaFinishedAndTimerHelpers(t *testing.T) {
	if DmaFinished(2) != DmaFinished2 {
		t.Fatalf("DmaFinished(2) should equal DmaFinished2")
	}
	if Timer(1) != Timer1 {
		t.Fatalf("Timer(1) should equal Timer1")
	}
}

func TestScheduleAtUsesAbsoluteDeadline(t *testing.T) {
	s := New()
	s.Tick(1000)
	s.ScheduleAt(TickSpu, 1005)
	if _, _, ok := s.GetNextEvent(); ok {
		t.Fatalf("event at 1005 should not fire at now=1000")
	}
	s.Tick(5)
	if _, _, ok := s.GetNextEvent(); !ok {
		t.Fatalf("event at 1005 should fire at now=1005")
	}
}
