package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brk3/habitstate/internal/kv"
)

func TestDaily_ScheduleCancel(t *testing.T) {
	ctx := context.Background()
	d := NewDaily(kv.NewMemory(), true)

	h1, err := d.Schedule(ctx, "Read", 8, 30)
	if err != nil || h1 == "" {
		t.Fatalf("Schedule = (%q, %v)", h1, err)
	}
	h2, err := d.Schedule(ctx, "Walk", 7, 0)
	if err != nil || h2 == "" || h2 == h1 {
		t.Fatalf("Schedule = (%q, %v)", h2, err)
	}

	entries, err := d.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 || entries[0].HabitName != "Walk" || entries[1].HabitName != "Read" {
		t.Fatalf("entries not ordered by time: %+v", entries)
	}

	if err := d.Cancel(ctx, h2); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if err := d.Cancel(ctx, "unknown"); err != nil {
		t.Fatalf("Cancel of unknown handle failed: %v", err)
	}
	entries, _ = d.Entries(ctx)
	if len(entries) != 1 || entries[0].Handle != h1 {
		t.Fatalf("got %+v after cancel", entries)
	}
}

func TestDaily_Disabled(t *testing.T) {
	d := NewDaily(kv.NewMemory(), false)
	h, err := d.Schedule(context.Background(), "Read", 8, 30)
	if err != nil || h != "" {
		t.Fatalf("disabled Schedule = (%q, %v) want (\"\", nil)", h, err)
	}
}

func TestDaily_OutOfRange(t *testing.T) {
	d := NewDaily(kv.NewMemory(), true)
	if _, err := d.Schedule(context.Background(), "Read", 24, 0); err == nil {
		t.Fatal("expected error for hour 24")
	}
}

func TestDaily_Due(t *testing.T) {
	ctx := context.Background()
	d := NewDaily(kv.NewMemory(), true)
	_, _ = d.Schedule(ctx, "Late", 23, 50)
	_, _ = d.Schedule(ctx, "Early", 0, 5)
	_, _ = d.Schedule(ctx, "Noon", 12, 0)

	now := time.Date(2025, time.June, 10, 0, 10, 0, 0, time.UTC)
	due, err := d.Due(ctx, now.Add(-30*time.Minute), now)
	if err != nil {
		t.Fatalf("Due failed: %v", err)
	}
	if len(due) != 2 || due[0].HabitName != "Early" || due[1].HabitName != "Late" {
		t.Fatalf("got %+v want Early and Late across midnight", due)
	}

	// window end is inclusive, start exclusive
	at := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	due, _ = d.Due(ctx, at.Add(-time.Minute), at)
	if len(due) != 1 || due[0].HabitName != "Noon" {
		t.Fatalf("got %+v want Noon", due)
	}
	due, _ = d.Due(ctx, at, at.Add(time.Minute))
	if len(due) != 0 {
		t.Fatalf("got %+v want nothing", due)
	}
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	d := NewDaily(kv.NewMemory(), true)
	_, _ = d.Schedule(ctx, "Read", 8, 0)
	n := &fakeNotifier{}

	now := time.Date(2025, time.June, 10, 8, 5, 0, 0, time.UTC)
	sent, err := Dispatch(ctx, d, n, now, 15*time.Minute)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if sent != 1 || len(n.calls) != 1 || n.calls[0][0] != "Read" {
		t.Fatalf("sent=%d calls=%v", sent, n.calls)
	}

	// the mark prevents a second send for the same occurrence
	sent, err = Dispatch(ctx, d, n, now.Add(5*time.Minute), 15*time.Minute)
	if err != nil || sent != 0 {
		t.Fatalf("second Dispatch = (%d, %v) want (0, nil)", sent, err)
	}

	last, ok, err := d.LastRun(ctx)
	if err != nil || !ok || !last.Equal(now.Add(5*time.Minute)) {
		t.Fatalf("LastRun = (%v, %v, %v)", last, ok, err)
	}
}

func TestDispatch_NotifyFailureKeepsMark(t *testing.T) {
	ctx := context.Background()
	d := NewDaily(kv.NewMemory(), true)
	_, _ = d.Schedule(ctx, "Read", 8, 0)
	n := &fakeNotifier{err: errors.New("smtp down")}

	now := time.Date(2025, time.June, 10, 8, 5, 0, 0, time.UTC)
	if _, err := Dispatch(ctx, d, n, now, 15*time.Minute); err == nil {
		t.Fatal("expected notify error")
	}
	if _, ok, _ := d.LastRun(ctx); ok {
		t.Fatal("mark advanced despite failed delivery")
	}
}
