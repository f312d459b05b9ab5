package app

import (
	"testing"
	"time"

	"ssb-go/internal/model"
	"ssb-go/internal/ssb"
	"ssb-go/internal/testutil"
)

func TestNewRunOperation(t *testing.T) {
	clock := testutil.FixedClock()
	op := NewRunOperation("Backup", testutil.NewStubIDGenerator(), clock)

	if op.ID() != "run-1" {
		t.Errorf("ID() = %q, want %q", op.ID(), "run-1")
	}
	if op.run.Operation != "Backup" {
		t.Errorf("Operation = %q, want %q", op.run.Operation, "Backup")
	}
	if !op.run.StartedAt.Equal(clock.Now()) {
		t.Errorf("StartedAt = %v, want %v", op.run.StartedAt, clock.Now())
	}
	if op.run.Status != model.RunStatusRunning {
		t.Errorf("Status = %q, want %q", op.run.Status, model.RunStatusRunning)
	}
	if op.Persisted() {
		t.Error("Persisted() = true for a new operation")
	}
}

func TestRunOperation_finish(t *testing.T) {
	tests := []struct {
		name   string
		fail   bool
		want   string
		copied int
	}{
		{name: "success when not failed", want: model.RunStatusSuccess, copied: 3},
		{name: "error when failed", fail: true, want: model.RunStatusError, copied: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := testutil.FixedClock()
			op := NewRunOperation("Backup", testutil.NewStubIDGenerator(), clock)
			op.Record(&ssb.RunSummary{Games: 2, Copied: tt.copied, Skipped: 4, Failed: 1})
			if tt.fail {
				op.Fail()
			}

			clock.Advance(time.Minute)
			run := op.finish(clock)

			if run.Status != tt.want {
				t.Errorf("Status = %q, want %q", run.Status, tt.want)
			}
			if run.FinishedAt == nil || !run.FinishedAt.Equal(clock.Now()) {
				t.Errorf("FinishedAt = %v, want %v", run.FinishedAt, clock.Now())
			}
			if run.Games != 2 || run.Copied != tt.copied || run.Skipped != 4 || run.Failed != 1 {
				t.Errorf("totals = %+v", run)
			}
		})
	}
}

func TestRunOperation_RecordNil(t *testing.T) {
	op := NewRunOperation("Backup", testutil.NewStubIDGenerator(), testutil.FixedClock())
	op.Record(nil)
	if op.run.Copied != 0 {
		t.Errorf("Copied = %d, want 0", op.run.Copied)
	}
}
