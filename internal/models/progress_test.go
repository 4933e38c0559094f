package models

import (
	"testing"
	"time"
)

func TestProgressTaskLifecycleTransitions(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	task := ProgressTask{Status: ProgressUploading}

	task.Start(now)
	if task.Status != ProgressProcessing {
		t.Fatalf("status = %s, want PROCESSING", task.Status)
	}

	task.Advance(now, "normalising workbook", 30)
	if task.CurrentStep != "normalising workbook" || task.Progress != 30 {
		t.Fatalf("unexpected state after Advance: %+v", task)
	}
	if task.Status != ProgressProcessing {
		t.Fatalf("Advance must not change status, got %s", task.Status)
	}

	task.Complete(now)
	if task.Status != ProgressCompleted || task.Progress != 100 {
		t.Fatalf("unexpected state after Complete: %+v", task)
	}
}

func TestProgressTaskTerminalStateIsSticky(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	later := now.Add(time.Minute)

	task := ProgressTask{Status: ProgressUploading}
	task.Fail(now, "workbook is missing a required sheet")
	if !task.IsTerminal() {
		t.Fatal("expected task to be terminal after Fail")
	}

	task.Start(later)
	task.Advance(later, "retrying", 50)
	task.Complete(later)

	if task.Status != ProgressFailed {
		t.Fatalf("a retried job must not un-fail a task already observed as FAILED, got %s", task.Status)
	}
	if task.Progress == 50 || task.Progress == 100 {
		t.Fatalf("terminal task's progress must not move, got %d", task.Progress)
	}
	if task.UpdatedAt != now {
		t.Fatalf("terminal task's UpdatedAt must not move, got %v want %v", task.UpdatedAt, now)
	}
}
