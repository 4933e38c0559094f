package models

import "testing"

func TestParseProjectField(t *testing.T) {
	code, name := ParseProjectField("1024 Mobile Revamp")
	if code == nil || *code != "1024" {
		t.Fatalf("unexpected code: %v", code)
	}
	if name == nil || *name != "Mobile Revamp" {
		t.Fatalf("unexpected name: %v", name)
	}

	code, name = ParseProjectField("")
	if code != nil || name != nil {
		t.Fatalf("expected both nil for blank input, got code=%v name=%v", code, name)
	}

	code, name = ParseProjectField("No Leading Digits")
	if code != nil {
		t.Fatalf("expected nil code, got %v", *code)
	}
	if name == nil || *name != "No Leading Digits" {
		t.Fatalf("unexpected name: %v", name)
	}
}

func TestParseAdvanceDays(t *testing.T) {
	v, ok := ParseAdvanceDays("3")
	if !ok || v != 3 {
		t.Fatalf("unexpected parse: %d ok=%v", v, ok)
	}
	v, ok = ParseAdvanceDays("-1")
	if !ok || v != -1 {
		t.Fatalf("unexpected parse: %d ok=%v", v, ok)
	}
	if _, ok := ParseAdvanceDays(""); ok {
		t.Fatal("blank should not parse")
	}
	if _, ok := ParseAdvanceDays("abc"); ok {
		t.Fatal("non-numeric should not parse")
	}
}

func TestProjectCodeOrNan(t *testing.T) {
	row := TravelRow{}
	if row.ProjectCodeOrNan() != NanProjectCode {
		t.Fatalf("expected nan bucket, got %q", row.ProjectCodeOrNan())
	}
	code := "42"
	row.ProjectCode = &code
	if row.ProjectCodeOrNan() != "42" {
		t.Fatalf("expected 42, got %q", row.ProjectCodeOrNan())
	}
}
