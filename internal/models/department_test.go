package models

import "testing"

func TestParseDepartmentPath(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want DepartmentPath
	}{
		{"three tokens slash", "Engineering/Platform/Storage", DepartmentPath{"Engineering", "Platform", "Storage"}},
		{"dash delimiter", "Sales-APAC-Japan", DepartmentPath{"Sales", "APAC", "Japan"}},
		{"arrow delimiter with spaces", "Ops > Logistics > APAC", DepartmentPath{"Ops", "Logistics", "APAC"}},
		{"clamps to three", "A/B/C/D/E", DepartmentPath{"A", "B", "C"}},
		{"blank falls back to unknown", "   ", DepartmentPath{UnknownDepartment}},
		{"empty tokens dropped", "Finance//Treasury", DepartmentPath{"Finance", "Treasury"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseDepartmentPath(tc.raw)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestDepartmentPathAtLevel(t *testing.T) {
	p := ParseDepartmentPath("Engineering/Platform/Storage")
	if p.AtLevel(1) != "Engineering" {
		t.Errorf("level1 = %q", p.AtLevel(1))
	}
	if p.AtLevel(2) != "Engineering/Platform" {
		t.Errorf("level2 = %q", p.AtLevel(2))
	}
	if p.AtLevel(3) != "Engineering/Platform/Storage" {
		t.Errorf("level3 = %q", p.AtLevel(3))
	}

	short := ParseDepartmentPath("Engineering")
	if short.AtLevel(2) != "" {
		t.Errorf("expected empty level2 for short path, got %q", short.AtLevel(2))
	}
}

func TestDepartmentPathHasPrefix(t *testing.T) {
	p := ParseDepartmentPath("Engineering/Platform/Storage")
	if !p.HasPrefix(DepartmentPath{"Engineering", "Platform"}) {
		t.Error("expected prefix match")
	}
	if p.HasPrefix(DepartmentPath{"Engineering", "Data"}) {
		t.Error("expected prefix mismatch")
	}
	if p.HasPrefix(DepartmentPath{"Engineering", "Platform", "Storage", "Extra"}) {
		t.Error("prefix longer than path must not match")
	}
}

func TestJoinAndSplitDepartmentPathRoundtrip(t *testing.T) {
	p := DepartmentPath{"Engineering", "Platform", "Storage"}
	joined := p.Join()
	if joined != "Engineering/Platform/Storage" {
		t.Fatalf("unexpected join: %q", joined)
	}
	roundtrip := SplitDepartmentPath(joined)
	if roundtrip.Join() != joined {
		t.Fatalf("roundtrip mismatch: %q vs %q", roundtrip.Join(), joined)
	}
}

func TestSplitDepartmentPathEmpty(t *testing.T) {
	got := SplitDepartmentPath("")
	if len(got) != 1 || got[0] != UnknownDepartment {
		t.Fatalf("expected unknown bucket, got %v", got)
	}
}
