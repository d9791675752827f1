package mode

import "testing"

func TestIsValid(t *testing.T) {
	valid := []Mode{Keyword, Semantic, Hybrid, ExternalIndex}
	for _, m := range valid {
		if !m.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", m)
		}
	}

	invalid := []Mode{"", "full-text", "vector", "HYBRID", "geo"}
	for _, m := range invalid {
		if m.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", m)
		}
	}
}

func TestRequiresQuery(t *testing.T) {
	tests := []struct {
		m    Mode
		want bool
	}{
		{Keyword, false},
		{ExternalIndex, false},
		{Semantic, true},
		{Hybrid, true},
	}
	for _, tc := range tests {
		if got := tc.m.RequiresQuery(); got != tc.want {
			t.Errorf("%q.RequiresQuery() = %v, want %v", tc.m, got, tc.want)
		}
	}
}

func TestConstants(t *testing.T) {
	if ExternalIndex != "external-index" {
		t.Errorf("ExternalIndex = %q", ExternalIndex)
	}
	if Hybrid != "hybrid" {
		t.Errorf("Hybrid = %q", Hybrid)
	}
}
