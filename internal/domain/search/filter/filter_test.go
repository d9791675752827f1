package filter

import (
	"strings"
	"testing"
)

func TestNew_Normalizes(t *testing.T) {
	c, err := New(" python ", " MIT ", " Web-Frameworks ", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Language() != "PYTHON" {
		t.Errorf("language = %q", c.Language())
	}
	if c.License() != "MIT" {
		t.Errorf("license = %q", c.License())
	}
	if c.Category() != "web-frameworks" {
		t.Errorf("category = %q", c.Category())
	}
	if c.MinStars() != 10 {
		t.Errorf("minStars = %d", c.MinStars())
	}
}

func TestNew_LanguageAllMeansNoFilter(t *testing.T) {
	c, err := New("all", "", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.HasLanguage() {
		t.Error("expected no language filter")
	}
	if !c.IsEmpty() {
		t.Error("expected empty criteria")
	}
}

func TestNew_NegativeStars(t *testing.T) {
	_, err := New("", "", "", -1)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "minStars") {
		t.Errorf("error = %q", err)
	}
}

func TestConditions_Order(t *testing.T) {
	c, _ := New("go", "MIT", "cli", 5)
	conds := c.Conditions()
	if len(conds) != 4 {
		t.Fatalf("conditions = %d, want 4", len(conds))
	}
	wantKeys := []string{FieldLanguage, FieldLicense, FieldCategory, FieldStars}
	for i, k := range wantKeys {
		if conds[i].Key() != k {
			t.Errorf("cond[%d].Key() = %q, want %q", i, conds[i].Key(), k)
		}
	}
	if !conds[3].IsRange() || *conds[3].Min() != 5 {
		t.Errorf("stars condition = %+v", conds[3])
	}
	if !conds[0].IsMatch() || conds[0].Match() != "GO" {
		t.Errorf("language condition = %+v", conds[0])
	}
}

func TestConditions_Empty(t *testing.T) {
	if conds := (Criteria{}).Conditions(); len(conds) != 0 {
		t.Errorf("expected no conditions, got %d", len(conds))
	}
}

func TestNewMatch_Validation(t *testing.T) {
	if _, err := NewMatch("", "x"); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewMatch("language", ""); err == nil {
		t.Error("expected error for empty value")
	}
	c, err := NewMatch("language", "GO")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.IsRange() {
		t.Error("match condition reported as range")
	}
}

func TestNewAtLeast(t *testing.T) {
	if _, err := NewAtLeast("", 1); err == nil {
		t.Error("expected error for empty key")
	}
	c, err := NewAtLeast("stars", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsRange() || *c.Min() != 0 {
		t.Errorf("condition = %+v", c)
	}
}
