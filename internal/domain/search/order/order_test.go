package order

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Key
		wantErr bool
	}{
		{"", Relevance, false},
		{"relevance", Relevance, false},
		{"stars", Stars, false},
		{"downloads", Downloads, false},
		{"recent", Recent, false},
		{"name", Name, false},
		{"popularity", Popularity, false},
		{"STARS", "", true},
		{"random", "", true},
	}
	for _, tc := range tests {
		got, err := Parse(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("Parse(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAscending(t *testing.T) {
	if !Name.Ascending() {
		t.Error("name should sort ascending")
	}
	for _, k := range []Key{Stars, Downloads, Recent, Popularity} {
		if k.Ascending() {
			t.Errorf("%q should sort descending", k)
		}
	}
}
