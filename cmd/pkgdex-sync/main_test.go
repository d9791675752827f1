package main

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "<1s"},
		{42 * time.Second, "42s"},
		{3*time.Minute + 7*time.Second, "3m7s"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
	}
	for _, tc := range tests {
		if got := formatDuration(tc.d); got != tc.want {
			t.Errorf("formatDuration(%s) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestRootCmd_Tree(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{
		{"embeddings"},
		{"index", "init"},
		{"index", "rebuild"},
		{"all"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil {
			t.Fatalf("find %v: %v", path, err)
		}
		if cmd == root {
			t.Errorf("%v resolved to root", path)
		}
	}

	emb, _, _ := root.Find([]string{"embeddings"})
	if emb.Flags().Lookup("force") == nil {
		t.Error("embeddings: missing --force flag")
	}
}

func TestProgress_QuietIsNoop(t *testing.T) {
	p := newProgress("Embedding", true)
	p.update(1, 10)
	p.finish()
	if p.bar != nil {
		t.Error("quiet progress must not create a bar")
	}
}
