package order

import "fmt"

// Key is a result sort key accepted by the keyword and full-text routes.
type Key string

// Supported sort keys.
const (
	Relevance  Key = "relevance"
	Stars      Key = "stars"
	Downloads  Key = "downloads"
	Recent     Key = "recent"
	Name       Key = "name"
	Popularity Key = "popularity"
)

// Parse maps user input to a Key. Empty input means Relevance.
func Parse(s string) (Key, error) {
	if s == "" {
		return Relevance, nil
	}
	k := Key(s)
	switch k {
	case Relevance, Stars, Downloads, Recent, Name, Popularity:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Ascending reports whether the key sorts smallest-first.
// Only name sorts alphabetically; every numeric signal sorts largest-first.
func (k Key) Ascending() bool {
	return k == Name
}
