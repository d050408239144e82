package cache

import (
	"strings"

	"github.com/gobwas/glob"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "_"

// Namespace groups every cache key that belongs to one logical family, so
// the whole family can be dropped with a single pattern.
type Namespace string

// NewNamespace normalises name into a snake_case namespace.
func NewNamespace(name string) Namespace {
	return Namespace(toSnake(name))
}

// Key builds a deterministic key inside the namespace.
func (n Namespace) Key(parts ...string) string {
	if len(parts) == 0 {
		return string(n)
	}
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, string(n))
	for _, p := range parts {
		if s := toSnake(p); s != "" {
			segments = append(segments, s)
		}
	}
	return strings.Join(segments, KeySeparator)
}

// Pattern returns the glob that matches every key built by Key.
func (n Namespace) Pattern() string {
	return string(n) + KeySeparator + "*"
}

// Matcher reports whether a key matches a compiled pattern.
type Matcher interface {
	Match(key string) bool
}

// CompilePattern compiles a Redis-style glob (`*`, `?`, `[...]`, `\` escapes)
// for adapters that have to match keys in process.
func CompilePattern(pattern string) (Matcher, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return g, nil
}
