package domain

import (
	"fmt"
	"strings"
)

// Kind identifies the type of content a task generates.
type Kind string

// Supported generation kinds
const (
	KindBanner Kind = "banner"
	KindSlogan Kind = "slogan"
	KindEmoji  Kind = "emoji"
)

// Kinds returns every supported generation kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindBanner, KindSlogan, KindEmoji}
}

// Valid reports whether k is a supported generation kind.
func (k Kind) Valid() bool {
	switch k {
	case KindBanner, KindSlogan, KindEmoji:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// ParseKind converts a raw string into a Kind. Matching is case-insensitive
// and ignores surrounding whitespace.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, raw)
	}
	return k, nil
}
