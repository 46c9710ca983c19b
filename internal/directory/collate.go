package directory

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CompareFunc orders two sort keys, returning <0, 0 or >0.
type CompareFunc func(a, b string) int

// Collation names accepted by NewCompareFunc.
const (
	CollationOrdinal = "ordinal"
	CollationLocale  = "locale"
)

// OrdinalCompare lower-cases both keys and compares them byte-wise.
func OrdinalCompare(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// LocaleCompare returns a case-insensitive comparison following the
// collation rules of tag.
func LocaleCompare(tag language.Tag) CompareFunc {
	var mu sync.Mutex
	c := collate.New(tag, collate.IgnoreCase)
	return func(a, b string) int {
		mu.Lock()
		defer mu.Unlock()
		return c.CompareString(a, b)
	}
}

// NewCompareFunc resolves a collation name and BCP 47 locale into a CompareFunc.
// An empty collation means ordinal.
func NewCompareFunc(collation, locale string) (CompareFunc, error) {
	switch collation {
	case "", CollationOrdinal:
		return OrdinalCompare, nil
	case CollationLocale:
		if locale == "" {
			return LocaleCompare(language.Und), nil
		}
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
		}
		return LocaleCompare(tag), nil
	default:
		return nil, fmt.Errorf("unknown collation %q", collation)
	}
}
