package models

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxSymbols caps the number of symbols in one request.
const MaxSymbols = 50

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.:/^-]{1,16}$`)

// ParseSymbols splits a comma-separated list, upper-cases and trims each
// entry, drops empties and duplicates (first occurrence wins) and keeps at
// most max entries. An empty result or a malformed symbol is ErrValidation.
func ParseSymbols(raw string, max int) ([]string, error) {
	if max <= 0 {
		max = MaxSymbols
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, 8)
	for _, part := range strings.Split(raw, ",") {
		sym := strings.ToUpper(strings.TrimSpace(part))
		if sym == "" {
			continue
		}
		if !symbolPattern.MatchString(sym) {
			return nil, fmt.Errorf("%w: invalid symbol %q", ErrValidation, sym)
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
		if len(out) == max {
			break
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: provide ?symbols=MSFT,CRM,JPM", ErrValidation)
	}
	return out, nil
}
