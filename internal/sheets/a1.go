package sheets

import (
	"strings"
)

// A1 builds an A1-notation range on a sheet, quoting the sheet name.
// An empty cells string addresses the whole sheet.
func A1(sheet, cells string) string {
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

// SplitA1 is the inverse of A1. Unquoted sheet names are accepted too.
func SplitA1(rng string) (sheet, cells string) {
	if strings.HasPrefix(rng, "'") {
		// Find the closing quote, skipping doubled quotes.
		i := 1
		var b strings.Builder
		for i < len(rng) {
			if rng[i] == '\'' {
				if i+1 < len(rng) && rng[i+1] == '\'' {
					b.WriteByte('\'')
					i += 2
					continue
				}
				break
			}
			b.WriteByte(rng[i])
			i++
		}
		rest := ""
		if i+1 < len(rng) {
			rest = rng[i+1:]
		}
		return b.String(), strings.TrimPrefix(rest, "!")
	}

	if idx := strings.LastIndex(rng, "!"); idx >= 0 {
		return rng[:idx], rng[idx+1:]
	}
	return rng, ""
}
