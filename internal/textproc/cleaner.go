// Package textproc normalises extracted text and splits it into
// bounded, overlapping token windows for embedding.
package textproc

import (
	"regexp"
	"strings"
)

// Pre-compiled expressions for the cleaning pass.
var (
	excessBlankLines = regexp.MustCompile(`\n{3,}`)
	horizontalRuns   = regexp.MustCompile(`[ \t]{2,}`)
	bareURLLine      = regexp.MustCompile(`^https?://\S+$`)
)

// boilerplateLines are dropped when a trimmed line matches one of
// them case-insensitively. They are navigation chrome that survives
// HTML extraction.
var boilerplateLines = map[string]struct{}{
	"share":     {},
	"login":     {},
	"sign in":   {},
	"subscribe": {},
}

var specialRunes = strings.NewReplacer(
	"\uFEFF", "", // byte-order mark
	"\u200B", "", // zero-width space
	"\r\n", "\n",
	"\r", "\n",
)

// Clean normalises whitespace and strips boilerplate lines.
// It is deterministic and idempotent: Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	text = specialRunes.Replace(text)
	text = excessBlankLines.ReplaceAllString(text, "\n\n")
	text = horizontalRuns.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if bareURLLine.MatchString(trimmed) {
			continue
		}
		if _, drop := boilerplateLines[strings.ToLower(trimmed)]; drop {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	// Dropping lines can join previously separated blank runs, so
	// collapse once more to keep the pass idempotent.
	text = excessBlankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
