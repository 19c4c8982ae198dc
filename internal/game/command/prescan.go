package command

import (
	"regexp"
	"strings"
)

// The "take off X" family must never reach the generic stages, where the
// leading "take" would misclassify it as a TAKE. These literal forms are
// rewritten to UNEQUIP before any other parsing.
var prescanPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^take\s+off\s+(?:my\s+|the\s+)?(.+)$`),
	regexp.MustCompile(`^take\s+(?:my\s+|the\s+)?(.+?)\s+off$`),
	regexp.MustCompile(`^unequip\s+(?:my\s+|the\s+)?(.+)$`),
	regexp.MustCompile(`^remove\s+(?:my\s+|the\s+)?(.+)$`),
}

// prescan rewrites literal unequip phrasings to an UNEQUIP command with
// maximum confidence. Returns nil when no fast-path applies.
func prescan(raw string) *Parsed {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	for _, re := range prescanPatterns {
		if m := re.FindStringSubmatch(lowered); m != nil {
			return &Parsed{
				Action:     ActionUnequip,
				Target:     strings.TrimSpace(m[1]),
				Confidence: ConfidencePrescan,
				Raw:        raw,
			}
		}
	}
	return nil
}
