package command

import (
	"regexp"
	"strings"
)

// pattern is one labeled entry in the regex bank. Capture names map onto the
// parsed command: "target", "on_target", "about_topic", "with_item".
type pattern struct {
	label  string
	action Action
	re     *regexp.Regexp
}

// patternBank is the ordered regex bank. The first successful match wins, so
// more specific phrasings come before looser ones within a label.
var patternBank = []pattern{
	{"movement", ActionMove, regexp.MustCompile(`^(?:go|walk|move|head|travel)(?:\s+to(?:wards?)?)?\s+(?:the\s+)?(?P<target>.+)$`)},
	{"movement", ActionMove, regexp.MustCompile(`^(?P<target>north|south|east|west|up|down|n|s|e|w)$`)},
	{"look", ActionLook, regexp.MustCompile(`^(?:look|examine|inspect|l)(?:\s+(?:at\s+)?(?:the\s+)?(?P<target>.+))?$`)},
	{"take", ActionTake, regexp.MustCompile(`^(?:take|get|grab|pick\s+up)\s+(?:the\s+)?(?P<target>.+?)(?:\s+from\s+(?:the\s+)?(?P<on_target>.+))?$`)},
	{"drop", ActionDrop, regexp.MustCompile(`^(?:drop|discard|put\s+down)\s+(?:the\s+)?(?P<target>.+)$`)},
	{"use", ActionUse, regexp.MustCompile(`^(?:use|drink|eat|consume|apply)\s+(?:the\s+)?(?P<target>.+?)(?:\s+on\s+(?:the\s+)?(?P<on_target>.+))?$`)},
	{"talk", ActionTalk, regexp.MustCompile(`^(?:talk|speak|chat)(?:\s+(?:to|with))?\s+(?:the\s+)?(?P<target>.+?)(?:\s+about\s+(?P<about_topic>.+))?$`)},
	{"attack", ActionAttack, regexp.MustCompile(`^(?:attack|fight|hit|strike|kill)\s+(?:the\s+)?(?P<target>.+?)(?:\s+with\s+(?:my\s+|the\s+)?(?P<with_item>.+))?$`)},
	{"inventory", ActionInventory, regexp.MustCompile(`^(?:inventory|inv|i|items|backpack)$`)},
	{"help", ActionHelp, regexp.MustCompile(`^(?:help|commands|\?)$`)},
	{"search", ActionSearch, regexp.MustCompile(`^(?:search|explore|scout)(?:\s+(?:the\s+)?(?P<target>.+))?$`)},
	{"unlock", ActionUnlock, regexp.MustCompile(`^(?:unlock|open)\s+(?:the\s+)?(?P<target>.+?)(?:\s+with\s+(?:my\s+|the\s+)?(?P<with_item>.+))?$`)},
	{"unequip", ActionUnequip, regexp.MustCompile(`^(?:doff|unwield)\s+(?:my\s+|the\s+)?(?P<target>.+)$`)},
}

// matchPatterns runs the input through the regex bank and returns the first
// match, or nil.
func matchPatterns(raw string) *Parsed {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	for _, pat := range patternBank {
		m := pat.re.FindStringSubmatch(lowered)
		if m == nil {
			continue
		}
		p := &Parsed{
			Action:     pat.action,
			Confidence: ConfidenceRegex,
			Raw:        raw,
		}
		for i, name := range pat.re.SubexpNames() {
			if i == 0 || i >= len(m) {
				continue
			}
			value := strings.TrimSpace(m[i])
			switch name {
			case "target":
				p.Target = value
			case "on_target":
				p.Modifiers.OnTarget = value
			case "about_topic":
				p.Modifiers.AboutTopic = value
			case "with_item":
				p.Modifiers.WithItem = value
			}
		}
		if pat.label == "movement" {
			p.Target = expandDirection(p.Target)
		}
		return p
	}
	return nil
}

// directionAliases expands single-letter movement shorthand.
var directionAliases = map[string]string{
	"n": "north", "s": "south", "e": "east", "w": "west",
}

func expandDirection(target string) string {
	if full, ok := directionAliases[target]; ok {
		return full
	}
	return target
}
