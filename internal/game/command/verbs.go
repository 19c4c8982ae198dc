package command

import (
	"sort"
	"strings"
)

// verbTable maps first-token synonyms to canonical actions for inputs the
// regex bank could not place.
var verbTable = map[string]Action{
	"go": ActionMove, "walk": ActionMove, "run": ActionMove, "enter": ActionMove,
	"north": ActionMove, "south": ActionMove, "east": ActionMove, "west": ActionMove,
	"look": ActionLook, "examine": ActionLook, "read": ActionLook, "check": ActionLook,
	"take": ActionTake, "get": ActionTake, "grab": ActionTake, "loot": ActionTake,
	"drop": ActionDrop, "toss": ActionDrop, "discard": ActionDrop,
	"use": ActionUse, "drink": ActionUse, "eat": ActionUse, "quaff": ActionUse,
	"talk": ActionTalk, "speak": ActionTalk, "ask": ActionTalk, "greet": ActionTalk,
	"attack": ActionAttack, "fight": ActionAttack, "hit": ActionAttack, "slay": ActionAttack,
	"cast": ActionCastMagic, "invoke": ActionCastMagic, "channel": ActionCastMagic,
	"inventory": ActionInventory, "inv": ActionInventory,
	"help": ActionHelp,
	"search": ActionSearch, "explore": ActionSearch,
	"unlock": ActionUnlock, "open": ActionUnlock, "pick": ActionUnlock,
	"equip": ActionEquip, "wield": ActionEquip, "wear": ActionEquip, "don": ActionEquip,
	"doff": ActionUnequip, "unwield": ActionUnequip,
}

// matchVerb resolves the first token against the synonym table; remaining
// tokens form the target.
func matchVerb(raw string) *Parsed {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	if len(fields) == 0 {
		return nil
	}
	action, ok := verbTable[fields[0]]
	if !ok {
		return nil
	}
	p := &Parsed{
		Action:     action,
		Target:     strings.Join(fields[1:], " "),
		Confidence: ConfidenceVerb,
		Raw:        raw,
	}
	if action == ActionMove && p.Target == "" {
		p.Target = expandDirection(fields[0])
	}
	return p
}

// suggestVerbs returns deduplicated action names whose synonym shares a
// prefix with any input token. This feeds the unknown-command response.
func suggestVerbs(raw string) []string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	seen := make(map[string]bool)
	for _, field := range fields {
		if len(field) < 2 {
			continue
		}
		for verb, action := range verbTable {
			if strings.HasPrefix(verb, field) || strings.HasPrefix(field, verb) {
				seen[string(action)] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
