// Package command turns raw player text into structured, executed game
// commands. Input flows through ordered stages: literal fast-paths, an entity
// tagger, a regex bank, a verb synonym table, and finally an LLM tool router
// for anything the deterministic stages cannot place.
package command

// Action is a canonical player intent.
type Action string

// All canonical actions.
const (
	ActionMove      Action = "move"
	ActionLook      Action = "look"
	ActionTake      Action = "take"
	ActionDrop      Action = "drop"
	ActionUse       Action = "use"
	ActionTalk      Action = "talk"
	ActionAttack    Action = "attack"
	ActionCastMagic Action = "cast_magic"
	ActionInventory Action = "inventory"
	ActionHelp      Action = "help"
	ActionSearch    Action = "search"
	ActionUnlock    Action = "unlock"
	ActionEquip     Action = "equip"
	ActionUnequip   Action = "unequip"
	ActionUnknown   Action = "unknown"
)

// Confidence levels assigned by each pipeline stage.
const (
	ConfidencePrescan  = 0.95
	ConfidenceRegex    = 0.8
	ConfidenceVerb     = 0.5
	ConfidenceUnknown  = 0.1
	EntityBoost        = 0.1
	LLMThreshold       = 0.6
	ConfidenceLLMOk    = 0.95
	ConfidenceLLMNoRun = 0.6
)

// Modifiers carries secondary captures from a parsed command.
type Modifiers struct {
	OnTarget   string `json:"on_target,omitempty"`
	AboutTopic string `json:"about_topic,omitempty"`
	WithItem   string `json:"with_item,omitempty"`
}

// Entity is a recognized item, NPC, or location mention in the input.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Parsed is the structured form of one player input line.
type Parsed struct {
	Action      Action    `json:"action"`
	Target      string    `json:"target,omitempty"`
	Modifiers   Modifiers `json:"modifiers"`
	Entities    []Entity  `json:"entities,omitempty"`
	Confidence  float64   `json:"confidence"`
	Raw         string    `json:"raw"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// boost raises confidence by EntityBoost, capped at 1.0.
func (p *Parsed) boost() {
	p.Confidence += EntityBoost
	if p.Confidence > 1.0 {
		p.Confidence = 1.0
	}
}
