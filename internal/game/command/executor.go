package command

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/fablemud/internal/game/actions"
)

// Executor turns a parsed command into an executed facade call.
type Executor struct {
	facade *actions.Facade
}

// NewExecutor wraps the facade.
func NewExecutor(facade *actions.Facade) *Executor {
	return &Executor{facade: facade}
}

// Execute dispatches the parsed action against the facade for entityID.
//
// Postcondition: always returns a Result; actions without a world effect
// (talk, attack, cast_magic) succeed with a narration stub so the pipeline
// can report confidence honestly.
func (e *Executor) Execute(entityID string, p *Parsed) actions.Result {
	switch p.Action {
	case ActionMove:
		return e.facade.MoveTo(entityID, p.Target)
	case ActionLook:
		return e.facade.LookAround(entityID)
	case ActionTake:
		details := actions.Details{ItemNameOrID: p.Target}
		if p.Modifiers.OnTarget != "" {
			if id, found := e.resolveContainer(entityID, p.Modifiers.OnTarget); found {
				details.ContainerID = id
			}
		}
		return e.facade.Handle(entityID, actions.CmdTake, details)
	case ActionDrop:
		return e.facade.Handle(entityID, actions.CmdDrop, actions.Details{ItemNameOrID: p.Target})
	case ActionUse:
		return e.facade.Handle(entityID, actions.CmdUse, actions.Details{
			ItemNameOrID: p.Target,
			Target:       p.Modifiers.OnTarget,
		})
	case ActionInventory:
		return e.facade.Handle(entityID, actions.CmdInventoryView, actions.Details{})
	case ActionEquip:
		return e.facade.Handle(entityID, actions.CmdEquip, actions.Details{
			ItemNameOrID: p.Target,
			Slot:         p.Modifiers.OnTarget,
		})
	case ActionUnequip:
		return e.facade.Handle(entityID, actions.CmdUnequip, actions.Details{ItemNameOrID: p.Target})
	case ActionSearch:
		return e.facade.SearchHere(entityID)
	case ActionUnlock:
		return e.facade.UnlockTarget(entityID, p.Target)
	case ActionHelp:
		return helpResult()
	case ActionTalk:
		if p.Target == "" {
			return actions.Result{Message: "You cannot talk because nobody was named.", Data: map[string]any{"reason": "missing_parameters"}}
		}
		msg := fmt.Sprintf("You speak with %s.", p.Target)
		if p.Modifiers.AboutTopic != "" {
			msg = fmt.Sprintf("You speak with %s about %s.", p.Target, p.Modifiers.AboutTopic)
		}
		return actions.Result{Success: true, Message: msg, Data: map[string]any{
			"target": p.Target,
			"topic":  p.Modifiers.AboutTopic,
		}}
	case ActionAttack:
		if p.Target == "" {
			return actions.Result{Message: "You cannot attack because no target was named.", Data: map[string]any{"reason": "missing_parameters"}}
		}
		return actions.Result{Success: true, Message: fmt.Sprintf("You square off against %s.", p.Target), Data: map[string]any{
			"target":    p.Target,
			"with_item": p.Modifiers.WithItem,
		}}
	case ActionCastMagic:
		if p.Target == "" {
			return actions.Result{Message: "You cannot cast because no spell was named.", Data: map[string]any{"reason": "missing_parameters"}}
		}
		return actions.Result{Success: true, Message: fmt.Sprintf("You begin weaving %s.", p.Target), Data: map[string]any{
			"spell": p.Target,
		}}
	default:
		return actions.Result{
			Message: "You stand around, unsure what to do.",
			Data:    map[string]any{"reason": "unknown_action", "suggestions": p.Suggestions},
		}
	}
}

// resolveContainer matches a name fragment against the visible containers at
// the entity's location.
func (e *Executor) resolveContainer(entityID, fragment string) (string, bool) {
	player := e.facade.Sessions().Player(entityID)
	lowered := strings.ToLower(fragment)
	for _, d := range e.facade.Containers().VisibleAt(player.CurrentLocation) {
		if strings.Contains(strings.ToLower(d.Name), lowered) || d.ID == fragment {
			return d.ID, true
		}
	}
	return "", false
}

// helpVerbs is the stable display order of the help listing.
var helpVerbs = []string{
	"move <direction>", "look", "take <item> [from <container>]", "drop <item>",
	"use <item>", "equip <item> [slot]", "unequip <item>", "inventory",
	"search", "unlock <container> [with <item>]", "talk to <npc> [about <topic>]",
	"attack <target>", "cast <spell>", "help",
}

func helpResult() actions.Result {
	return actions.Result{
		Success: true,
		Message: "You can: " + strings.Join(helpVerbs, ", ") + ".",
		Data:    map[string]any{"commands": helpVerbs},
	}
}
