package actions

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/fablemud/internal/events"
)

// MoveTo moves the player through an exit named by direction or target
// location, emitting location_change on success.
func (f *Facade) MoveTo(entityID, target string) Result {
	player := f.sessions.Player(entityID)
	loc, found := f.worlds.Location(player.CurrentLocation)
	if !found {
		return fail("You cannot move because your location is unknown.", ReasonNotFound)
	}

	needle := strings.ToLower(strings.TrimSpace(target))
	for _, exit := range loc.Exits {
		if exit.Hidden {
			continue
		}
		dest, destFound := f.worlds.Location(exit.Target)
		if !destFound {
			continue
		}
		if strings.ToLower(exit.Direction) == needle ||
			strings.ToLower(dest.Name) == needle ||
			exit.Target == needle {
			old, err := f.sessions.Move(entityID, exit.Target)
			if err != nil {
				return fail("You cannot move right now.", ReasonValidation)
			}
			f.bus.Emit(events.LocationChange, "facade", map[string]any{
				"entity_id": entityID,
				"from":      old,
				"to":        exit.Target,
			})
			return ok(fmt.Sprintf("You go %s to %s.", exit.Direction, dest.Name), map[string]any{
				"location_id": exit.Target,
			})
		}
	}
	return fail(fmt.Sprintf("You cannot go %s because there is no such way from here.", target), ReasonNotFound)
}

// LookAround describes the current location, its visible containers, and
// anything lying on the ground.
func (f *Facade) LookAround(entityID string) Result {
	cat := f.Catalog()
	player := f.sessions.Player(entityID)
	loc, found := f.worlds.Location(player.CurrentLocation)
	if !found {
		return fail("You cannot look around because your location is unknown.", ReasonNotFound)
	}

	var sb strings.Builder
	sb.WriteString(loc.Name)
	sb.WriteString(". ")
	sb.WriteString(loc.Description)

	containers := make([]map[string]any, 0)
	for _, d := range f.containers.VisibleAt(loc.ID) {
		containers = append(containers, map[string]any{
			"container_id": d.ID,
			"name":         d.Name,
			"type":         string(d.Type),
			"locked":       d.IsLocked,
		})
	}

	ground := map[string]int{}
	if f.containers.HasGround(loc.ID) {
		g := f.containers.Ground(loc.ID)
		if inv, ok := f.containers.Holdings(g.ID); ok {
			ground = inv.Summary()
		}
		var names []string
		for id, qty := range ground {
			if def, ok := cat.ByID(id); ok {
				names = append(names, displayName(def, qty))
			}
		}
		if len(names) > 0 {
			sb.WriteString(" On the ground: ")
			sb.WriteString(strings.Join(names, ", "))
			sb.WriteString(".")
		}
	}

	return ok(sb.String(), map[string]any{
		"location_id": loc.ID,
		"containers":  containers,
		"ground":      ground,
	})
}

// SearchHere searches the current location using the player's search skill.
func (f *Facade) SearchHere(entityID string) Result {
	player := f.sessions.Player(entityID)
	result := f.containers.SearchLocation(player.CurrentLocation, player.Stat("search_skill"))

	discovered := make([]string, 0, len(result.Discovered))
	for _, d := range result.Discovered {
		discovered = append(discovered, d.Name)
	}
	visible := make([]string, 0, len(result.Visible))
	for _, d := range result.Visible {
		visible = append(visible, d.Name)
	}

	msg := "You search the area and find nothing new."
	if len(discovered) > 0 {
		msg = fmt.Sprintf("You search the area and discover %s.", strings.Join(discovered, ", "))
	}
	return ok(msg, map[string]any{
		"discovered":          discovered,
		"visible":             visible,
		"special_discoveries": result.SpecialDiscoveries,
	})
}

// UnlockTarget unlocks a container at the current location named by id or by
// a name fragment.
func (f *Facade) UnlockTarget(entityID, target string) Result {
	cat := f.Catalog()
	player := f.sessions.Player(entityID)

	d, found := f.containers.Get(player.CurrentLocation, target)
	if !found {
		needle := strings.ToLower(strings.TrimSpace(target))
		for _, c := range f.containers.VisibleAt(player.CurrentLocation) {
			if strings.Contains(strings.ToLower(c.Name), needle) {
				d = c
				found = true
				break
			}
		}
	}
	if !found {
		return fail(fmt.Sprintf("You cannot unlock %s because you do not see it here.", target), ReasonNotFound)
	}

	if !d.IsLocked {
		return ok(fmt.Sprintf("%s is already unlocked.", d.Name), map[string]any{
			"container_id": d.ID,
		})
	}

	method, err := f.containers.Unlock(d, player.Inventory, "auto", cat)
	if err != nil {
		return f.lockedResult(d, player)
	}
	return ok(fmt.Sprintf("You unlock %s.", d.Name), map[string]any{
		"container_id": d.ID,
		"method":       method,
	})
}
