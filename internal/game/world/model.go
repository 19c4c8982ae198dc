// Package world provides the location model: named places with a type tag
// (village, ruin, cave, shop), exits, and magical affinities that modulate
// spell instantiation.
package world

import "fmt"

// LocationType tags a location with its broad kind, used by the container
// seeding fixtures and the entity tagger.
type LocationType string

// Recognized location types. Unknown tags are preserved as-is.
const (
	TypeVillage LocationType = "village"
	TypeRuin    LocationType = "ruin"
	TypeCave    LocationType = "cave"
	TypeShop    LocationType = "shop"
	TypeForest  LocationType = "forest"
	TypeGeneric LocationType = "generic"
)

// Exit is a passage from one location to another.
type Exit struct {
	// Direction is the compass direction or named exit (e.g., "stairs").
	Direction string
	// Target is the ID of the destination location.
	Target string
	// Hidden indicates the exit is not visible by default.
	Hidden bool
}

// Location represents one place in the game world.
type Location struct {
	// ID uniquely identifies this location.
	ID string
	// Name is the short display name.
	Name string
	// Description is the multi-line description shown to players.
	Description string
	// Type is the broad location kind.
	Type LocationType
	// Exits lists all passages leading out.
	Exits []Exit
	// MagicalAffinities maps element names to affinity strength (0..1).
	// Elements with affinity >= 0.5 are folded into spells cast here.
	MagicalAffinities map[string]float64
	// Properties holds free-form environment tags.
	Properties map[string]string
}

// Validate checks location invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (l *Location) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("location ID must not be empty")
	}
	if l.Name == "" {
		return fmt.Errorf("location %q: name must not be empty", l.ID)
	}
	for _, e := range l.Exits {
		if e.Target == "" {
			return fmt.Errorf("location %q: exit %q has empty target", l.ID, e.Direction)
		}
	}
	for elem, v := range l.MagicalAffinities {
		if v < 0 || v > 1 {
			return fmt.Errorf("location %q: affinity %q must be in [0,1], got %g", l.ID, elem, v)
		}
	}
	return nil
}

// DominantElements returns the elements whose affinity meets the threshold,
// in no particular order.
func (l *Location) DominantElements(threshold float64) []string {
	var out []string
	for elem, v := range l.MagicalAffinities {
		if v >= threshold {
			out = append(out, elem)
		}
	}
	return out
}
