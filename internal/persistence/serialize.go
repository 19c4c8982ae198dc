package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cory-johannsen/fablemud/internal/game/container"
	"github.com/cory-johannsen/fablemud/internal/game/session"
)

// Serialization format identity.
const (
	FormatVersion  = "1.0.0"
	SerializerName = "fablemud"
)

// FileMetadata is the outer envelope header of a save file.
type FileMetadata struct {
	GameID  string    `json:"game_id"`
	SavedAt time.Time `json:"saved_at"`
	Version string    `json:"version"`
}

// StateMetadata identifies how and when the world state body was produced.
type StateMetadata struct {
	SerializedAt time.Time `json:"serialized_at"`
	Version      string    `json:"version"`
	Serializer   string    `json:"serializer"`
}

// LocationState is the persisted dynamic state of one location.
type LocationState struct {
	Name       string         `json:"name,omitempty"`
	Type       string         `json:"type,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// WorldState is the decomposed in-memory form of a save.
type WorldState struct {
	Metadata   StateMetadata
	Locations  map[string]LocationState
	Containers map[string]container.State
	Players    map[string]session.Snapshot
	Global     map[string]any
}

// Sections that the serializer recognizes inside world_state; everything else
// is folded into Global.
var knownSections = map[string]bool{
	"metadata": true, "locations": true, "containers": true, "player": true,
	"global_state": true,
}

// Encode renders a save file for gameID from state.
//
// Postcondition: the result round-trips through Decode.
func Encode(gameID string, state *WorldState, at time.Time) ([]byte, error) {
	body := map[string]any{
		"metadata": StateMetadata{
			SerializedAt: at.UTC(),
			Version:      FormatVersion,
			Serializer:   SerializerName,
		},
		"locations":  state.Locations,
		"containers": orEmptyContainers(state.Containers),
		"player":     state.Players,
	}
	if len(state.Global) > 0 {
		body["global_state"] = state.Global
	}

	doc := map[string]any{
		"metadata": FileMetadata{
			GameID:  gameID,
			SavedAt: at.UTC(),
			Version: FormatVersion,
		},
		"world_state": body,
	}
	blob, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("persistence: Encode: game %q: %w", gameID, err)
	}
	return blob, nil
}

// orEmptyContainers keeps the containers section present even when empty;
// full-mode validation requires the key to exist.
func orEmptyContainers(c map[string]container.State) map[string]container.State {
	if c == nil {
		return map[string]container.State{}
	}
	return c
}

// Decode parses a save file back into its metadata and world state.
// Unrecognized world_state keys are preserved under Global. The player
// section tolerates an extra layer of {player_id: playerObj} nesting.
func Decode(blob []byte) (FileMetadata, *WorldState, error) {
	var doc struct {
		Metadata   FileMetadata               `json:"metadata"`
		WorldState map[string]json.RawMessage `json:"world_state"`
	}
	if err := json.Unmarshal(blob, &doc); err != nil {
		return FileMetadata{}, nil, fmt.Errorf("persistence: Decode: %w", err)
	}

	state := &WorldState{
		Locations:  map[string]LocationState{},
		Containers: map[string]container.State{},
		Players:    map[string]session.Snapshot{},
		Global:     map[string]any{},
	}
	for key, raw := range doc.WorldState {
		var err error
		switch key {
		case "metadata":
			err = json.Unmarshal(raw, &state.Metadata)
		case "locations":
			err = json.Unmarshal(raw, &state.Locations)
		case "containers":
			err = json.Unmarshal(raw, &state.Containers)
		case "player":
			err = decodePlayers(raw, state.Players)
		case "global_state":
			err = json.Unmarshal(raw, &state.Global)
		default:
			var value any
			if err = json.Unmarshal(raw, &value); err == nil {
				state.Global[key] = value
			}
		}
		if err != nil {
			return FileMetadata{}, nil, fmt.Errorf("persistence: Decode: section %q: %w", key, err)
		}
	}
	return doc.Metadata, state, nil
}

// decodePlayers fills out from the player section, unwrapping a nested
// {player_id: playerObj} layer when the direct shape lacks a player_id.
func decodePlayers(raw json.RawMessage, out map[string]session.Snapshot) error {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return err
	}
	for id, entry := range entries {
		snap, err := decodePlayerEntry(entry)
		if err != nil {
			return fmt.Errorf("player %q: %w", id, err)
		}
		if snap.PlayerID == "" {
			snap.PlayerID = id
		}
		out[id] = snap
	}
	return nil
}

func decodePlayerEntry(entry json.RawMessage) (session.Snapshot, error) {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(entry, &outer); err != nil {
		return session.Snapshot{}, err
	}
	if _, direct := outer["player_id"]; !direct && len(outer) == 1 {
		for _, inner := range outer {
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(inner, &nested); err == nil {
				if _, ok := nested["player_id"]; ok {
					entry = inner
				}
			}
		}
	}
	var snap session.Snapshot
	if err := json.Unmarshal(entry, &snap); err != nil {
		return session.Snapshot{}, err
	}
	return snap, nil
}

// Validate checks a world state before save and after load.
//
// Full mode requires locations, containers, and player sections to exist,
// with locations and player non-empty, and every player carrying an ID, a
// location, and an inventory section. Partial mode applies only per-section
// shape checks.
func Validate(state *WorldState, partial bool) error {
	if state == nil {
		return fmt.Errorf("persistence: Validate: state is nil")
	}
	if !partial {
		if len(state.Locations) == 0 {
			return fmt.Errorf("persistence: Validate: locations section is missing or empty")
		}
		if state.Containers == nil {
			return fmt.Errorf("persistence: Validate: containers section is missing")
		}
		if len(state.Players) == 0 {
			return fmt.Errorf("persistence: Validate: player section is missing or empty")
		}
	}
	for id, snap := range state.Players {
		if !partial {
			if snap.PlayerID == "" {
				return fmt.Errorf("persistence: Validate: player %q has no player_id", id)
			}
			if snap.CurrentLocation == "" {
				return fmt.Errorf("persistence: Validate: player %q has no current_location", id)
			}
		}
		for i, slot := range snap.Inventory.Slots {
			if slot.ItemID == "" || slot.Quantity <= 0 {
				return fmt.Errorf("persistence: Validate: player %q inventory slot %d is malformed", id, i)
			}
		}
	}
	for id, st := range state.Containers {
		if st.Data.ID != "" && st.Data.ID != id {
			return fmt.Errorf("persistence: Validate: container %q carries mismatched id %q", id, st.Data.ID)
		}
	}
	return nil
}
