// Package actions provides the single command surface over the catalog,
// inventory, equipment, and container subsystems. Every mutation flows
// through the Facade and emits integration events.
package actions

// Command identifies a facade operation.
type Command string

// All facade commands.
const (
	CmdTake          Command = "TAKE"
	CmdDrop          Command = "DROP"
	CmdUse           Command = "USE"
	CmdInventoryView Command = "INVENTORY_VIEW"
	CmdGive          Command = "GIVE"
	CmdEquip         Command = "EQUIP"
	CmdUnequip       Command = "UNEQUIP"
)

// Details carries the optional parameters of a facade command.
type Details struct {
	ItemNameOrID string `json:"item_name_or_id,omitempty"`
	ItemName     string `json:"item_name,omitempty"`
	Quantity     int    `json:"quantity,omitempty"`
	Slot         string `json:"slot,omitempty"`
	SlotName     string `json:"slot_name,omitempty"`
	ContainerID  string `json:"container_id,omitempty"`
	Target       string `json:"target,omitempty"`
	ReceiverID   string `json:"receiver_id,omitempty"`
}

// itemRef returns whichever of the two item fields is populated.
func (d Details) itemRef() string {
	if d.ItemNameOrID != "" {
		return d.ItemNameOrID
	}
	return d.ItemName
}

// quantity returns the requested quantity, defaulting to 1.
func (d Details) quantity() int {
	if d.Quantity <= 0 {
		return 1
	}
	return d.Quantity
}

// slotRef returns whichever of the two slot fields is populated.
func (d Details) slotRef() string {
	if d.Slot != "" {
		return d.Slot
	}
	return d.SlotName
}

// Result is the uniform command result envelope. Errors are values: a failed
// command is a Result with Success false, never a panic or an escaped error.
type Result struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Machine-readable reason codes reported under Data["reason"].
const (
	ReasonNotFound          = "not_found"
	ReasonNotOwned          = "not_owned"
	ReasonCapacityExceeded  = "capacity_exceeded"
	ReasonLocked            = "locked"
	ReasonMissingParameters = "missing_parameters"
	ReasonValidation        = "validation"
)

// fail builds a failure Result with a reason code.
func fail(message, reason string) Result {
	return Result{
		Message: message,
		Data:    map[string]any{"reason": reason},
	}
}

// ok builds a success Result.
func ok(message string, data map[string]any) Result {
	return Result{Success: true, Message: message, Data: data}
}
