package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// envelope is the wire form of a command:
//
//	{"op":"update_item","id":"42","field":"price","value":"19.99"}
type envelope struct {
	Op    string `json:"op"`
	ID    string `json:"id,omitempty"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// DecodeCommands parses a JSON array of command envelopes.
// Unknown ops and unknown field names are rejected here, so Apply never sees them.
func DecodeCommands(data []byte) ([]Command, error) {
	const op = "DecodeCommands"

	var raw []envelope
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, NewCommandError(op, ErrMalformedCommand, err.Error())
	}

	cmds := make([]Command, 0, len(raw))
	for i, env := range raw {
		cmd, err := env.command()
		if err != nil {
			return nil, WrapCommandError(op, i, err, fmt.Sprintf("op %q", env.Op))
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// EncodeCommands renders commands in their wire form.
func EncodeCommands(cmds []Command) ([]byte, error) {
	out := make([]envelope, 0, len(cmds))
	for _, cmd := range cmds {
		env := envelope{Op: cmd.Op()}
		switch c := cmd.(type) {
		case SetField:
			env.Field, env.Value = string(c.Field), c.Value
		case UpdateItem:
			env.ID, env.Field, env.Value = c.ID, string(c.Field), c.Value
		case RemoveItem:
			env.ID = c.ID
		case UpdateDiscount:
			env.ID, env.Field, env.Value = c.ID, string(c.Field), c.Value
		case RemoveDiscount:
			env.ID = c.ID
		}
		out = append(out, env)
	}
	return json.Marshal(out)
}

func (e envelope) command() (Command, error) {
	switch e.Op {
	case "set_field":
		f := HeaderField(e.Field)
		if !f.Valid() {
			return nil, &FieldError{Entity: "invoice", Field: e.Field}
		}
		return SetField{Field: f, Value: e.Value}, nil
	case "add_item":
		return AddItem{}, nil
	case "update_item":
		f := ItemField(e.Field)
		if e.ID == "" {
			return nil, ErrMissingTarget
		}
		if !f.Valid() {
			return nil, &FieldError{Entity: "item", Field: e.Field}
		}
		return UpdateItem{ID: e.ID, Field: f, Value: e.Value}, nil
	case "remove_item":
		if e.ID == "" {
			return nil, ErrMissingTarget
		}
		return RemoveItem{ID: e.ID}, nil
	case "add_discount":
		return AddDiscount{}, nil
	case "update_discount":
		f := DiscountField(e.Field)
		if e.ID == "" {
			return nil, ErrMissingTarget
		}
		if !f.Valid() {
			return nil, &FieldError{Entity: "discount", Field: e.Field}
		}
		return UpdateDiscount{ID: e.ID, Field: f, Value: e.Value}, nil
	case "remove_discount":
		if e.ID == "" {
			return nil, ErrMissingTarget
		}
		return RemoveDiscount{ID: e.ID}, nil
	default:
		return nil, ErrUnknownCommand
	}
}

// ParseSetField parses a "field=value" assignment for a header field.
func ParseSetField(assignment string) (SetField, error) {
	const op = "ParseSetField"

	name, value, ok := strings.Cut(assignment, "=")
	if !ok {
		return SetField{}, NewCommandError(op, ErrMalformedCommand, fmt.Sprintf("expected field=value, got %q", assignment))
	}
	f := HeaderField(strings.TrimSpace(name))
	if !f.Valid() {
		return SetField{}, NewCommandError(op, &FieldError{Entity: "invoice", Field: string(f)}, assignment)
	}
	return SetField{Field: f, Value: value}, nil
}

// ParseUpdateItem parses an "id.field=value" assignment for a line item.
func ParseUpdateItem(assignment string) (UpdateItem, error) {
	const op = "ParseUpdateItem"

	id, field, value, err := splitTargeted(assignment)
	if err != nil {
		return UpdateItem{}, NewCommandError(op, err, assignment)
	}
	f := ItemField(field)
	if !f.Valid() {
		return UpdateItem{}, NewCommandError(op, &FieldError{Entity: "item", Field: field}, assignment)
	}
	return UpdateItem{ID: id, Field: f, Value: value}, nil
}

// ParseUpdateDiscount parses an "id.field=value" assignment for a discount.
func ParseUpdateDiscount(assignment string) (UpdateDiscount, error) {
	const op = "ParseUpdateDiscount"

	id, field, value, err := splitTargeted(assignment)
	if err != nil {
		return UpdateDiscount{}, NewCommandError(op, err, assignment)
	}
	f := DiscountField(field)
	if !f.Valid() {
		return UpdateDiscount{}, NewCommandError(op, &FieldError{Entity: "discount", Field: field}, assignment)
	}
	return UpdateDiscount{ID: id, Field: f, Value: value}, nil
}

func splitTargeted(assignment string) (id, field, value string, err error) {
	target, value, ok := strings.Cut(assignment, "=")
	if !ok {
		return "", "", "", ErrMalformedCommand
	}
	// ids never contain dots, field names never do either
	id, field, ok = strings.Cut(strings.TrimSpace(target), ".")
	if !ok || field == "" {
		return "", "", "", ErrMalformedCommand
	}
	if id == "" {
		return "", "", "", ErrMissingTarget
	}
	return id, field, value, nil
}
