package invoice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommands(t *testing.T) {
	data := []byte(`[
		{"op":"set_field","field":"clientName","value":"ACME"},
		{"op":"add_item"},
		{"op":"update_item","id":"1","field":"price","value":"19.99"},
		{"op":"remove_item","id":"1"},
		{"op":"add_discount"},
		{"op":"update_discount","id":"2","field":"amount","value":"5"},
		{"op":"remove_discount","id":"2"}
	]`)

	cmds, err := DecodeCommands(data)

	require.NoError(t, err)
	assert.Equal(t, []Command{
		SetField{Field: FieldClientName, Value: "ACME"},
		AddItem{},
		UpdateItem{ID: "1", Field: ItemPrice, Value: "19.99"},
		RemoveItem{ID: "1"},
		AddDiscount{},
		UpdateDiscount{ID: "2", Field: DiscountAmount, Value: "5"},
		RemoveDiscount{ID: "2"},
	}, cmds)
}

func TestEncodeDecodeKeepsCommands(t *testing.T) {
	cmds := []Command{
		SetField{Field: FieldNotes, Value: "thanks"},
		AddItem{},
		UpdateItem{ID: "7", Field: ItemQuantity, Value: "3"},
	}

	data, err := EncodeCommands(cmds)
	require.NoError(t, err)
	back, err := DecodeCommands(data)

	require.NoError(t, err)
	assert.Equal(t, cmds, back)
}

func TestDecodeCommandsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
		index int
	}{
		{"not json", `{`, ErrMalformedCommand, -1},
		{"unknown key", `[{"op":"add_item","extra":1}]`, ErrMalformedCommand, -1},
		{"unknown op", `[{"op":"add_item"},{"op":"explode"}]`, ErrUnknownCommand, 1},
		{"unknown header field", `[{"op":"set_field","field":"total","value":"1"}]`, ErrUnknownField, 0},
		{"unknown item field", `[{"op":"update_item","id":"1","field":"color","value":"red"}]`, ErrUnknownField, 0},
		{"missing id", `[{"op":"remove_discount"}]`, ErrMissingTarget, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCommands([]byte(tt.input))

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var cmdErr *CommandError
			require.True(t, errors.As(err, &cmdErr))
			assert.Equal(t, tt.index, cmdErr.Index)
		})
	}
}

func TestParseAssignments(t *testing.T) {
	set, err := ParseSetField("companyAddress=1 Main St = Suite 2")
	require.NoError(t, err)
	assert.Equal(t, SetField{Field: FieldCompanyAddress, Value: "1 Main St = Suite 2"}, set)

	item, err := ParseUpdateItem("42.quantity=5")
	require.NoError(t, err)
	assert.Equal(t, UpdateItem{ID: "42", Field: ItemQuantity, Value: "5"}, item)

	disc, err := ParseUpdateDiscount("9.description=early payment")
	require.NoError(t, err)
	assert.Equal(t, UpdateDiscount{ID: "9", Field: DiscountDescription, Value: "early payment"}, disc)

	_, err = ParseSetField("clientName")
	assert.ErrorIs(t, err, ErrMalformedCommand)

	_, err = ParseUpdateItem("42.weight=1")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = ParseUpdateDiscount(".amount=1")
	assert.ErrorIs(t, err, ErrMissingTarget)
}
