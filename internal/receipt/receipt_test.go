package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabby/internal/models"
)

func TestDecode_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind Kind
	}{
		{
			name:     "flat",
			raw:      `{"items":[{"name":"Burger","price":"12.50"}],"tax":"1.10","tip":"3"}`,
			wantKind: KindFlat,
		},
		{
			name:     "parsed envelope",
			raw:      `{"parsed":{"items":[{"name":"Burger","price":12.50}],"sales_tax":1.10,"tip":3}}`,
			wantKind: KindParsed,
		},
		{
			name:     "null envelope falls back to flat",
			raw:      `{"parsed":null,"items":[{"label":"Burger","unit_price":"12.50"}],"tax":"1.10","tip":"3.00"}`,
			wantKind: KindFlat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := Decode([]byte(tt.raw))
			require.NoError(t, err)

			assert.Equal(t, tt.wantKind, draft.Kind)
			require.Len(t, draft.Items, 1)
			assert.Equal(t, "Burger", draft.Items[0].Label)
			assert.Equal(t, "12.50", draft.Items[0].Price().StringFixed(2))
			assert.NotEmpty(t, draft.Items[0].ID)
			assert.Equal(t, "1.10", draft.Charges.Tax.StringFixed(2))
			assert.Equal(t, "3.00", draft.Charges.Tip.StringFixed(2))
			assert.Equal(t, models.SplitProportional, draft.Charges.TaxSplit)
		})
	}
}

func TestDecode_Quantities(t *testing.T) {
	raw := `{"items":[
		{"name":"Taco","quantity":3,"total_price":"9.00"},
		{"name":"Soda","quantity":3,"price":"10.00"},
		{"name":"Wings","quantity":2,"unit_price":"7.25"}
	]}`

	draft, err := Decode([]byte(raw))
	require.NoError(t, err)
	require.Len(t, draft.Items, 3)

	taco := draft.Items[0]
	assert.Equal(t, 3, taco.Quantity)
	assert.Equal(t, "3.00", taco.UnitPrice.StringFixed(2))

	// 10.00 does not split into three whole cents; the line total is kept.
	soda := draft.Items[1]
	assert.Equal(t, 1, soda.Quantity)
	assert.Equal(t, "3 x Soda", soda.Label)
	assert.Equal(t, "10.00", soda.Price().StringFixed(2))

	wings := draft.Items[2]
	assert.Equal(t, "14.50", wings.Price().StringFixed(2))
}

func TestDecode_SubtotalGap(t *testing.T) {
	raw := `{"items":[{"name":"A","price":"5.00"},{"name":"B","price":"4.00"}],"subtotal":"10.00"}`
	draft, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "1.00", draft.SubtotalGap.StringFixed(2))
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not an object", `[1,2,3]`},
		{"null", `null`},
		{"bad amount", `{"items":[{"name":"A","price":"abc"}]}`},
		{"missing price", `{"items":[{"name":"A"}]}`},
		{"negative price", `{"items":[{"name":"A","price":"-2"}]}`},
		{"zero quantity", `{"items":[{"name":"A","quantity":0,"price":"2"}]}`},
		{"negative tip", `{"items":[],"tip":"-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestDecode_DefaultLabel(t *testing.T) {
	draft, err := Decode([]byte(`{"items":[{"price":"1"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Item 1", draft.Items[0].Label)
}
