package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validEntry() *Entry {
	return &Entry{
		ID:        1,
		Kind:      KindProduct,
		Name:      "Espresso Beans",
		UnitPrice: decimal.RequireFromString("10.00"),
		Stock:     3,
		IsActive:  true,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *Entry)
		ok     bool
	}{
		{name: "valid", mutate: func(e *Entry) {}, ok: true},
		{name: "zero stock is valid", mutate: func(e *Entry) { e.Stock = 0 }, ok: true},
		{name: "free entry is valid", mutate: func(e *Entry) { e.UnitPrice = decimal.Zero }, ok: true},
		{name: "zero id", mutate: func(e *Entry) { e.ID = 0 }},
		{name: "blank name", mutate: func(e *Entry) { e.Name = "   " }},
		{name: "unknown kind", mutate: func(e *Entry) { e.Kind = "bundle" }},
		{name: "negative price", mutate: func(e *Entry) { e.UnitPrice = decimal.RequireFromString("-0.01") }},
		{name: "negative stock", mutate: func(e *Entry) { e.Stock = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(e)
			err := Validate(e)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidEntry)
		})
	}

	require.ErrorIs(t, Validate(nil), ErrInvalidEntry)
}

func TestNewIndex_SkipsInactiveAndMalformed(t *testing.T) {
	active := validEntry()
	inactive := validEntry()
	inactive.ID = 2
	inactive.IsActive = false
	malformed := validEntry()
	malformed.ID = 3
	malformed.Stock = -5

	idx := NewIndex([]*Entry{active, inactive, malformed, nil})

	require.Len(t, idx, 1)
	e, ok := idx.Lookup(1)
	require.True(t, ok)
	require.Equal(t, "Espresso Beans", e.Name)

	_, ok = idx.Lookup(2)
	require.False(t, ok)
	_, ok = idx.Lookup(3)
	require.False(t, ok)
}

func TestValidateDraft_AllowsMissingID(t *testing.T) {
	e := validEntry()
	e.ID = 0

	require.NoError(t, ValidateDraft(e))
	require.ErrorIs(t, Validate(e), ErrInvalidEntry)
}

func TestPatch_Apply(t *testing.T) {
	e := validEntry()
	name := "  Decaf Beans "
	stock := int64(0)
	active := false

	Patch{Name: &name, Stock: &stock, IsActive: &active}.Apply(e)

	require.Equal(t, "Decaf Beans", e.Name)
	require.Equal(t, int64(0), e.Stock)
	require.False(t, e.IsActive)
	require.True(t, e.UnitPrice.Equal(decimal.RequireFromString("10.00")), "untouched fields stay")
	require.Equal(t, KindProduct, e.Kind)
}
