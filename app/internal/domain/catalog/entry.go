package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindProduct Kind = "product"
	KindService Kind = "service"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindProduct, KindService:
		return true
	default:
		return false
	}
}

// Entry is a sellable product or service. Stock is the upper bound for any
// cart quantity of this entry.
type Entry struct {
	ID          int64
	Kind        Kind
	Name        string
	Description string
	ImageURL    string
	UnitPrice   decimal.Decimal
	Stock       int64
	IsActive    bool
}

// Patch carries the fields an admin update changes; nil means keep.
type Patch struct {
	Kind        *Kind
	Name        *string
	Description *string
	ImageURL    *string
	UnitPrice   *decimal.Decimal
	Stock       *int64
	IsActive    *bool
}

func (p Patch) Apply(e *Entry) {
	if p.Kind != nil {
		e.Kind = *p.Kind
	}
	if p.Name != nil {
		e.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.ImageURL != nil {
		e.ImageURL = *p.ImageURL
	}
	if p.UnitPrice != nil {
		e.UnitPrice = *p.UnitPrice
	}
	if p.Stock != nil {
		e.Stock = *p.Stock
	}
	if p.IsActive != nil {
		e.IsActive = *p.IsActive
	}
}

type ListFilter struct {
	Kind       Kind
	Search     string
	OnlyActive bool
}

// Validate reports the first field that keeps e out of a cart.
func Validate(e *Entry) error {
	if e == nil {
		return ErrInvalidEntry
	}
	if e.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidEntry)
	}
	return ValidateDraft(e)
}

// ValidateDraft checks everything but the id, for entries not yet stored.
func ValidateDraft(e *Entry) error {
	switch {
	case e == nil:
		return ErrInvalidEntry
	case strings.TrimSpace(e.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidEntry)
	case !e.Kind.IsValid():
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, e.Kind)
	case e.UnitPrice.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidEntry)
	case e.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidEntry)
	}
	return nil
}

// Index is a read-only view of the live catalog keyed by entry id.
type Index map[int64]Entry

// NewIndex keeps only active entries that pass Validate.
func NewIndex(entries []*Entry) Index {
	idx := make(Index, len(entries))
	for _, e := range entries {
		if e == nil || !e.IsActive || Validate(e) != nil {
			continue
		}
		idx[e.ID] = *e
	}
	return idx
}

func (i Index) Lookup(id int64) (Entry, bool) {
	e, ok := i[id]
	return e, ok
}
