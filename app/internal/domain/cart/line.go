package cart

import "github.com/shopspring/decimal"

// Line is one row of a cart. StockLimit is the live stock of the entry the
// last time the line was added or refreshed.
type Line struct {
	ID         int64
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int64
	StockLimit int64
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Adjustment records a change forced on a line by the live catalog.
type Adjustment struct {
	ID           int64
	Name         string
	From         int64
	To           int64
	Removed      bool
	PriceChanged bool
	OldPrice     decimal.Decimal
	NewPrice     decimal.Decimal
}

type PayloadLine struct {
	ID        int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// Payload is a detached copy of a cart taken when checkout begins.
type Payload struct {
	Lines []PayloadLine
	Total decimal.Decimal
}

func (p Payload) IsEmpty() bool {
	return len(p.Lines) == 0
}

func (p Payload) ItemCount() int64 {
	var n int64
	for _, l := range p.Lines {
		n += l.Quantity
	}
	return n
}
