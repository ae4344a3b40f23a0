package cart

import (
	"github.com/shopspring/decimal"

	domcatalog "example.com/storefront/app/internal/domain/catalog"
)

// Catalog resolves live catalog entries. domcatalog.Index satisfies it.
type Catalog interface {
	Lookup(id int64) (domcatalog.Entry, bool)
}

// Cart holds the lines of one shopping session in insertion order.
// Every line satisfies 1 <= Quantity <= StockLimit. A Cart is not safe for
// concurrent use; callers serialise access per session.
type Cart struct {
	ids   []int64
	lines map[int64]*Line
}

func New() *Cart {
	return &Cart{lines: make(map[int64]*Line)}
}

// Add merges quantity of e into the cart. When the merged quantity would
// exceed e.Stock the line is clamped to e.Stock and a *StockExceededError is
// returned. An entry without stock never creates a line.
func (c *Cart) Add(e domcatalog.Entry, quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	line, ok := c.lines[e.ID]
	if !ok {
		if e.Stock < 1 {
			return &StockExceededError{ID: e.ID, Requested: quantity, Limit: 0}
		}
		c.insert(&Line{
			ID:         e.ID,
			Name:       e.Name,
			UnitPrice:  e.UnitPrice,
			Quantity:   min(quantity, e.Stock),
			StockLimit: e.Stock,
		})
		if quantity > e.Stock {
			return &StockExceededError{ID: e.ID, Requested: quantity, Limit: e.Stock}
		}
		return nil
	}

	line.Name = e.Name
	line.UnitPrice = e.UnitPrice
	line.StockLimit = e.Stock
	if e.Stock < 1 {
		c.Remove(e.ID)
		return &StockExceededError{ID: e.ID, Requested: quantity, Limit: 0}
	}
	// compared as a difference so huge requests cannot overflow
	if quantity > e.Stock-line.Quantity {
		line.Quantity = e.Stock
		return &StockExceededError{ID: e.ID, Requested: quantity, Limit: e.Stock}
	}
	line.Quantity += quantity
	return nil
}

// SetQuantity sets the quantity of an existing line. Quantities below 1 are
// rejected with ErrInvalidQuantity; lines are removed through Remove only.
// Unknown ids are ignored.
func (c *Cart) SetQuantity(id, quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	line, ok := c.lines[id]
	if !ok {
		return nil
	}
	if quantity > line.StockLimit {
		line.Quantity = line.StockLimit
		return &StockExceededError{ID: id, Requested: quantity, Limit: line.StockLimit}
	}
	line.Quantity = quantity
	return nil
}

func (c *Cart) Remove(id int64) {
	if _, ok := c.lines[id]; !ok {
		return
	}
	delete(c.lines, id)
	for i, v := range c.ids {
		if v == id {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			break
		}
	}
}

func (c *Cart) Clear() {
	c.ids = nil
	c.lines = make(map[int64]*Line)
}

// Refresh copies the live name, price and stock of e onto its line, clamping
// or removing the line when stock has dropped. It returns nil when nothing the
// shopper can see has changed.
func (c *Cart) Refresh(e domcatalog.Entry) *Adjustment {
	line, ok := c.lines[e.ID]
	if !ok {
		return nil
	}

	adj := Adjustment{ID: e.ID, Name: e.Name, From: line.Quantity, To: line.Quantity}
	changed := false
	if !line.UnitPrice.Equal(e.UnitPrice) {
		adj.PriceChanged = true
		adj.OldPrice = line.UnitPrice
		adj.NewPrice = e.UnitPrice
		changed = true
	}

	line.Name = e.Name
	line.UnitPrice = e.UnitPrice
	line.StockLimit = e.Stock

	if e.Stock < 1 {
		c.Remove(e.ID)
		adj.To = 0
		adj.Removed = true
		return &adj
	}
	if line.Quantity > e.Stock {
		line.Quantity = e.Stock
		adj.To = e.Stock
		changed = true
	}
	if !changed {
		return nil
	}
	return &adj
}

// Reconcile refreshes every line against the live catalog. Lines whose entry
// is no longer offered are removed.
func (c *Cart) Reconcile(live Catalog) []Adjustment {
	var adjustments []Adjustment
	for _, id := range c.IDs() {
		e, ok := live.Lookup(id)
		if !ok {
			line := c.lines[id]
			adjustments = append(adjustments, Adjustment{
				ID:      id,
				Name:    line.Name,
				From:    line.Quantity,
				Removed: true,
			})
			c.Remove(id)
			continue
		}
		if adj := c.Refresh(e); adj != nil {
			adjustments = append(adjustments, *adj)
		}
	}
	return adjustments
}

func (c *Cart) IDs() []int64 {
	return append([]int64(nil), c.ids...)
}

func (c *Cart) Line(id int64) (Line, bool) {
	line, ok := c.lines[id]
	if !ok {
		return Line{}, false
	}
	return *line, true
}

// Lines returns copies of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, *c.lines[id])
	}
	return out
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, id := range c.ids {
		total = total.Add(c.lines[id].Subtotal())
	}
	return total
}

// ItemCount is the summed quantity of all lines, shown on the cart badge.
func (c *Cart) ItemCount() int64 {
	var n int64
	for _, id := range c.ids {
		n += c.lines[id].Quantity
	}
	return n
}

func (c *Cart) LineCount() int {
	return len(c.ids)
}

func (c *Cart) OrderPayload() Payload {
	p := Payload{
		Lines: make([]PayloadLine, 0, len(c.ids)),
		Total: c.Total(),
	}
	for _, id := range c.ids {
		line := c.lines[id]
		p.Lines = append(p.Lines, PayloadLine{
			ID:        line.ID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return p
}

func (c *Cart) insert(line *Line) {
	if c.lines == nil {
		c.lines = make(map[int64]*Line)
	}
	c.ids = append(c.ids, line.ID)
	c.lines[line.ID] = line
}
