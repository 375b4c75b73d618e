package product

import "time"

// StockChangedEvent is emitted whenever the available quantity of a product changes.
type StockChangedEvent struct {
	ProductID  string
	Quantity   int
	Reason     string
	OccurredAt time.Time
}

const (
	StockReasonOverwrite = "overwrite"
	StockReasonDecrement = "decrement"
	StockReasonReserved  = "order_reserved"
	StockReasonReleased  = "order_released"
)

func (StockChangedEvent) EventName() string     { return "product.stock_changed" }
func (e StockChangedEvent) AggregateID() string { return e.ProductID }

func NewStockChangedEvent(p *Product, reason string) StockChangedEvent {
	return StockChangedEvent{
		ProductID:  p.ID,
		Quantity:   p.AvailableQuantity,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
