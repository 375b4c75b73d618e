package order

// State implements the state pattern for order lifecycle transitions.
type State interface {
	Status() Status
	OnPaymentRecorded(o *Order, transactionID string) error
	OnShipped(o *Order) error
	OnCancel(o *Order) error
}

type createdState struct{}

func (createdState) Status() Status { return StatusCreated }

func (createdState) OnPaymentRecorded(o *Order, transactionID string) error {
	o.Paid = true
	o.TransactionID = transactionID
	return nil
}

func (createdState) OnShipped(*Order) error {
	return ErrInvalidTransition
}

func (createdState) OnCancel(*Order) error {
	return nil
}

type paidState struct{}

func (paidState) Status() Status { return StatusPaid }

func (paidState) OnPaymentRecorded(*Order, string) error {
	return ErrInvalidTransition
}

func (paidState) OnShipped(o *Order) error {
	o.Delivery = true
	return nil
}

func (paidState) OnCancel(*Order) error {
	return ErrInvalidTransition
}

type shippedState struct{}

func (shippedState) Status() Status { return StatusShipped }

func (shippedState) OnPaymentRecorded(*Order, string) error {
	return ErrInvalidTransition
}

func (shippedState) OnShipped(*Order) error {
	return ErrInvalidTransition
}

func (shippedState) OnCancel(*Order) error {
	return ErrInvalidTransition
}
