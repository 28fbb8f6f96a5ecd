package cart

import "maps"

// Status is the lifecycle of a checkout attempt.
type Status string

const (
	StatusLoading             Status = "loading"
	StatusNotCreated          Status = "not-created"
	StatusPending             Status = "pending"
	StatusFailedPayment       Status = "failed-payment"
	StatusPaid                Status = "paid"
	StatusShipped             Status = "shipped"
	StatusPayLaterWithBilling Status = "paylaterwithbilling"
	StatusAbandoned           Status = "abandoned"
)

// settled reports whether the user has already gone past the terms gate.
func (s Status) settled() bool {
	switch s {
	case StatusShipped, StatusPaid, StatusFailedPayment, StatusPayLaterWithBilling:
		return true
	}
	return false
}

// Errors are the checkout messages shown next to the cart.
type Errors struct {
	General      string            `json:"general,omitempty"`
	AgreeToTerms string            `json:"agreeToTerms,omitempty"`
	PerItem      map[string]string `json:"errorsPerShipmentId,omitempty"`
}

func (e Errors) clone() Errors {
	e.PerItem = maps.Clone(e.PerItem)
	return e
}

// State is the checkout state of a cart. Values are never modified in
// place; Reduce returns a new State.
type State struct {
	CartID          string  `json:"cartId"`
	SelectedPayment string  `json:"selectedPayment"`
	Status          Status  `json:"state"`
	AgreeToTerms    bool    `json:"agreeToTerms"`
	Price           float64 `json:"price"`
	PriceVat0       float64 `json:"priceVat0"`
	Errors          Errors  `json:"errors"`
}

// InitialState is the state of a cart that has not been submitted.
func InitialState() State {
	return State{Status: StatusNotCreated}
}

// Action is a checkout state transition.
type Action interface {
	apply(State) State
}

type (
	SetCartID        string
	SetCartState     Status
	SetPrice         float64
	SetPriceVat0     float64
	SetPaymentMethod string
	AgreeToTerms     bool
	SetErrors        Errors
)

// SetItemError records an error against one cart item.
type SetItemError struct {
	ItemID  string
	Message string
}

func (a SetCartID) apply(s State) State { s.CartID = string(a); return s }

func (a SetPrice) apply(s State) State { s.Price = float64(a); return s }

func (a SetPriceVat0) apply(s State) State { s.PriceVat0 = float64(a); return s }

func (a SetPaymentMethod) apply(s State) State { s.SelectedPayment = string(a); return s }

func (a AgreeToTerms) apply(s State) State { s.AgreeToTerms = bool(a); return s }

func (a SetErrors) apply(s State) State { s.Errors = Errors(a).clone(); return s }

// Entering a settled status implies the terms were accepted.
func (a SetCartState) apply(s State) State {
	s.Status = Status(a)
	if s.Status.settled() {
		s.AgreeToTerms = true
	}
	return s
}

func (a SetItemError) apply(s State) State {
	per := make(map[string]string, len(s.Errors.PerItem)+1)
	maps.Copy(per, s.Errors.PerItem)
	per[a.ItemID] = a.Message
	s.Errors.PerItem = per
	return s
}

// Reduce applies actions in order and returns the resulting state.
func Reduce(s State, actions ...Action) State {
	s.Errors = s.Errors.clone()
	for _, a := range actions {
		s = a.apply(s)
	}
	return s
}
