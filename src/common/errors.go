package common

import (
	"errors"
	"fmt"
)

var (
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrNoTicketAvailable  = errors.New("no ticket available")
	ErrDuplicateName      = errors.New("a ticket type with this name already exists for the event")
	ErrHasSoldTickets     = errors.New("ticket type has sold tickets")
	ErrAlreadyCheckedIn   = errors.New("ticket already checked in")
	ErrTicketNotPurchased = errors.New("ticket has not been purchased")
)

type PromoFailReason string

const (
	PromoNotFound        PromoFailReason = "not_found"
	PromoScopeMismatch   PromoFailReason = "scope_mismatch"
	PromoOutsideWindow   PromoFailReason = "outside_window"
	PromoBudgetExhausted PromoFailReason = "budget_exhausted"
)

// PromoError distinguishes why a code was rejected. Handlers render one
// generic message to the caller but log the reason.
type PromoError struct {
	Code   string
	Reason PromoFailReason
}

func (e *PromoError) Error() string {
	return fmt.Sprintf("invalid promo code %q: %s", e.Code, e.Reason)
}

func IsPromoError(err error) bool {
	var pe *PromoError
	return errors.As(err, &pe)
}
