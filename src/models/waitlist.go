package models

import (
	"etix/src/types"
)

// WaitlistedTicket links a waitlisted ticket to the user who requested it.
// Rank is not stored; it is reported as the waitlist size at insertion time.
type WaitlistedTicket struct {
	ID              uint     `gorm:"primarykey" json:"id"`
	TicketID        uint     `gorm:"uniqueIndex" json:"ticket_id,omitempty"`
	UserID          uint     `json:"user_id,omitempty"`
	PromoCodeID     *uint    `json:"promo_code_id,omitempty"`
	DiscountedPrice *float64 `gorm:"type:decimal(10,2)" json:"discounted_price,omitempty"`

	Ticket    Ticket     `json:"ticket,omitempty"`
	User      User       `json:"user,omitempty"`
	PromoCode *PromoCode `json:"promo_code,omitempty"`

	types.Timestamps
}
