package models

import (
	"etix/src/types"
)

// Ticket is one admission slot in a ticket type's pool. The original pool is
// allocated up-front at type creation; waitlisted tickets are created on
// demand and flagged so they never count against the original quantity.
type Ticket struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	TicketTypeID uint   `json:"ticket_type_id,omitempty"`
	Code         string `gorm:"uniqueIndex" json:"code,omitempty"`
	Purchased    bool   `gorm:"default:false" json:"purchased"`
	CheckedIn    bool   `gorm:"default:false" json:"checked_in"`
	Waitlisted   bool   `gorm:"default:false" json:"waitlisted"`

	TicketType TicketType        `json:"ticket_type,omitempty"`
	Purchase   *PurchasedTicket  `gorm:"constraint:OnDelete:CASCADE" json:"purchase,omitempty"`
	Waitlist   *WaitlistedTicket `gorm:"constraint:OnDelete:CASCADE" json:"waitlist,omitempty"`
	CheckIn    *CheckIn          `gorm:"constraint:OnDelete:CASCADE" json:"check_in,omitempty"`

	types.Timestamps
}
