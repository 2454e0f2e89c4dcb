package models

import (
	"etix/src/types"
	"time"
)

type PurchasedTicket struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	TicketID    uint      `gorm:"uniqueIndex" json:"ticket_id,omitempty"`
	UserID      uint      `json:"user_id,omitempty"`
	PurchasedAt time.Time `json:"purchased_at,omitempty"`
	FinalPrice  *float64  `gorm:"type:decimal(10,2)" json:"final_price,omitempty"`

	Ticket Ticket `json:"ticket,omitempty"`
	User   User   `json:"user,omitempty"`

	types.Timestamps
}
