package models

import (
	"etix/src/types"
)

type TicketType struct {
	ID       uint    `gorm:"primarykey" json:"id"`
	EventID  uint    `gorm:"uniqueIndex:idx_ticket_types_event_name" json:"event_id,omitempty"`
	Name     string  `gorm:"uniqueIndex:idx_ticket_types_event_name" json:"name,omitempty"`
	Price    float64 `gorm:"type:decimal(10,2)" json:"price"`
	Quantity uint    `json:"quantity"`

	Event   Event    `json:"event,omitempty"`
	Tickets []Ticket `gorm:"constraint:OnDelete:CASCADE" json:"tickets,omitempty"`

	types.Timestamps
}
