package models

import (
	"etix/src/types"
)

type CheckIn struct {
	ID       uint `gorm:"primarykey" json:"id"`
	TicketID uint `gorm:"uniqueIndex" json:"ticket_id,omitempty"`
	By       uint `json:"by,omitempty"`

	Ticket Ticket `json:"ticket,omitempty"`
	Staff  User   `gorm:"foreignKey:by" json:"-"`

	types.Timestamps
}
