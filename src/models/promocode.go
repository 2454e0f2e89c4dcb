package models

import (
	"etix/src/types"
	"time"
)

// PromoCode is scoped to an event; TicketTypeID narrows it to one type when
// set. UsageCount must never exceed MaxUsage (enforced with a conditional
// increment at application time).
type PromoCode struct {
	ID           uint               `gorm:"primarykey" json:"id"`
	EventID      uint               `json:"event_id,omitempty"`
	TicketTypeID *uint              `json:"ticket_type_id,omitempty"`
	Code         string             `gorm:"index" json:"code,omitempty"`
	DiscountType types.DiscountType `json:"discount_type,omitempty"`
	Amount       float64            `gorm:"type:decimal(10,2)" json:"amount"`
	StartDate    time.Time          `json:"start_date,omitempty"`
	EndDate      time.Time          `json:"end_date,omitempty"`
	MaxUsage     uint               `json:"max_usage"`
	UsageCount   uint               `gorm:"default:0" json:"usage_count"`

	Event      Event       `json:"-"`
	TicketType *TicketType `json:"-"`

	types.Timestamps
}
