package models

import (
	"etix/src/types"
	"time"
)

type Event struct {
	ID          uint              `gorm:"primarykey" json:"id"`
	Name        string            `json:"name,omitempty"`
	Slug        string            `gorm:"index" json:"slug,omitempty"`
	Location    string            `json:"location,omitempty"`
	StartsAt    time.Time         `json:"starts_at,omitempty"`
	EndsAt      time.Time         `json:"ends_at,omitempty"`
	Status      types.EventStatus `gorm:"default:'upcoming'" json:"status,omitempty"`
	OrganizerID uint              `json:"organizer_id,omitempty"`

	Organizer   User         `gorm:"foreignKey:organizer_id" json:"-"`
	TicketTypes []TicketType `gorm:"constraint:OnDelete:CASCADE" json:"ticket_types,omitempty"`
	PromoCodes  []PromoCode  `gorm:"constraint:OnDelete:CASCADE" json:"promo_codes,omitempty"`

	types.Timestamps
}
