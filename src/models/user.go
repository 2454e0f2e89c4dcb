package models

import (
	"etix/src/types"
)

type User struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Name         string `json:"name,omitempty"`
	Email        string `gorm:"uniqueIndex" json:"email,omitempty"`
	PasswordHash string `json:"-"`
	Role         string `gorm:"default:'attendee'" json:"role,omitempty"`

	Purchases []PurchasedTicket  `gorm:"foreignKey:user_id" json:"purchases,omitempty"`
	Waitlists []WaitlistedTicket `gorm:"foreignKey:user_id" json:"waitlists,omitempty"`

	types.Timestamps
}
