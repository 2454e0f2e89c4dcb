package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Environment string

const (
	Local      Environment = "local"
	Test       Environment = "test"
	Production Environment = "production"
)

type UserRole string

const (
	ROLE_ORGANIZER UserRole = "organizer"
	ROLE_STAFF     UserRole = "staff"
	ROLE_ATTENDEE  UserRole = "attendee"
)

type EventStatus string

const (
	EVENT_UPCOMING  EventStatus = "upcoming"
	EVENT_ENDED     EventStatus = "ended"
	EVENT_ARCHIVED  EventStatus = "archived"
	EVENT_CANCELLED EventStatus = "cancelled"
)

type DiscountType string

const (
	DISCOUNT_PERCENTAGE DiscountType = "percentage"
	DISCOUNT_FIXED      DiscountType = "fixed"
)

type RegisterRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=organizer staff attendee"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateEventRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
	StartsAt string `json:"starts_at" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	EndsAt   string `json:"ends_at" binding:"required,bookabledate,gtdate=StartsAt" time_format:"2006-01-02 15:04:05 -07:00"`
}

type UpdateEventRequestBody struct {
	Name     *string `json:"name,omitempty"`
	Location *string `json:"location,omitempty"`
	StartsAt *string `json:"starts_at,omitempty" binding:"omitempty,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	EndsAt   *string `json:"ends_at,omitempty" binding:"omitempty,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
}

type CreateTicketTypeRequestBody struct {
	EventID  uint    `json:"event_id" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"min=0"`
	Quantity uint    `json:"quantity" binding:"required,min=1"`
}

type PurchaseTicketRequestBody struct {
	TicketTypeID uint `json:"ticketTypeId" binding:"required"`
}

type JoinWaitlistRequestBody struct {
	TicketTypeID uint    `json:"ticketTypeId" binding:"required"`
	PromoCode    *string `json:"promoCode,omitempty"`
}

type CreatePromoCodeRequestBody struct {
	EventID      uint    `json:"event_id" binding:"required"`
	TicketTypeID *uint   `json:"ticket_type_id,omitempty"`
	Code         string  `json:"code" binding:"required"`
	DiscountType string  `json:"discount_type" binding:"required,oneof=percentage fixed"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	StartDate    string  `json:"start_date" binding:"required" time_format:"2006-01-02 15:04:05 -07:00"`
	EndDate      string  `json:"end_date" binding:"required" time_format:"2006-01-02 15:04:05 -07:00"`
	MaxUsage     uint    `json:"max_usage" binding:"required,min=1"`
}

type CheckInRequestBody struct {
	Code string `json:"code" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

// WaitlistEntry is the row shape returned by the waitlist listing endpoint.
type WaitlistEntry struct {
	WaitlistID     uint      `json:"waitlistId"`
	WaitlistAt     time.Time `json:"waitlistAt"`
	EventID        uint      `json:"eventId"`
	EventName      string    `json:"eventName"`
	TicketTypeID   uint      `json:"ticketTypeId"`
	TicketTypeName string    `json:"ticketTypeName"`
	Price          float64   `json:"price"`
	Purchased      bool      `json:"purchased"`
	TicketID       uint      `json:"ticketId"`
	WaitlistRank   uint      `json:"waitlistRank"`
}

// TicketTypeReport aggregates sales and attendance per ticket type.
type TicketTypeReport struct {
	TicketTypeID uint    `json:"ticket_type_id"`
	Name         string  `json:"name"`
	Quantity     uint    `json:"quantity"`
	Sold         uint    `json:"sold"`
	Waitlisted   uint    `json:"waitlisted"`
	CheckedIn    uint    `json:"checked_in"`
	Revenue      float64 `json:"revenue"`
}
