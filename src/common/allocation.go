package common

import (
	"errors"
	"etix/src/db"
	"etix/src/models"
	"etix/src/types"
	"etix/src/utils"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateTicketType creates the type and its fixed pool of quantity tickets in
// one transaction. Every ticket starts unpurchased with a fresh unique code.
func CreateTicketType(eventID uint, name string, price float64, quantity uint) (uint, error) {
	var typeID uint
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.
			Where(&models.Event{ID: eventID}).
			First(&event).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		var count int64
		if err := tx.
			Model(&models.TicketType{}).
			Where(&models.TicketType{EventID: eventID, Name: name}).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateName
		}
		tt := models.TicketType{
			EventID:  eventID,
			Name:     name,
			Price:    price,
			Quantity: quantity,
		}
		if err := tx.Create(&tt).Error; err != nil {
			return err
		}
		tickets := make([]models.Ticket, 0, quantity)
		for i := uint(0); i < quantity; i++ {
			tickets = append(tickets, models.Ticket{
				TicketTypeID: tt.ID,
				Code:         utils.GenerateTicketCode(),
			})
		}
		if err := tx.Create(&tickets).Error; err != nil {
			return err
		}
		typeID = tt.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return typeID, nil
}

// DeleteTicketType removes the type and its pool. Refused once any ticket has
// been sold.
func DeleteTicketType(typeID uint) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var tt models.TicketType
		if err := tx.
			Where(&models.TicketType{ID: typeID}).
			First(&tt).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketTypeNotFound
			}
			return err
		}
		var sold int64
		if err := tx.
			Model(&models.Ticket{}).
			Where("ticket_type_id = ? AND purchased = ?", typeID, true).
			Count(&sold).
			Error; err != nil {
			return err
		}
		if sold > 0 {
			return ErrHasSoldTickets
		}
		if err := tx.
			Where("ticket_type_id = ?", typeID).
			Delete(&models.Ticket{}).
			Error; err != nil {
			return err
		}
		if err := tx.Delete(&tt).Error; err != nil {
			return err
		}
		return nil
	})
}

// DeleteEvent removes the event together with its ticket types, tickets,
// promo codes, waitlist links and check-ins, all in one transaction. Refused
// once any ticket of the event has been sold.
func DeleteEvent(eventID uint) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.
			Where(&models.Event{ID: eventID}).
			First(&event).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		var sold int64
		if err := tx.
			Model(&models.Ticket{}).
			Joins("JOIN ticket_types ON ticket_types.id = tickets.ticket_type_id").
			Where("ticket_types.event_id = ? AND tickets.purchased = ?", eventID, true).
			Count(&sold).
			Error; err != nil {
			return err
		}
		if sold > 0 {
			return ErrHasSoldTickets
		}
		ticketIDs := tx.
			Model(&models.Ticket{}).
			Select("tickets.id").
			Joins("JOIN ticket_types ON ticket_types.id = tickets.ticket_type_id").
			Where("ticket_types.event_id = ?", eventID)
		if err := tx.
			Where("ticket_id IN (?)", ticketIDs).
			Delete(&models.WaitlistedTicket{}).
			Error; err != nil {
			return err
		}
		if err := tx.
			Where("ticket_id IN (?)", ticketIDs).
			Delete(&models.CheckIn{}).
			Error; err != nil {
			return err
		}
		typeIDs := tx.
			Model(&models.TicketType{}).
			Select("id").
			Where("event_id = ?", eventID)
		if err := tx.
			Where("ticket_type_id IN (?)", typeIDs).
			Delete(&models.Ticket{}).
			Error; err != nil {
			return err
		}
		if err := tx.
			Where("event_id = ?", eventID).
			Delete(&models.TicketType{}).
			Error; err != nil {
			return err
		}
		if err := tx.
			Where("event_id = ?", eventID).
			Delete(&models.PromoCode{}).
			Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
}

type PurchaseResult struct {
	TicketID   uint
	TicketCode string
	Remaining  int64
	TicketType models.TicketType
	Event      models.Event
}

// PurchaseTicket claims one unpurchased ticket from the type's original pool.
// The claim row-locks a single free ticket (SKIP LOCKED) so two concurrent
// purchases never select the same row, and the final conditional update
// guards against claiming a ticket that was flipped between read and write.
func PurchaseTicket(ticketTypeID uint, userID uint) (*PurchaseResult, error) {
	var result PurchaseResult
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var tt models.TicketType
		if err := tx.
			Where(&models.TicketType{ID: ticketTypeID}).
			Preload("Event").
			First(&tt).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketTypeNotFound
			}
			return err
		}
		var ticket models.Ticket
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("ticket_type_id = ? AND purchased = ? AND waitlisted = ?", ticketTypeID, false, false).
			Order("id").
			First(&ticket).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoTicketAvailable
			}
			return err
		}
		claim := tx.
			Model(&models.Ticket{}).
			Where("id = ? AND purchased = ?", ticket.ID, false).
			Update("purchased", true)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return ErrNoTicketAvailable
		}
		price := tt.Price
		purchase := models.PurchasedTicket{
			TicketID:    ticket.ID,
			UserID:      userID,
			PurchasedAt: time.Now(),
			FinalPrice:  &price,
		}
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}
		var remaining int64
		if err := tx.
			Model(&models.Ticket{}).
			Where("ticket_type_id = ? AND purchased = ? AND waitlisted = ?", ticketTypeID, false, false).
			Count(&remaining).
			Error; err != nil {
			return err
		}
		result = PurchaseResult{
			TicketID:   ticket.ID,
			TicketCode: ticket.Code,
			Remaining:  remaining,
			TicketType: tt,
			Event:      tt.Event,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type WaitlistResult struct {
	WaitlistID uint
	TicketID   uint
	Rank       int64
	FinalPrice *float64
	TicketType models.TicketType
	Event      models.Event
}

// JoinWaitlist grows the pool with a new waitlisted ticket for the user. The
// promo budget decrement, ticket insert and waitlist link all commit or roll
// back together. Rank is the waitlist size for the type after this insertion,
// counting waitlisted tickets that were later served.
func JoinWaitlist(ticketTypeID uint, userID uint, promoCode *string) (*WaitlistResult, error) {
	var result WaitlistResult
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var tt models.TicketType
		if err := tx.
			Where(&models.TicketType{ID: ticketTypeID}).
			Preload("Event").
			First(&tt).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketTypeNotFound
			}
			return err
		}

		var promoID *uint
		var finalPrice *float64
		if promoCode != nil && *promoCode != "" {
			promo, err := ApplyPromo(tx, *promoCode, &tt, time.Now())
			if err != nil {
				return err
			}
			discounted := utils.ApplyDiscount(tt.Price, promo.DiscountType, promo.Amount)
			promoID = &promo.ID
			finalPrice = &discounted
		}

		ticket := models.Ticket{
			TicketTypeID: tt.ID,
			Code:         utils.GenerateTicketCode(),
			Waitlisted:   true,
		}
		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}
		entry := models.WaitlistedTicket{
			TicketID:        ticket.ID,
			UserID:          userID,
			PromoCodeID:     promoID,
			DiscountedPrice: finalPrice,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		var rank int64
		if err := tx.
			Model(&models.Ticket{}).
			Where("ticket_type_id = ? AND waitlisted = ?", tt.ID, true).
			Count(&rank).
			Error; err != nil {
			return err
		}
		result = WaitlistResult{
			WaitlistID: entry.ID,
			TicketID:   ticket.ID,
			Rank:       rank,
			FinalPrice: finalPrice,
			TicketType: tt,
			Event:      tt.Event,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UserWaitlistEntries lists a user's waitlist memberships with their
// point-in-time rank, oldest first. Entries whose ticket, type or event has
// been deleted are dropped by the join conditions.
func UserWaitlistEntries(userID uint) ([]types.WaitlistEntry, error) {
	db := db.GetDb()
	entries := []types.WaitlistEntry{}
	err := db.
		Model(&models.WaitlistedTicket{}).
		Select(`waitlisted_tickets.id AS waitlist_id,
			waitlisted_tickets.created_at AS waitlist_at,
			events.id AS event_id,
			events.name AS event_name,
			ticket_types.id AS ticket_type_id,
			ticket_types.name AS ticket_type_name,
			ticket_types.price,
			tickets.purchased,
			tickets.id AS ticket_id,
			(SELECT COUNT(*) FROM tickets t2
				WHERE t2.ticket_type_id = ticket_types.id
				AND t2.waitlisted = true
				AND t2.id <= tickets.id
				AND t2.deleted_at IS NULL) AS waitlist_rank`).
		Joins("JOIN tickets ON tickets.id = waitlisted_tickets.ticket_id AND tickets.deleted_at IS NULL").
		Joins("JOIN ticket_types ON ticket_types.id = tickets.ticket_type_id AND ticket_types.deleted_at IS NULL").
		Joins("JOIN events ON events.id = ticket_types.event_id AND events.deleted_at IS NULL").
		Where("waitlisted_tickets.user_id = ?", userID).
		Order("waitlisted_tickets.created_at asc").
		Scan(&entries).
		Error
	if err != nil {
		log.Printf("Error retrieving waitlist entries for user %d: %s\n", userID, err.Error())
		return nil, err
	}
	return entries, nil
}

// RemainingTickets reports how many tickets of the original pool are still
// unsold.
func RemainingTickets(ticketTypeID uint) (int64, error) {
	db := db.GetDb()
	var remaining int64
	err := db.
		Model(&models.Ticket{}).
		Where("ticket_type_id = ? AND purchased = ? AND waitlisted = ?", ticketTypeID, false, false).
		Count(&remaining).
		Error
	return remaining, err
}
