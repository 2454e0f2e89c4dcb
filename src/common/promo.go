package common

import (
	"errors"
	"etix/src/models"
	"log"
	"time"

	"gorm.io/gorm"
)

// CheckPromo applies the scope, window and budget rules to an already-loaded
// promo against a target ticket type. Returns nil when the promo is
// applicable at now.
func CheckPromo(promo *models.PromoCode, tt *models.TicketType, now time.Time) *PromoError {
	if promo.EventID != tt.EventID {
		return &PromoError{Code: promo.Code, Reason: PromoScopeMismatch}
	}
	if promo.TicketTypeID != nil && *promo.TicketTypeID != tt.ID {
		return &PromoError{Code: promo.Code, Reason: PromoScopeMismatch}
	}
	// window bounds are inclusive
	if now.Before(promo.StartDate) || now.After(promo.EndDate) {
		return &PromoError{Code: promo.Code, Reason: PromoOutsideWindow}
	}
	if promo.UsageCount >= promo.MaxUsage {
		return &PromoError{Code: promo.Code, Reason: PromoBudgetExhausted}
	}
	return nil
}

// ValidatePromo resolves a code for the ticket type's event and checks it.
// Code matching is exact, as stored. A promo narrowed to a different ticket
// type of the same event is a scope mismatch, not a miss.
func ValidatePromo(tx *gorm.DB, code string, tt *models.TicketType, now time.Time) (*models.PromoCode, error) {
	var promos []models.PromoCode
	if err := tx.
		Model(&models.PromoCode{}).
		Where(&models.PromoCode{Code: code, EventID: tt.EventID}).
		Find(&promos).
		Error; err != nil {
		return nil, err
	}
	if len(promos) == 0 {
		return nil, &PromoError{Code: code, Reason: PromoNotFound}
	}
	var lastErr *PromoError
	for i := range promos {
		promo := &promos[i]
		if perr := CheckPromo(promo, tt, now); perr != nil {
			lastErr = perr
			continue
		}
		return promo, nil
	}
	return nil, lastErr
}

// ConsumePromoBudget is the single write that keeps usage_count below
// max_usage under concurrent redemptions: the increment only lands while
// budget remains, and zero affected rows means another request beat us to the
// last slot.
func ConsumePromoBudget(tx *gorm.DB, promo *models.PromoCode) error {
	res := tx.
		Model(&models.PromoCode{}).
		Where("id = ? AND usage_count < max_usage", promo.ID).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &PromoError{Code: promo.Code, Reason: PromoBudgetExhausted}
	}
	return nil
}

// ApplyPromo validates and consumes one use of a code inside the caller's
// transaction, returning the matched promo.
func ApplyPromo(tx *gorm.DB, code string, tt *models.TicketType, now time.Time) (*models.PromoCode, error) {
	promo, err := ValidatePromo(tx, code, tt, now)
	if err != nil {
		var pe *PromoError
		if errors.As(err, &pe) {
			log.Printf("Rejected promo [%s] for ticket type %d: %s\n", code, tt.ID, pe.Reason)
		}
		return nil, err
	}
	if err := ConsumePromoBudget(tx, promo); err != nil {
		return nil, err
	}
	return promo, nil
}
