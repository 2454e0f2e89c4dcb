package common

import (
	"etix/src/models"
	"etix/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testPromo() *models.PromoCode {
	return &models.PromoCode{
		ID:           1,
		EventID:      10,
		Code:         "EARLYBIRD",
		DiscountType: types.DISCOUNT_PERCENTAGE,
		Amount:       10,
		StartDate:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC),
		MaxUsage:     5,
		UsageCount:   0,
	}
}

func TestCheckPromoApplicable(t *testing.T) {
	promo := testPromo()
	tt := &models.TicketType{ID: 3, EventID: 10}
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, CheckPromo(promo, tt, now))
}

func TestCheckPromoWindowBoundsAreInclusive(t *testing.T) {
	promo := testPromo()
	tt := &models.TicketType{ID: 3, EventID: 10}

	assert.Nil(t, CheckPromo(promo, tt, promo.StartDate))
	assert.Nil(t, CheckPromo(promo, tt, promo.EndDate))

	perr := CheckPromo(promo, tt, promo.StartDate.Add(-time.Second))
	assert.NotNil(t, perr)
	assert.Equal(t, PromoOutsideWindow, perr.Reason)

	perr = CheckPromo(promo, tt, promo.EndDate.Add(time.Second))
	assert.NotNil(t, perr)
	assert.Equal(t, PromoOutsideWindow, perr.Reason)
}

func TestCheckPromoScope(t *testing.T) {
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)

	promo := testPromo()
	otherEvent := &models.TicketType{ID: 3, EventID: 99}
	perr := CheckPromo(promo, otherEvent, now)
	assert.NotNil(t, perr)
	assert.Equal(t, PromoScopeMismatch, perr.Reason)

	narrowed := testPromo()
	target := uint(7)
	narrowed.TicketTypeID = &target

	matching := &models.TicketType{ID: 7, EventID: 10}
	assert.Nil(t, CheckPromo(narrowed, matching, now))

	sibling := &models.TicketType{ID: 3, EventID: 10}
	perr = CheckPromo(narrowed, sibling, now)
	assert.NotNil(t, perr)
	assert.Equal(t, PromoScopeMismatch, perr.Reason)
}

func TestCheckPromoBudget(t *testing.T) {
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	tt := &models.TicketType{ID: 3, EventID: 10}

	promo := testPromo()
	promo.UsageCount = promo.MaxUsage
	perr := CheckPromo(promo, tt, now)
	assert.NotNil(t, perr)
	assert.Equal(t, PromoBudgetExhausted, perr.Reason)

	promo.UsageCount = promo.MaxUsage - 1
	assert.Nil(t, CheckPromo(promo, tt, now))
}

func TestPromoErrorTagging(t *testing.T) {
	err := error(&PromoError{Code: "EARLYBIRD", Reason: PromoNotFound})
	assert.True(t, IsPromoError(err))
	assert.Contains(t, err.Error(), "EARLYBIRD")

	assert.False(t, IsPromoError(ErrNoTicketAvailable))
}
