package main

import (
	"etix/src/config"
	"etix/src/db"
	"etix/src/middlewares"
	"etix/src/models"
	"etix/src/types"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func promoRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	promos := apiv1.Group("/promos", middlewares.AuthMiddleware, middlewares.RequireRole(types.ROLE_ORGANIZER))
	promos.
		POST("", func(ctx *gin.Context) {
			var body types.CreatePromoCodeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if _, ok := ownedEvent(ctx, body.EventID); !ok {
				return
			}
			startDate, err := time.Parse(config.TIME_PARSE_FORMAT, body.StartDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			endDate, err := time.Parse(config.TIME_PARSE_FORMAT, body.EndDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if !endDate.After(startDate) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be after start_date"})
				return
			}
			db := db.GetDb()
			if body.TicketTypeID != nil {
				var count int64
				if err := db.
					Model(&models.TicketType{}).
					Where(&models.TicketType{ID: *body.TicketTypeID, EventID: body.EventID}).
					Count(&count).
					Error; err != nil || count == 0 {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "ticket type does not belong to event"})
					return
				}
			}
			promo := models.PromoCode{
				EventID:      body.EventID,
				TicketTypeID: body.TicketTypeID,
				Code:         body.Code,
				DiscountType: types.DiscountType(body.DiscountType),
				Amount:       body.Amount,
				StartDate:    startDate,
				EndDate:      endDate,
				MaxUsage:     body.MaxUsage,
			}
			if err := db.Create(&promo).Error; err != nil {
				log.Printf("[CreatePromo] error: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": promo.ID})
		}).
		DELETE("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var promo models.PromoCode
			db := db.GetDb()
			if err := db.First(&promo, params.ID).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "promo code not found"})
				return
			}
			if _, ok := ownedEvent(ctx, promo.EventID); !ok {
				return
			}
			if err := db.Delete(&promo).Error; err != nil {
				log.Printf("[DeletePromo] error: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.Status(http.StatusNoContent)
		})

	eventPromos := apiv1.Group("/events", middlewares.AuthMiddleware, middlewares.RequireRole(types.ROLE_ORGANIZER))
	eventPromos.
		GET("/:id/promos", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if _, ok := ownedEvent(ctx, params.ID); !ok {
				return
			}
			var promos []models.PromoCode
			db := db.GetDb()
			if err := db.
				Where(&models.PromoCode{EventID: params.ID}).
				Order("id").
				Find(&promos).
				Error; err != nil {
				log.Printf("[ListPromos] error: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": promos})
		})
	return promos
}
