package main

import (
	"errors"
	"etix/src/common"
	"etix/src/config"
	"etix/src/db"
	"etix/src/middlewares"
	"etix/src/models"
	"etix/src/types"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ownedEvent loads the event only when the authenticated organizer owns it.
func ownedEvent(ctx *gin.Context, eventID uint) (*models.Event, bool) {
	organizerID := ctx.GetUint("id")
	var event models.Event
	db := db.GetDb()
	if err := db.
		Where(&models.Event{ID: eventID, OrganizerID: organizerID}).
		First(&event).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		} else {
			log.Printf("[ownedEvent] error: %s\n", err.Error())
			ctx.Status(http.StatusInternalServerError)
		}
		return nil, false
	}
	return &event, true
}

func publicEventRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	events := apiv1.Group("/events")
	events.
		GET("", func(ctx *gin.Context) {
			var events []models.Event
			db := db.GetDb()
			if err := db.
				Where("status = ?", types.EVENT_UPCOMING).
				Order("starts_at").
				Find(&events).
				Error; err != nil {
				log.Printf("[ListEvents] error: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events})
		}).
		GET("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var event models.Event
			db := db.GetDb()
			if err := db.
				Preload("TicketTypes").
				First(&event, params.ID).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		}).
		GET("/:id/ticket-types", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var ticketTypes []models.TicketType
			db := db.GetDb()
			if err := db.
				Where(&models.TicketType{EventID: params.ID}).
				Find(&ticketTypes).
				Error; err != nil {
				log.Printf("[ListTicketTypes] error: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			data := make([]gin.H, 0, len(ticketTypes))
			for _, tt := range ticketTypes {
				remaining, err := common.RemainingTickets(tt.ID)
				if err != nil {
					log.Printf("[ListTicketTypes] error counting remaining: %s\n", err.Error())
					ctx.Status(http.StatusInternalServerError)
					return
				}
				data = append(data, gin.H{
					"id":        tt.ID,
					"name":      tt.Name,
					"price":     tt.Price,
					"quantity":  tt.Quantity,
					"remaining": remaining,
				})
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data})
		})
	return events
}

func organizerEventRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	events := apiv1.Group("/events", middlewares.AuthMiddleware, middlewares.RequireRole(types.ROLE_ORGANIZER))
	events.
		POST("", func(ctx *gin.Context) {
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			organizerID := ctx.GetUint("id")
			id, err := common.CreateNewEvent(&body, organizerID)
			if err != nil {
				log.Printf("[CreateEvent] error: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": id})
		}).
		GET("/owned", func(ctx *gin.Context) {
			organizerID := ctx.GetUint("id")
			var events []models.Event
			db := db.GetDb()
			if err := db.
				Where(&models.Event{OrganizerID: organizerID}).
				Order("starts_at").
				Find(&events).
				Error; err != nil {
				log.Printf("[OwnedEvents] error: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events})
		}).
		PATCH("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			event, ok := ownedEvent(ctx, params.ID)
			if !ok {
				return
			}
			updates := map[string]any{}
			if body.Name != nil {
				updates["name"] = *body.Name
			}
			if body.Location != nil {
				updates["location"] = *body.Location
			}
			if body.StartsAt != nil {
				startsAt, err := time.Parse(config.TIME_PARSE_FORMAT, *body.StartsAt)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				updates["starts_at"] = startsAt
			}
			if body.EndsAt != nil {
				endsAt, err := time.Parse(config.TIME_PARSE_FORMAT, *body.EndsAt)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				updates["ends_at"] = endsAt
			}
			if len(updates) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
				return
			}
			db := db.GetDb()
			if err := db.
				Model(event).
				Updates(updates).
				Error; err != nil {
				log.Printf("[UpdateEvent] error: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		}).
		POST("/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			event, ok := ownedEvent(ctx, params.ID)
			if !ok {
				return
			}
			if event.Status != types.EVENT_UPCOMING {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "only upcoming events can be cancelled"})
				return
			}
			db := db.GetDb()
			if err := db.
				Model(event).
				Update("status", types.EVENT_CANCELLED).
				Error; err != nil {
				log.Printf("[CancelEvent] error: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		}).
		POST("/:id/archive", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			event, ok := ownedEvent(ctx, params.ID)
			if !ok {
				return
			}
			if event.Status != types.EVENT_ENDED && event.Status != types.EVENT_CANCELLED {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "only ended or cancelled events can be archived"})
				return
			}
			db := db.GetDb()
			if err := db.
				Model(event).
				Update("status", types.EVENT_ARCHIVED).
				Error; err != nil {
				log.Printf("[ArchiveEvent] error: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		}).
		DELETE("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			event, ok := ownedEvent(ctx, params.ID)
			if !ok {
				return
			}
			if err := common.DeleteEvent(event.ID); err != nil {
				if errors.Is(err, common.ErrHasSoldTickets) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				log.Printf("[DeleteEvent] error: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/:id/report", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			event, ok := ownedEvent(ctx, params.ID)
			if !ok {
				return
			}
			report, err := common.EventReport(event.ID)
			if err != nil {
				log.Printf("[EventReport] error: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": report})
		})
	return events
}
