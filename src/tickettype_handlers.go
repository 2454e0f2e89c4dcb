package main

import (
	"errors"
	"etix/src/common"
	"etix/src/db"
	"etix/src/middlewares"
	"etix/src/models"
	"etix/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func ticketTypeRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	ticketTypes := apiv1.Group("/ticket-types")
	ticketTypes.
		GET("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var tt models.TicketType
			db := db.GetDb()
			if err := db.
				Preload("Event").
				First(&tt, params.ID).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "ticket type not found"})
				return
			}
			remaining, err := common.RemainingTickets(tt.ID)
			if err != nil {
				log.Printf("[GetTicketType] error counting remaining: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"id":        tt.ID,
				"event_id":  tt.EventID,
				"name":      tt.Name,
				"price":     tt.Price,
				"quantity":  tt.Quantity,
				"remaining": remaining,
			}})
		})

	organizer := apiv1.Group("/ticket-types", middlewares.AuthMiddleware, middlewares.RequireRole(types.ROLE_ORGANIZER))
	organizer.
		POST("", func(ctx *gin.Context) {
			var body types.CreateTicketTypeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if _, ok := ownedEvent(ctx, body.EventID); !ok {
				return
			}
			id, err := common.CreateTicketType(body.EventID, body.Name, body.Price, body.Quantity)
			if err != nil {
				status := http.StatusInternalServerError
				switch {
				case errors.Is(err, common.ErrEventNotFound):
					status = http.StatusNotFound
				case errors.Is(err, common.ErrDuplicateName):
					status = http.StatusConflict
				}
				log.Printf("[CreateTicketType] error: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": id})
		}).
		DELETE("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var tt models.TicketType
			db := db.GetDb()
			if err := db.First(&tt, params.ID).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "ticket type not found"})
				return
			}
			if _, ok := ownedEvent(ctx, tt.EventID); !ok {
				return
			}
			if err := common.DeleteTicketType(tt.ID); err != nil {
				if errors.Is(err, common.ErrHasSoldTickets) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				log.Printf("[DeleteTicketType] error: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return ticketTypes
}
