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

func checkInRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	checkIns := apiv1.Group("/check-ins", middlewares.AuthMiddleware, middlewares.RequireRole(types.ROLE_STAFF, types.ROLE_ORGANIZER))
	checkIns.
		POST("", func(ctx *gin.Context) {
			var body types.CheckInRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			staffID := ctx.GetUint("id")
			id, err := common.CheckInTicket(body.Code, staffID)
			if err != nil {
				log.Printf("[CheckIn] error: %s\n", err.Error())
				status := http.StatusBadRequest
				if errors.Is(err, common.ErrAlreadyCheckedIn) {
					status = http.StatusConflict
				}
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": id})
		}).
		GET("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var checkIn models.CheckIn
			db := db.GetDb()
			if err := db.
				Preload("Ticket").
				Preload("Ticket.TicketType").
				First(&checkIn, params.ID).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "check-in not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": checkIn})
		})
	return checkIns
}
