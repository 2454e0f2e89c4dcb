package main

import (
	"context"
	"errors"
	"etix/src/common"
	"etix/src/db"
	"etix/src/lib"
	awslib "etix/src/lib/aws"
	"etix/src/lib/mailer"
	"etix/src/middlewares"
	"etix/src/models"
	"etix/src/types"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeqown/go-qrcode"
)

// allocationFailure maps purchase and waitlist errors onto responses. Domain
// rejections surface as 400; promo rejections collapse to one message with
// the reason kept in the log; anything else is a persistence failure the
// caller gets no detail about.
func allocationFailure(ctx *gin.Context, op string, err error) {
	log.Printf("[%s] error: %s\n", op, err.Error())
	switch {
	case errors.Is(err, common.ErrTicketTypeNotFound), errors.Is(err, common.ErrNoTicketAvailable):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case common.IsPromoError(err):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid promo code"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
}

func ticketRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	tickets := apiv1.Group("/tickets", middlewares.AuthMiddleware)
	tickets.
		POST("/purchase", func(ctx *gin.Context) {
			var body types.PurchaseTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userID := ctx.GetUint("id")
			result, err := common.PurchaseTicket(body.TicketTypeID, userID)
			if err != nil {
				allocationFailure(ctx, "PurchaseTicket", err)
				return
			}
			lib.Broadcast("ticketPurchased", map[string]any{
				"ticketTypeId": body.TicketTypeID,
				"ticketId":     result.TicketID,
			})
			email := ctx.GetString("email")
			name := ctx.GetString("name")
			go mailer.SendPurchaseConfirmation(email, name, result.Event.Name, result.TicketType.Name, result.TicketCode)
			ctx.JSON(http.StatusOK, gin.H{
				"message":   "Purchase successful",
				"remaining": result.Remaining,
			})
		}).
		POST("/waitlist", func(ctx *gin.Context) {
			var body types.JoinWaitlistRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userID := ctx.GetUint("id")
			result, err := common.JoinWaitlist(body.TicketTypeID, userID, body.PromoCode)
			if err != nil {
				allocationFailure(ctx, "JoinWaitlist", err)
				return
			}
			lib.Broadcast("ticketWaitlisted", map[string]any{
				"ticketTypeId": body.TicketTypeID,
				"ticketId":     result.TicketID,
			})
			email := ctx.GetString("email")
			name := ctx.GetString("name")
			go mailer.SendWaitlistConfirmation(email, name, result.Event.Name, result.TicketType.Name, uint(result.Rank))
			ctx.JSON(http.StatusOK, gin.H{
				"message":      "Waitlist successful",
				"waitlistRank": result.Rank,
				"waitlistId":   result.WaitlistID,
			})
		}).
		GET("/owned", func(ctx *gin.Context) {
			userID := ctx.GetUint("id")
			var purchases []models.PurchasedTicket
			db := db.GetDb()
			if err := db.
				Where(&models.PurchasedTicket{UserID: userID}).
				Preload("Ticket").
				Preload("Ticket.TicketType").
				Preload("Ticket.TicketType.Event").
				Order("id").
				Find(&purchases).
				Error; err != nil {
				log.Printf("[OwnedTickets] error: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": purchases})
		}).
		POST("/:id/download/code", func(ctx *gin.Context) {
			var query struct {
				ShareLink bool `form:"share_link"`
			}
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				log.Printf("Error in validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userID := ctx.GetUint("id")
			var purchase models.PurchasedTicket
			db := db.GetDb()
			if err := db.
				Where(&models.PurchasedTicket{TicketID: params.ID, UserID: userID}).
				Preload("Ticket").
				Preload("Ticket.TicketType").
				Preload("Ticket.TicketType.Event").
				First(&purchase).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
				return
			}
			ticket := purchase.Ticket
			if ticket.TicketType.Event.Status != types.EVENT_UPCOMING {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "ticket is no longer valid"})
				return
			}

			filename := fmt.Sprintf("ticketcode_%d", ticket.ID)
			log.Printf("Download eticket for %s\n", filename)
			rd := lib.GetRedisClient()
			content, err := rd.Get(context.Background(), filename).Result()
			if err != nil {
				if errors.Is(redis.Nil, err) {
					log.Printf("No value for key: %s\n", filename)
				} else {
					log.Printf("Error reading from cache: %s\n", err.Error())
					ctx.Status(http.StatusBadRequest)
					return
				}
			}
			wd, err := os.Getwd()
			if err != nil {
				log.Printf("Could not read working directory: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			tempdir := os.Getenv("TEMP_DIR")
			filepath := path.Join(wd, "..", tempdir, fmt.Sprintf("%s.jpeg", filename))
			if content != "" {
				if query.ShareLink {
					ctx.JSON(http.StatusOK, gin.H{"url": content})
					return
				}
				if err := awslib.S3DownloadAsset(filename, filepath); err != nil {
					log.Printf("Error downloading asset [%s] from S3 bucket: %s\n", filename, err.Error())
					ctx.Status(http.StatusBadRequest)
					return
				}
				ctx.FileAttachment(filepath, "eticket.jpeg")
				return
			}

			encryptedMessage, err := common.EncodeTicketQR(ticket.ID, ticket.Code)
			if err != nil {
				log.Printf("Error encrypting message: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			qrc, err := qrcode.New(encryptedMessage)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err = qrc.Save(filepath); err != nil {
				log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			apiEnv := os.Getenv("API_ENV")
			if apiEnv != "" && apiEnv != string(types.Local) {
				url, err := awslib.S3UploadAsset(filename, filepath)
				if err != nil {
					log.Printf("Error uploading asset to S3 bucket: %s\n", err.Error())
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				rd.SetEx(context.Background(), filename, *url, 2*time.Hour)
			}
			ctx.FileAttachment(filepath, "eticket.jpeg")
		})

	waitlist := apiv1.Group("/waitlist", middlewares.AuthMiddleware)
	waitlist.
		GET("", func(ctx *gin.Context) {
			userID := ctx.GetUint("id")
			entries, err := common.UserWaitlistEntries(userID)
			if err != nil {
				log.Printf("[WaitlistEntries] error: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entries})
		})
	return tickets
}
