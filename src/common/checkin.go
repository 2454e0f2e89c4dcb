package common

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"etix/src/db"
	"etix/src/models"
	"etix/src/types"
	"etix/src/utils"
	"log"
	"os"

	"gorm.io/gorm"
)

// QRPayload is what gets encrypted into a ticket's QR image.
type QRPayload struct {
	TicketID uint   `json:"ticketId"`
	Code     string `json:"code"`
}

func EncodeTicketQR(ticketID uint, code string) (string, error) {
	keyEnv := os.Getenv("API_QRC_SECRET")
	key, err := hex.DecodeString(keyEnv)
	if err != nil {
		log.Printf("Could not read key from string: %s\n", err.Error())
		return "", err
	}
	raw, err := json.Marshal(QRPayload{TicketID: ticketID, Code: code})
	if err != nil {
		return "", err
	}
	return utils.EncryptMessage(key, string(raw))
}

func DecodeTicketQR(encrypted string) (*QRPayload, error) {
	keyEnv := os.Getenv("API_QRC_SECRET")
	key, err := hex.DecodeString(keyEnv)
	if err != nil {
		log.Printf("Could not read key from string: %s\n", err.Error())
		return nil, err
	}
	message, err := utils.DecryptMessage(key, encrypted)
	if err != nil {
		return nil, err
	}
	var payload QRPayload
	if err := json.Unmarshal([]byte(*message), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CheckInTicket admits one purchased ticket exactly once. The check-in record
// and the ticket flag commit together.
func CheckInTicket(encryptedCode string, staffID uint) (uint, error) {
	payload, err := DecodeTicketQR(encryptedCode)
	if err != nil {
		log.Printf("Error decrypting check-in code: %s\n", err.Error())
		return 0, err
	}
	var checkInID uint
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := tx.
			Where(&models.Ticket{ID: payload.TicketID, Code: payload.Code}).
			Preload("TicketType").
			Preload("TicketType.Event").
			First(&ticket).
			Error; err != nil {
			return err
		}
		if !ticket.Purchased {
			return ErrTicketNotPurchased
		}
		status := ticket.TicketType.Event.Status
		if status == types.EVENT_CANCELLED || status == types.EVENT_ARCHIVED {
			return errors.New("ticket admissions are not accepted")
		}
		checkIn := models.CheckIn{
			TicketID: ticket.ID,
			By:       staffID,
		}
		if err := tx.
			Where(models.CheckIn{TicketID: ticket.ID}).
			FirstOrInit(&checkIn).
			Error; err != nil {
			return err
		}
		if checkIn.ID > 0 {
			return ErrAlreadyCheckedIn
		}
		if err := tx.Create(&checkIn).Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Ticket{}).
			Where("id = ?", ticket.ID).
			Update("checked_in", true).
			Error; err != nil {
			return err
		}
		checkInID = checkIn.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return checkInID, nil
}
