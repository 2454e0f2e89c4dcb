package common

import (
	"encoding/json"
	"errors"
	"etix/src/config"
	"etix/src/db"
	"etix/src/lib"
	"etix/src/models"
	"etix/src/types"
	"etix/src/utils"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateNewEvent persists the event and schedules the job that flips it to
// ended once its end time passes.
func CreateNewEvent(params *types.CreateEventRequestBody, organizerID uint) (uint, error) {
	startsAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.StartsAt)
	if err != nil {
		log.Printf("Error parsing starts_at: %s\n", err.Error())
		return 0, err
	}
	endsAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.EndsAt)
	if err != nil {
		log.Printf("Error parsing ends_at: %s\n", err.Error())
		return 0, err
	}
	if !startsAt.Before(endsAt) {
		return 0, errors.New("event must start before it ends")
	}

	event := models.Event{
		Name:        params.Name,
		Slug:        utils.EventSlug(params.Name, startsAt),
		Location:    params.Location,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Status:      types.EVENT_UPCOMING,
		OrganizerID: organizerID,
	}

	db := db.GetDb()
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&event).Error
	}); err != nil {
		return 0, err
	}

	// Schedule the end-of-event transition
	go func() {
		jobTaskID := uuid.New()
		payloadId := jobTaskID.String()
		jobTask := models.JobTask{
			Name:      fmt.Sprintf("Event_%d_EndsAt", event.ID),
			JobType:   "OneTimeJobStartDateTime",
			RunsAt:    event.EndsAt.UTC(),
			PayloadID: payloadId,
			Payload: types.JSONB{
				"payloadId": payloadId,
				"id":        int64(event.ID),
				"table":     "events",
			},
			Source: "Events",
			Topic:  "events-ended",
		}
		id, err := jobTask.CreateAndEnqueueJobTask(jobTask)
		if err != nil {
			log.Printf("Error creating job for Event: id=%d error=%s\n", event.ID, err.Error())
			return
		}
		log.Printf("Created job for Event[%d] with ID %s\n", event.ID, id)
	}()

	return event.ID, nil
}

// MarkEventEnded transitions an upcoming event to ended. Cancelled and
// archived events are left alone.
func MarkEventEnded(eventID uint) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.
			Model(&models.Event{}).
			Where("id = ? AND status = ?", eventID, types.EVENT_UPCOMING).
			Update("status", types.EVENT_ENDED).
			Error
	})
}

// EventsEndedConsumer applies end-of-event messages produced by the
// scheduler, then settles the originating job record.
func EventsEndedConsumer() {
	lib.KafkaConsumeTopic("etix-lifecycle", "events-ended", HandleEventEndedMessage)
}

// HandleEventEndedMessage applies one end-of-event message regardless of the
// transport it arrived on.
func HandleEventEndedMessage(value []byte) {
	var payload types.JSONB
	if err := json.Unmarshal(value, &payload); err != nil {
		log.Printf("[events-ended] Error deserializing message: %s\n", err.Error())
		return
	}
	rawId, ok := payload["id"].(float64)
	if !ok {
		log.Println("[events-ended] Message without event id. Skipping")
		return
	}
	eventID := uint(rawId)
	if err := MarkEventEnded(eventID); err != nil {
		log.Printf("Error updating event status: %s\n", err.Error())
		return
	}
	payloadId, _ := payload["payloadId"].(string)
	if payloadId == "" {
		return
	}
	db := db.GetDb()
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.
			Model(&models.JobTask{}).
			Where(&models.JobTask{PayloadID: payloadId}).
			Update("status", "done").
			Error
	}); err != nil {
		log.Printf("Error updating job status: %s\n", err.Error())
	}
}

// SweepEndedEvents is the safety net behind the per-event schedules: any
// upcoming event whose end time already passed gets flipped in bulk.
func SweepEndedEvents() {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Event{}).
			Where("status = ? AND ends_at < ?", types.EVENT_UPCOMING, time.Now()).
			Update("status", types.EVENT_ENDED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Printf("Marked %d events as ended\n", res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		log.Printf("Error while sweeping ended events: %s\n", err.Error())
	}
}
