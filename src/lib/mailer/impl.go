package mailer

import (
	"encoding/json"
	"etix/src/config"
	"etix/src/lib"
	awslib "etix/src/lib/aws"
	"etix/src/types"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// NewMailerMessage queues an email for delivery. Local environments send
// directly over SMTP; deployed ones push onto the email queue consumed by
// StartEmailConsumer.
func NewMailerMessage(input *lib.SendMailInput) error {
	if config.API_ENV == string(types.Local) || config.API_ENV == "" {
		return lib.SendMail(input)
	}
	emailQueue := os.Getenv("EMAIL_QUEUE")
	emailBody := &types.JSONB{
		"from":      input.From,
		"from-name": input.FromName,
		"to":        input.To,
		"reply-to":  input.ReplyTo,
		"body":      input.Body,
		"html":      input.Html,
		"subject":   input.Subject,
	}
	body, err := json.Marshal(&emailBody)
	if err != nil {
		return err
	}
	if err := lib.SQSProduceMessage(emailQueue, string(body)); err != nil {
		return fmt.Errorf("error sending message to queue: %s", err.Error())
	}
	return nil
}

// StartEmailConsumer drains the email queue and delivers through SES.
func StartEmailConsumer() {
	emailQueue := os.Getenv("EMAIL_QUEUE")
	if emailQueue == "" {
		log.Println("[mailer] EMAIL_QUEUE not set; consumer disabled")
		return
	}
	c := awslib.NewSQSConsumer(emailQueue, func(body string) {
		var payload types.JSONB
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			log.Printf("[mailer] Error deserializing message: %s\n", err.Error())
			return
		}
		from, _ := payload["from"].(string)
		subject, _ := payload["subject"].(string)
		text, _ := payload["body"].(string)
		tos := []string{}
		if rawTos, ok := payload["to"].([]any); ok {
			for _, t := range rawTos {
				if s, ok := t.(string); ok {
					tos = append(tos, s)
				}
			}
		}
		if len(tos) == 0 {
			log.Println("[mailer] Message with no recipients. Skipping")
			return
		}
		err := awslib.SESSendMessage(aws.String(from), &sestypes.Destination{
			ToAddresses: tos,
		}, &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(text)},
			},
		})
		if err != nil {
			log.Printf("[mailer] Error delivering %q to %v: %s\n", subject, tos, err.Error())
		}
	})
	c.Listen()
}

// SendWaitlistConfirmation is best-effort; callers run it in a goroutine and
// a failed send is only logged.
func SendWaitlistConfirmation(to string, name string, eventName string, ticketTypeName string, rank uint) {
	sender := os.Getenv("EMAIL_SENDER")
	body := fmt.Sprintf(
		"Hi %s,\n\nYou joined the waitlist for %s (%s). Your position is #%d. We will let you know when a ticket frees up.\n",
		name, eventName, ticketTypeName, rank,
	)
	if err := NewMailerMessage(&lib.SendMailInput{
		From:     sender,
		FromName: "etix",
		To:       []string{to},
		Subject:  fmt.Sprintf("You're on the waitlist for %s", eventName),
		Body:     body,
	}); err != nil {
		log.Printf("Error sending waitlist confirmation to %s: %s\n", to, err.Error())
	}
}

func SendPurchaseConfirmation(to string, name string, eventName string, ticketTypeName string, code string) {
	sender := os.Getenv("EMAIL_SENDER")
	body := fmt.Sprintf(
		"Hi %s,\n\nYour ticket for %s (%s) is confirmed. Ticket code: %s.\n",
		name, eventName, ticketTypeName, code,
	)
	if err := NewMailerMessage(&lib.SendMailInput{
		From:     sender,
		FromName: "etix",
		To:       []string{to},
		Subject:  fmt.Sprintf("Your ticket for %s", eventName),
		Body:     body,
	}); err != nil {
		log.Printf("Error sending purchase confirmation to %s: %s\n", to, err.Error())
	}
}
