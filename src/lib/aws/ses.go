package aws

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

func GetSESClient() *ses.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return nil
	}
	svc := ses.NewFromConfig(cfg)
	return svc
}

// SESSendMessage delivers one email. The error comes back to the caller so
// the queue consumer can report per-message failures.
func SESSendMessage(from *string, destination *types.Destination, message *types.Message) error {
	c := GetSESClient()
	out, err := c.SendEmail(context.TODO(), &ses.SendEmailInput{
		Destination: destination,
		Source:      from,
		Message:     message,
	})
	if err != nil {
		return err
	}
	log.Printf("Sent email with id: %s\n", *out.MessageId)
	return nil
}
