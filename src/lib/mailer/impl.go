package mailer

import (
	"log"
	"os"
	"vrbs/src/lib"
)

// NewMailerMessage logs every outgoing message and only dials SMTP when a
// host is configured. Guest-facing emails are informational, so a failed
// or skipped send never fails the calling request.
func NewMailerMessage(input *lib.SendMailInput) error {
	log.Printf("[mailer] to=%v subject=%q body=%q\n", input.To, input.Subject, input.Body)
	if os.Getenv("SMTP_HOST") == "" {
		return nil
	}
	if err := lib.SendMail(input); err != nil {
		log.Printf("[mailer] Error sending mail to %v: %s\n", input.To, err.Error())
		return err
	}
	return nil
}
