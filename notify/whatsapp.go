// Package notify delivers the patient-facing care summary over WhatsApp
// using the Twilio messaging API.
package notify

import (
	"fmt"
	"log"
	"strings"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// WhatsAppNotifier sends WhatsApp messages through a Twilio sender number.
type WhatsAppNotifier struct {
	client *twilio.RestClient
	from   string
}

// NewWhatsAppNotifier builds a notifier from Twilio credentials and the
// WhatsApp-enabled sender number.
func NewWhatsAppNotifier(accountSID, authToken, from string) *WhatsAppNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &WhatsAppNotifier{client: client, from: from}
}

// Send delivers body to the given number over WhatsApp and returns the
// Twilio message SID.
func (n *WhatsAppNotifier) Send(to, body string) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetFrom(whatsappAddr(n.from))
	params.SetTo(whatsappAddr(to))
	params.SetBody(body)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio send failed: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	log.Printf("notify: whatsapp message %s sent", sid)
	return sid, nil
}

// whatsappAddr prefixes a phone number with the whatsapp: scheme Twilio
// expects, leaving already-prefixed addresses alone.
func whatsappAddr(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
