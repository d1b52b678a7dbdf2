package sms

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// NotificationGateway sends a message to a list of phone numbers. Backends are
// swappable; callers never depend on a concrete provider.
type NotificationGateway interface {
	Send(recipients []string, message string) error
}

// GatewayFromEnv picks the configured backend (SMS_PROVIDER=twilio selects
// Twilio, anything else selects Africa's Talking)
func GatewayFromEnv() NotificationGateway {
	if os.Getenv("SMS_PROVIDER") == "twilio" {
		return NewTwilioGateway()
	}
	return NewAfricasTalkingGateway()
}

// AfricasTalkingGateway sends SMS through the Africa's Talking messaging API
type AfricasTalkingGateway struct {
	apiKey   string
	username string
	baseURL  string
}

// NewAfricasTalkingGateway creates a gateway from environment credentials
func NewAfricasTalkingGateway() *AfricasTalkingGateway {
	username := os.Getenv("AFRICASTALKING_USERNAME")
	if username == "" {
		username = "sandbox"
	}
	return &AfricasTalkingGateway{
		apiKey:   os.Getenv("AFRICASTALKING_API_KEY"),
		username: username,
		baseURL:  "https://api.africastalking.com/version1/messaging",
	}
}

// Send delivers one message to all recipients in a single API call
func (g *AfricasTalkingGateway) Send(recipients []string, message string) error {
	if g.apiKey == "" {
		return fmt.Errorf("sms gateway not configured")
	}

	form := url.Values{}
	form.Set("username", g.username)
	form.Set("to", strings.Join(recipients, ","))
	form.Set("message", message)

	req, err := http.NewRequest("POST", g.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("apiKey", g.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("sms API returned status %d", resp.StatusCode)
	}

	return nil
}

// TwilioGateway sends SMS through the Twilio REST API, one call per recipient
type TwilioGateway struct {
	accountSID string
	authToken  string
	fromNumber string
}

// NewTwilioGateway creates a gateway from environment credentials
func NewTwilioGateway() *TwilioGateway {
	return &TwilioGateway{
		accountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		authToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		fromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
	}
}

// Send delivers the message to each recipient individually
func (g *TwilioGateway) Send(recipients []string, message string) error {
	if g.accountSID == "" || g.authToken == "" || g.fromNumber == "" {
		return fmt.Errorf("twilio gateway not configured")
	}

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", g.accountSID)
	client := &http.Client{}

	for _, recipient := range recipients {
		form := url.Values{}
		form.Set("From", g.fromNumber)
		form.Set("To", recipient)
		form.Set("Body", message)

		req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("failed to create request: %v", err)
		}
		req.SetBasicAuth(g.accountSID, g.authToken)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to send sms to %s: %v", recipient, err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("twilio API returned status %d for %s", resp.StatusCode, recipient)
		}
	}

	return nil
}
