package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/karthikvn/clinicq/pkg/logging"
)

// SMSSender sends SMS messages to patients and staff.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// SimpleSMSSender wraps a gateway send function so the concrete vendor
// stays out of the dispatcher.
type SimpleSMSSender struct {
	sendFunc func(ctx context.Context, to, from, body string) error
	from     string
	logger   *logging.Logger
}

// NewSimpleSMSSender creates an SMS sender with a custom send function.
func NewSimpleSMSSender(from string, sendFunc func(ctx context.Context, to, from, body string) error, logger *logging.Logger) *SimpleSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &SimpleSMSSender{sendFunc: sendFunc, from: from, logger: logger}
}

// SendSMS sends an SMS message.
func (s *SimpleSMSSender) SendSMS(ctx context.Context, to, body string) error {
	if s.sendFunc == nil {
		s.logger.Warn("notify: SMS sender not configured")
		return nil
	}
	return s.sendFunc(ctx, to, s.from, body)
}

// twilioAPIBase is a var so tests can point the send func at a fake.
var twilioAPIBase = "https://api.twilio.com"

// TwilioSendFunc returns a send function posting through Twilio's REST
// API, suitable for wiring into a SimpleSMSSender.
func TwilioSendFunc(accountSID, authToken string) func(ctx context.Context, to, from, body string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	return func(ctx context.Context, to, from, body string) error {
		if accountSID == "" || authToken == "" {
			return errors.New("notify: sms credentials missing")
		}
		if to == "" || from == "" {
			return errors.New("notify: sms to and from required")
		}

		payload := url.Values{}
		payload.Set("To", to)
		payload.Set("From", from)
		payload.Set("Body", body)

		endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", twilioAPIBase, accountSID)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
		if err != nil {
			return fmt.Errorf("notify: sms request: %w", err)
		}
		req.SetBasicAuth(accountSID, authToken)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("notify: sms send: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("notify: sms send: status %d", resp.StatusCode)
		}
		return nil
	}
}

// StubSMSSender is a no-op sender for development and tests.
type StubSMSSender struct {
	logger *logging.Logger
}

// NewStubSMSSender creates a stub SMS sender.
func NewStubSMSSender(logger *logging.Logger) *StubSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSMSSender{logger: logger}
}

// SendSMS logs but doesn't send.
func (s *StubSMSSender) SendSMS(ctx context.Context, to, body string) error {
	s.logger.Info("stub SMS sender: would send", "to", to, "body_preview", truncate(body, 50))
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ SMSSender = (*SimpleSMSSender)(nil)
var _ SMSSender = (*StubSMSSender)(nil)
