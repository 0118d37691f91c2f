package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// SMSProvider delivers verification codes.
type SMSProvider interface {
	SendCode(ctx context.Context, phone, code string) error
}

// NewSMSProvider picks the provider by name. Unknown names fall back to the mock
// provider so local runs never need credentials.
func NewSMSProvider(name, apiKey string) (SMSProvider, error) {
	switch strings.ToLower(name) {
	case "twilio":
		return NewTwilioProvider(apiKey, nil)
	case "", "mock":
		return MockProvider{}, nil
	default:
		log.Warnf("WARN: unknown SMS provider %q, using mock", name)
		return MockProvider{}, nil
	}
}

// MockProvider only writes the code to the log.
type MockProvider struct{}

func (MockProvider) SendCode(_ context.Context, phone, code string) error {
	log.WithField("phone", phone).Infof("[MOCK SMS] verification code: %s", code)
	return nil
}

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioProvider sends codes with the Twilio Messages API.
type TwilioProvider struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
}

// NewTwilioProvider parses apiKey in the form "SID:TOKEN:FROM".
func NewTwilioProvider(apiKey string, client *http.Client) (*TwilioProvider, error) {
	parts := strings.SplitN(apiKey, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, fmt.Errorf("twilio: SMS_API_KEY must be SID:TOKEN:FROM")
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &TwilioProvider{
		accountSID: parts[0],
		authToken:  parts[1],
		from:       parts[2],
		baseURL:    twilioAPIBase,
		client:     client,
	}, nil
}

func (p *TwilioProvider) SendCode(ctx context.Context, phone, code string) error {
	form := url.Values{}
	form.Set("To", phone)
	form.Set("From", p.from)
	form.Set("Body", fmt.Sprintf("SkillSwap code: %s", code))

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", p.baseURL, p.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(p.accountSID, p.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("twilio: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
