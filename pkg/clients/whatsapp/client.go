package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/milkcenter/internal/config"
)

// ErrEmptyMessage is returned when asked to send a blank text.
var ErrEmptyMessage = errors.New("whatsapp: empty message body")

// maxBodyLength is the Cloud API limit for a text message body.
const maxBodyLength = 4096

// Client exposes WhatsApp Cloud API operations used by the application.
type Client interface {
	SendText(ctx context.Context, msg TextMessage) (string, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	http          *resty.Client
	phoneNumberID string
}

// TextMessage is a plain text message to one recipient.
type TextMessage struct {
	To         string
	Body       string
	PreviewURL bool
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type apiError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// NewClient builds a Cloud API client for the configured phone number.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	rc := resty.New().
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &APIClient{http: rc, phoneNumberID: cfg.PhoneNumberID}
}

// SendText delivers msg and returns the message id assigned by Meta. Bodies
// longer than the API limit are truncated.
func (c *APIClient) SendText(ctx context.Context, msg TextMessage) (string, error) {
	body := strings.TrimSpace(msg.Body)
	if body == "" {
		return "", ErrEmptyMessage
	}
	if runes := []rune(body); len(runes) > maxBodyLength {
		body = string(runes[:maxBodyLength])
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                msg.To,
		"type":              "text",
		"text": map[string]any{
			"body":        body,
			"preview_url": msg.PreviewURL,
		},
	}

	result := new(sendResponse)
	apiErr := new(apiError)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post(c.phoneNumberID + "/messages")
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.IsError() {
		code := resp.StatusCode()
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
		return "", fmt.Errorf("whatsapp api error: code=%d, message=%s", code, apiErr.Error.Message)
	}

	if len(result.Messages) == 0 {
		return "", nil
	}
	return result.Messages[0].ID, nil
}
