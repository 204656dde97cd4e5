package leads

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

// maxErrorBody caps the CRM response text kept in job errors.
const maxErrorBody = 512

// CRMClient delivers one contact to the CRM.
type CRMClient interface {
	CreateContact(ctx context.Context, baseURL, token string, payload []byte) error
}

// MauticClient posts contacts to the Mautic REST API.
type MauticClient struct {
	client *resty.Client
}

// NewMauticClient constructs a client with the given request timeout.
func NewMauticClient(timeout time.Duration) *MauticClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MauticClient{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

// CreateContact posts payload to {baseURL}/api/contacts/new.
func (c *MauticClient) CreateContact(ctx context.Context, baseURL, token string, payload []byte) error {
	endpoint := strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/api/contacts/new"
	resp, errPost := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(payload).
		Post(endpoint)
	if errPost != nil {
		return fmt.Errorf("crm: request failed: %w", errPost)
	}
	if resp.IsError() {
		body := strings.TrimSpace(resp.String())
		body = truncateUTF8(body, maxErrorBody)
		return fmt.Errorf("crm: unexpected status %d: %s", resp.StatusCode(), body)
	}
	return nil
}

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := 0
	for cut < len(s) {
		_, size := utf8.DecodeRuneInString(s[cut:])
		if cut+size > limit {
			break
		}
		cut += size
	}
	return s[:cut]
}
