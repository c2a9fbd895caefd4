package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/cloudbank/internal/common"
	"github.com/dmitrijs2005/cloudbank/internal/server/models"
)

// HTTPSink posts events as JSON to the notification service, authenticated
// with the shared service secret.
type HTTPSink struct {
	url    string
	secret string
	client *http.Client
}

func NewHTTPSink(url, secret string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{url: url, secret: secret, client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSink) Name() string { return "http" }

func (s *HTTPSink) Send(ctx context.Context, ev *models.NotificationEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.ServiceTokenHeaderName, s.secret)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification service returned %d", resp.StatusCode)
	}
	return nil
}
