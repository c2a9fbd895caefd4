// Package client is an HTTP client for the transaction API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/cloudbank/internal/client/models"
	"github.com/dmitrijs2005/cloudbank/internal/common"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type transferResponse struct {
	Message string `json:"message"`
	TransID string `json:"trans_id"`
}

type listResponse struct {
	Transactions []*models.Transaction `json:"transactions"`
}

// Transfer submits req and returns the new transaction ID.
func (c *Client) Transfer(ctx context.Context, req models.TransferRequest) (string, error) {
	var out transferResponse
	if err := c.do(ctx, http.MethodPost, "/transactions", req, http.StatusCreated, &out); err != nil {
		return "", err
	}
	return out.TransID, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.do(ctx, http.MethodGet, "/transaction/"+url.PathEscape(id), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTransactions(ctx context.Context, username string) ([]*models.Transaction, error) {
	var out listResponse
	if err := c.do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(username), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Transactions, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != want {
		var msg transferResponse
		if json.Unmarshal(data, &msg) != nil || msg.Message == "" {
			msg.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg.Message}
	}

	return json.Unmarshal(data, out)
}
