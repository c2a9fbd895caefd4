package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/cloudbank/internal/client/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransfer(t *testing.T) {
	var got models.TransferRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transactions", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Transaction completed","trans_id":"abc"}`))
	}))
	defer srv.Close()

	amount := decimal.RequireFromString("12.50")
	id, err := New(srv.URL+"/", "tok", time.Second).Transfer(context.Background(), models.TransferRequest{
		SenderUsername: "alice", ReceiverUsername: "bob", Amount: &amount, PIN: "1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
	assert.Equal(t, "bob", got.ReceiverUsername)
	require.NotNil(t, got.Amount)
	assert.True(t, got.Amount.Equal(amount))
}

func TestTransfer_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Insufficient balance"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "tok", time.Second).Transfer(context.Background(), models.TransferRequest{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Insufficient balance", apiErr.Message)
	assert.Equal(t, "Insufficient balance (HTTP 400)", err.Error())
}

func TestAPIError_FallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).GetTransaction(context.Background(), "x")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestGetTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/t1", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"trans_id":"t1","sender_username":"alice","receiver_username":"bob","amount":"5","status":"completed","timestamp":"2025-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	tx, err := New(srv.URL, "", time.Second).GetTransaction(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", tx.ID)
	assert.Equal(t, models.StatusCompleted, tx.Status)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(5)))
}

func TestListTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions/alice", r.URL.Path)
		_, _ = w.Write([]byte(`{"transactions":[{"trans_id":"b"},{"trans_id":"a"}]}`))
	}))
	defer srv.Close()

	txs, err := New(srv.URL, "tok", time.Second).ListTransactions(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "b", txs[0].ID)
}

func TestUnreachable(t *testing.T) {
	_, err := New("http://127.0.0.1:1", "", 200*time.Millisecond).ListTransactions(context.Background(), "alice")
	require.Error(t, err)
}
