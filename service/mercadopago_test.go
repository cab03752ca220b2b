package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMercadoPagoClient_CreatePreference(t *testing.T) {
	var got PreferenceRequest
	var idempotencyKeys []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		idempotencyKeys = append(idempotencyKeys, r.Header.Get("X-Idempotency-Key"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"pref-123","init_point":"https://mp.example/checkout/pref-123"}`))
	}))
	defer srv.Close()

	client := NewMercadoPagoClient("test-token", WithBaseURL(srv.URL))
	req := PreferenceRequest{
		Items: []PreferenceItem{{
			ID:         "PLAN-PRO-BALUARTE",
			Title:      "Suscripción Plan PRO Baluarte - Mensual",
			Quantity:   1,
			UnitPrice:  500,
			CurrencyID: "ARS",
		}},
		BackURLs:          BackURLs{Success: "https://app/ok", Failure: "https://app/ko"},
		ExternalReference: "42",
		NotificationURL:   "https://api/webhook",
	}

	pref, err := client.CreatePreference(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "pref-123", pref.ID)
	assert.Equal(t, "https://mp.example/checkout/pref-123", pref.InitPoint)
	assert.Equal(t, req, got)

	_, err = client.CreatePreference(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, idempotencyKeys, 2)
	assert.Len(t, idempotencyKeys[0], 36)
	assert.NotEqual(t, idempotencyKeys[0], idempotencyKeys[1])
}

func TestMercadoPagoClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid access token","error":"unauthorized","status":401}`))
	}))
	defer srv.Close()

	client := NewMercadoPagoClient("bad", WithBaseURL(srv.URL))
	_, err := client.CreatePreference(context.Background(), PreferenceRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid access token", apiErr.Message)
	assert.Equal(t, "/checkout/preferences", apiErr.Endpoint)
	assert.True(t, apiErr.Unauthorized())
	assert.Contains(t, err.Error(), "status: 401")
}

func TestMercadoPagoClient_GetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		if r.URL.Path != "/v1/payments/987" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Payment not found"}`))
			return
		}
		w.Write([]byte(`{"id":987,"status":"approved","status_detail":"accredited","external_reference":"42","transaction_amount":500,"currency_id":"ARS"}`))
	}))
	defer srv.Close()

	client := NewMercadoPagoClient("t", WithBaseURL(srv.URL), WithRateLimit(50))

	p, err := client.GetPayment(context.Background(), "987")
	require.NoError(t, err)
	assert.Equal(t, int64(987), p.ID)
	assert.True(t, p.Approved())
	assert.Equal(t, "42", p.ExternalReference)

	_, err = client.GetPayment(context.Background(), "111")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.False(t, apiErr.Unauthorized())
}

func TestMercadoPagoClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewMercadoPagoClient("t", WithBaseURL(srv.URL), WithTimeout(20*time.Millisecond))
	_, err := client.GetPayment(context.Background(), "1")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestMercadoPagoClient_ContextCancelled(t *testing.T) {
	client := NewMercadoPagoClient("t", WithBaseURL("http://127.0.0.1:1"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetPayment(ctx, "1")
	assert.Error(t, err)
}

func TestPayment_Approved(t *testing.T) {
	assert.False(t, (*Payment)(nil).Approved())
	assert.False(t, (&Payment{Status: PaymentPending}).Approved())
	assert.True(t, (&Payment{Status: PaymentApproved}).Approved())
}
