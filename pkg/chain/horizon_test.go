package chain

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "3389e9f0f1a65f19736cacf544c2e825313e8447f569233bb8db39aa607c8889"

func horizonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions/"+testHash, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

func TestGetTransaction_Confirmed(t *testing.T) {
	srv := horizonServer(t, http.StatusOK,
		fmt.Sprintf(`{"id":%[1]q,"hash":%[1]q,"successful":true,"ledger":123}`, testHash))
	defer srv.Close()

	h := NewHorizon(srv.URL)
	state, err := h.GetTransaction(context.Background(), testHash)
	require.NoError(t, err)
	assert.Equal(t, TxConfirmed, state)
}

func TestGetTransaction_Failed(t *testing.T) {
	srv := horizonServer(t, http.StatusOK,
		fmt.Sprintf(`{"id":%[1]q,"hash":%[1]q,"successful":false,"ledger":123}`, testHash))
	defer srv.Close()

	h := NewHorizon(srv.URL)
	state, err := h.GetTransaction(context.Background(), testHash)
	require.NoError(t, err)
	assert.Equal(t, TxFailed, state)
}

func TestGetTransaction_NotIngestedYet(t *testing.T) {
	srv := horizonServer(t, http.StatusNotFound,
		`{"type":"https://stellar.org/horizon-errors/not_found","title":"Resource Missing","status":404}`)
	defer srv.Close()

	h := NewHorizon(srv.URL)
	state, err := h.GetTransaction(context.Background(), testHash)
	require.NoError(t, err, "a transaction Horizon has not seen is pending, not an error")
	assert.Equal(t, TxPending, state)
}

func TestGetTransaction_ServerError(t *testing.T) {
	srv := horizonServer(t, http.StatusInternalServerError,
		`{"type":"server_error","title":"Internal Server Error","status":500}`)
	defer srv.Close()

	h := NewHorizon(srv.URL)
	_, err := h.GetTransaction(context.Background(), testHash)
	assert.Error(t, err)
}

func TestGetTransaction_ContextCancelled(t *testing.T) {
	srv := horizonServer(t, http.StatusOK, `{}`)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := NewHorizon(srv.URL)
	_, err := h.GetTransaction(ctx, testHash)
	assert.ErrorIs(t, err, context.Canceled)
}
