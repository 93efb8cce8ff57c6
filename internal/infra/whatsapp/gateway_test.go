package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayClient(t *testing.T) {
	var sent sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/status":
			_, _ = w.Write([]byte(`{"connected": true}`))
		case "/send":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
			w.WriteHeader(http.StatusAccepted)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewGatewayClient(srv.URL, time.Second)
	ctx := context.Background()

	ok, err := c.Connected(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Send(ctx, "0812-345", "hello"))
	assert.Equal(t, "62812-345", sent.Phone)
	assert.Equal(t, "hello", sent.Message)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "628123", NormalizePhone("08123"))
	assert.Equal(t, "628123", NormalizePhone("+628123"))
	assert.Equal(t, "628123", NormalizePhone(" 628123 "))
}
