package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fostercare-aficionado/chat/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointSend(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "text/plain")
		flusher := w.(http.Flusher)
		for _, chunk := range []string{"Reun", "ification is..."} {
			_, _ = io.WriteString(w, chunk)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	e := services.NewEndpoint(srv.URL+"/api/chat", srv.Client(), nil)
	body, err := e.Send(context.Background(), "What is reunification?")
	require.NoError(t, err)
	defer body.Close()

	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "Reunification is...", string(got))
	assert.Equal(t, map[string]string{"user_message": "What is reunification?"}, gotBody)
}

func TestEndpointSendStatusError(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusBadGateway} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", status)
			}))
			defer srv.Close()

			e := services.NewEndpoint(srv.URL, srv.Client(), nil)
			body, err := e.Send(context.Background(), "hello")
			require.Error(t, err)
			assert.Nil(t, body)

			var se *services.StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, status, se.StatusCode)
			assert.True(t, services.IsStatusError(err))
		})
	}
}

func TestEndpointSendNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	e := services.NewEndpoint(url, nil, nil)
	_, err := e.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.False(t, services.IsStatusError(err))
}

func TestEndpointSendCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := services.NewEndpoint(srv.URL, srv.Client(), nil)
	_, err := e.Send(ctx, "hello")
	require.ErrorIs(t, err, context.Canceled)
}
