package answer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-go-golems/asker/pkg/conversation"
	"github.com/go-go-golems/asker/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPServiceSendsTextOnly(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"answer":"4","model":"ignored"}`))
	}))
	defer srv.Close()

	a, err := NewHTTPService(srv.URL).Answer(context.Background(), "2+2?")
	require.NoError(t, err)

	assert.Equal(t, "4", a)
	assert.Equal(t, map[string]interface{}{"text": "2+2?"}, got)
}

func TestHTTPServiceEmptyAnswerIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"answer":""}`))
	}))
	defer srv.Close()

	a, err := NewHTTPService(srv.URL).Answer(context.Background(), "?")
	require.NoError(t, err)
	assert.Equal(t, "", a)
}

func TestHTTPServiceFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"answer":"nope"}`},
		{name: "not found", status: http.StatusNotFound, body: ``},
		{name: "malformed", status: http.StatusOK, body: `<html>`},
		{name: "missing answer", status: http.StatusOK, body: `{"text":"hi"}`},
		{name: "null answer", status: http.StatusOK, body: `{"answer":null}`},
		{name: "wrong type", status: http.StatusOK, body: `{"answer":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPService(srv.URL).Answer(context.Background(), "q")
			assert.Error(t, err)
		})
	}
}

func TestHTTPServiceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPService(url).Answer(context.Background(), "q")
	assert.Error(t, err)
}

func TestHTTPServiceThroughController(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := conversation.NewController(NewHTTPService(srv.URL))
	require.NoError(t, c.Submit(context.Background(), "2+2?"))

	assert.Equal(t, []conversation.Turn{
		{Question: "2+2?", Answer: conversation.FailureAnswer, Failed: true},
	}, c.Turns())
	assert.Equal(t, conversation.StatusFailed, c.Status())
}

func TestEchoService(t *testing.T) {
	a, err := NewEchoService().Answer(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&EchoService{Delay: time.Hour}).Answer(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenAIServiceAgainstStub(t *testing.T) {
	var req map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"4"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	a, err := NewOpenAIService("sk-test", srv.URL, "gpt-test").Answer(context.Background(), "2+2?")
	require.NoError(t, err)

	assert.Equal(t, "4", a)
	assert.Equal(t, "gpt-test", req["model"])
	messages, ok := req["messages"].([]interface{})
	require.True(t, ok)
	assert.Len(t, messages, 1)
}

func TestOpenAIServiceNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIService("sk-test", srv.URL, "gpt-test").Answer(context.Background(), "q")
	assert.Error(t, err)
}

func TestNewServiceFromSettings(t *testing.T) {
	s := settings.NewSettings()
	svc, err := NewServiceFromSettings(s)
	require.NoError(t, err)
	assert.IsType(t, &HTTPService{}, svc)

	s.Provider = settings.ProviderEcho
	svc, err = NewServiceFromSettings(s)
	require.NoError(t, err)
	assert.IsType(t, &EchoService{}, svc)

	s.Provider = "carrier-pigeon"
	_, err = NewServiceFromSettings(s)
	assert.Error(t, err)
}
