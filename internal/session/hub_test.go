package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens map[string]string

func (s staticTokens) ValidateToken(token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", errors.New("invalid token")
}

func TestHubStopReleasesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	c := NewClient(hub, nil, newTestSession(t, nil), "user_1", "client_1")
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-c.quit:
	case <-time.After(time.Second):
		t.Fatal("client not released on shutdown")
	}
	assert.Equal(t, 0, hub.Count())

	// Late calls must not block once the hub is gone.
	hub.Unregister(c)
	late := NewClient(hub, nil, newTestSession(t, nil), "user_2", "client_2")
	hub.Register(late)
	<-late.quit
}

func TestHubLeavesSessionToItsClient(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	sess := newTestSession(t, nil)
	c := NewClient(hub, nil, sess, "user_1", "client_1")
	hub.Register(c)

	// Editing right after Register must not overlap with hub bookkeeping.
	for i := 0; i < 200; i++ {
		p := PointPayload{X: float64(i % 50), Y: float64(i % 30)}
		sess.Apply(ctx, msg(t, TypePointerDown, p))
		sess.Apply(ctx, msg(t, TypePointerUp, PointPayload{X: p.X + 5, Y: p.Y + 5}))
	}

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, time.Millisecond)
	assert.Empty(t, c.send, "the hub queues nothing for the client")
	assert.Len(t, sess.Editor().Surface().Objects(), 200)
}

func TestClientGreetQueuesWelcomeThenRender(t *testing.T) {
	c := NewClient(NewHub(), nil, newTestSession(t, nil), "user_1", "client_1")
	c.greet()

	var first, second Message
	require.NoError(t, json.Unmarshal(<-c.send, &first))
	require.NoError(t, json.Unmarshal(<-c.send, &second))
	assert.Equal(t, TypeWelcome, first.Type)
	assert.Equal(t, TypeRender, second.Type)
	assert.Equal(t, first.SessionID, second.SessionID)
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := NewClient(hub, nil, newTestSession(t, nil), "user_1", "client_1")
	hub.Register(c)
	hub.Unregister(c)
	<-c.quit
	assert.Equal(t, 0, hub.Count())

	// Unregistering twice is harmless.
	hub.Unregister(c)
}

func TestServeWS(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	h := NewHandler(hub, staticTokens{"ok": "user_1"}, nil, testOptions(), nil)
	r := mux.NewRouter()
	r.HandleFunc("/ws/sketch/{quoteId}", h.ServeWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/sketch/quote_9"

	t.Run("rejects bad token", func(t *testing.T) {
		_, resp, err := websocket.Dial(ctx, base+"?token=nope&width=400&height=300", nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects unmounted viewport", func(t *testing.T) {
		_, resp, err := websocket.Dial(ctx, base+"?token=ok", nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("session round trip", func(t *testing.T) {
		dialCtx, dialCancel := context.WithTimeout(ctx, 5*time.Second)
		defer dialCancel()

		conn, _, err := websocket.Dial(dialCtx, base+"?token=ok&width=400&height=300", nil)
		require.NoError(t, err)
		defer conn.Close(websocket.StatusNormalClosure, "")

		read := func() Message {
			_, data, err := conn.Read(dialCtx)
			require.NoError(t, err)
			var m Message
			require.NoError(t, json.Unmarshal(data, &m))
			return m
		}

		welcome := read()
		require.Equal(t, TypeWelcome, welcome.Type)
		var payload WelcomePayload
		require.NoError(t, json.Unmarshal(welcome.Payload, &payload))
		assert.Equal(t, "quote_9", payload.QuoteID)
		assert.Equal(t, TypeRender, read().Type)

		out, err := json.Marshal(Message{Type: TypeToolSet, Seq: 1, Payload: json.RawMessage(`{"tool":"select"}`)})
		require.NoError(t, err)
		require.NoError(t, conn.Write(dialCtx, websocket.MessageText, out))

		render := read()
		assert.Equal(t, TypeRender, render.Type)
		assert.Equal(t, int64(1), render.Seq)
		assert.Equal(t, welcome.SessionID, render.SessionID)
	})
}
