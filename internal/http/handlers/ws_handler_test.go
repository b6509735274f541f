package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nearbychat/server/internal/domain"
	"github.com/nearbychat/server/internal/ws"
)

type wsStoreStub struct{}

func (wsStoreStub) Save(_ context.Context, roomID, senderID, text string) (*domain.Message, error) {
	return &domain.Message{
		ID:        "m1",
		RoomID:    roomID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}, nil
}

type wsIdentityStub struct{}

func (wsIdentityStub) DisplayName(context.Context, string) (string, error) {
	return "night owl", nil
}

type wsRoomsStub struct{}

func (wsRoomsStub) Delete(context.Context, string, string) error { return nil }

func newWSServer(t *testing.T, v verifierStub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := ws.NewHub(wsStoreStub{}, wsIdentityStub{}, wsRoomsStub{}, ws.WSConfig{
		ReadLimit:    4096,
		SendBuffer:   16,
		WriteTimeout: time.Second,
		PongTimeout:  time.Minute,
		PingInterval: 50 * time.Second,
	}, zerolog.Nop())
	h := New(&accountsStub{}, &roomsStub{}, &historyStub{}, minterStub{}, v, hub)

	r := gin.New()
	r.GET("/ws", h.Connect)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, query), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil consumes frames until one matches the wanted event.
func readUntil(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		var env ws.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		if env.Event == event {
			return env.Data
		}
	}
	t.Fatalf("no %s frame before deadline", event)
	return nil
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(ws.Envelope{Event: event, Data: raw}); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

func TestConnectRejectsMissingToken(t *testing.T) {
	srv := newWSServer(t, verifierStub{userID: "user-1"})

	resp, err := http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestConnectRejectsInvalidToken(t *testing.T) {
	srv := newWSServer(t, verifierStub{err: errors.New("expired")})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "?token=stale"), nil)
	if err == nil {
		t.Fatal("dial with invalid token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("handshake response = %v, want 401", resp)
	}
	resp.Body.Close()
}

func TestConnectAcceptsHeaderToken(t *testing.T) {
	srv := newWSServer(t, verifierStub{userID: "user-1"})

	header := http.Header{"Authorization": []string{"Bearer good"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), header)
	if err != nil {
		t.Fatalf("dial with header token: %v", err)
	}
	resp.Body.Close()
	conn.Close()
}

func TestSessionJoinAndSend(t *testing.T) {
	srv := newWSServer(t, verifierStub{userID: "user-1"})
	conn := dial(t, srv, "?token=good")

	sendEvent(t, conn, ws.EventJoinRoom, ws.RoomRef{Room: "room-1"})

	var count ws.CountPayload
	if err := json.Unmarshal(readUntil(t, conn, ws.EventActiveUsers), &count); err != nil {
		t.Fatal(err)
	}
	if count.Room != "room-1" || count.Count != 1 {
		t.Fatalf("count payload = %+v, want room-1/1", count)
	}

	sendEvent(t, conn, ws.EventSendMessage, ws.SendMessagePayload{Room: "room-1", Text: "hello"})

	var msg ws.MessagePayload
	if err := json.Unmarshal(readUntil(t, conn, ws.EventReceiveMessage), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.SenderID != "user-1" || msg.SenderName != "night owl" || msg.Text != "hello" {
		t.Fatalf("message payload = %+v", msg)
	}
}

func TestSessionSecondMemberSeesCount(t *testing.T) {
	srv := newWSServer(t, verifierStub{userID: "user-1"})

	first := dial(t, srv, "?token=good")
	sendEvent(t, first, ws.EventJoinRoom, ws.RoomRef{Room: "room-1"})
	readUntil(t, first, ws.EventActiveUsers)

	second := dial(t, srv, "?token=good")
	sendEvent(t, second, ws.EventJoinRoom, ws.RoomRef{Room: "room-1"})

	var count ws.CountPayload
	if err := json.Unmarshal(readUntil(t, second, ws.EventActiveUsers), &count); err != nil {
		t.Fatal(err)
	}
	if count.Count != 2 {
		t.Fatalf("count = %d, want 2", count.Count)
	}

	// The first member sees the updated count too.
	for {
		var c ws.CountPayload
		if err := json.Unmarshal(readUntil(t, first, ws.EventActiveUsers), &c); err != nil {
			t.Fatal(err)
		}
		if c.Count == 2 {
			return
		}
	}
}
