package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"studytrack-backend/internal/models"
)

type staticTokens map[string]uuid.UUID

func (s staticTokens) ParseUserID(token string) (uuid.UUID, error) {
	id, ok := s[token]
	if !ok {
		return uuid.Nil, errors.New("bad token")
	}
	return id, nil
}

func TestHub_RejectsBadToken(t *testing.T) {
	hub := NewHub(nil, staticTokens{}, "")
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer server.Close()

	for _, query := range []string{"", "?token=nope"} {
		resp, err := http.Get(server.URL + query)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%q: expected status %d, got %d", query, http.StatusUnauthorized, resp.StatusCode)
		}
	}
}

func TestHub_SendToUser(t *testing.T) {
	userID := uuid.New()
	hub := NewHub(nil, staticTokens{"good": userID}, "")
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=good"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Connected(userID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection was never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.SendToUser(userID, models.WSMessage{
		Type:    "achievement_unlocked",
		Payload: models.AchievementUnlockedEvent{ID: "first_steps", Name: "First Steps"},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Type    string                          `json:"type"`
		Payload models.AchievementUnlockedEvent `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != "achievement_unlocked" || msg.Payload.ID != "first_steps" {
		t.Errorf("unexpected message %+v", msg)
	}

	// Another user's sockets receive nothing.
	hub.SendToUser(uuid.New(), models.WSMessage{Type: "noise"})
}
