package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"smart-lesson/internal/annotate"
	"smart-lesson/internal/models"
)

func dialTestSession(t *testing.T, steps []models.LessonStep) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		session, err := NewLiveSession(conn, steps, "en", annotate.NewStore(), nil)
		if err != nil {
			t.Errorf("NewLiveSession: %v", err)
			conn.Close()
			return
		}
		session.Run()
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestNextOnLastStepClosesSession(t *testing.T) {
	conn := dialTestSession(t, []models.LessonStep{
		{ID: "s1", Title: "Only step", DurationMinutes: 1},
	})
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	if err := conn.WriteJSON(LiveCommand{Action: "next"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	sawFinished := false
	for {
		var ev LiveEvent
		if err := conn.ReadJSON(&ev); err != nil {
			// The server hangs up after the finished event.
			break
		}
		if ev.Type == "finished" {
			sawFinished = true
		}
	}
	if !sawFinished {
		t.Error("session closed without a finished event")
	}
}

func TestSessionPushesInitialTick(t *testing.T) {
	conn := dialTestSession(t, []models.LessonStep{
		{ID: "s1", Title: "Starter", DurationMinutes: 5},
		{ID: "s2", Title: "Main", DurationMinutes: 10},
	})
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var ev LiveEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != "tick" || ev.Snapshot == nil {
		t.Fatalf("first event = %+v, want a tick with a snapshot", ev)
	}
	if ev.Snapshot.SecondsRemaining != 300 {
		t.Errorf("SecondsRemaining = %d, want 300", ev.Snapshot.SecondsRemaining)
	}
}
