package services

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"smart-lesson/internal/annotate"
	"smart-lesson/internal/live"
	"smart-lesson/internal/models"
	"smart-lesson/internal/tts"
)

// LiveCommand is a client message on the live-session socket.
type LiveCommand struct {
	Action string `json:"action"`
	// Stroke fields, used by the stroke_* and goto actions.
	X     int    `json:"x,omitempty"`
	Y     int    `json:"y,omitempty"`
	Color string `json:"color,omitempty"`
	Width int    `json:"width,omitempty"`
	Index int    `json:"index,omitempty"`
}

// LiveEvent is a server push on the live-session socket.
type LiveEvent struct {
	Type     string         `json:"type"`
	Snapshot *live.Snapshot `json:"snapshot,omitempty"`
	StepID   string         `json:"stepId,omitempty"`
	Alert    *live.Alert    `json:"alert,omitempty"`
	// Audio payloads are base64 so the client can play them directly.
	Tone   string `json:"tone,omitempty"`
	Speech string `json:"speech,omitempty"`
}

// LiveSession owns one classroom run: the step timer, the annotation
// canvas, and the websocket connection pushing events to the teacher's
// screen. One session per connection; closing the connection tears the
// timer down.
type LiveSession struct {
	conn    *websocket.Conn
	runner  *live.Runner
	canvas  *annotate.Canvas
	speech  *tts.Client
	lang    string
	writeMu sync.Mutex
	closeMu sync.Once
}

// NewLiveSession builds a session over an upgraded connection. The canvas
// starts on the first step's slide.
func NewLiveSession(conn *websocket.Conn, steps []models.LessonStep, lang string, store *annotate.Store, speech *tts.Client) (*LiveSession, error) {
	runner, err := live.NewRunner(steps, lang)
	if err != nil {
		return nil, err
	}

	s := &LiveSession{
		conn:   conn,
		runner: runner,
		canvas: annotate.NewCanvas(store, 1280, 720),
		speech: speech,
		lang:   lang,
	}
	s.canvas.SetActiveSlide(steps[0].ID)

	runner.OnTick = func(snap live.Snapshot) {
		s.push(LiveEvent{Type: "tick", Snapshot: &snap})
	}
	runner.OnStepChange = func(stepID string) {
		s.canvas.SetActiveSlide(stepID)
		s.push(LiveEvent{Type: "step", StepID: stepID})
	}
	runner.OnAlert = s.pushAlert
	runner.OnFinish = func() {
		s.push(LiveEvent{Type: "finished"})
		s.Close()
	}
	return s, nil
}

// Run drives the session until the client disconnects. It starts the tick
// loop and then serves commands from the socket.
func (s *LiveSession) Run() {
	go s.runner.Loop()
	defer s.Close()

	snap := s.runner.Snapshot()
	s.push(LiveEvent{Type: "tick", Snapshot: &snap})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Live session read error: %v", err)
			}
			return
		}
		var cmd LiveCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			log.Printf("Live session: bad command: %v", err)
			continue
		}
		s.handle(cmd)
	}
}

func (s *LiveSession) handle(cmd LiveCommand) {
	switch cmd.Action {
	case "start":
		s.runner.Start()
	case "pause":
		s.runner.PauseToggle()
	case "next":
		s.runner.Next()
	case "prev":
		s.runner.Prev()
	case "stroke_begin":
		if err := s.canvas.BeginStroke(cmd.X, cmd.Y, cmd.Color, cmd.Width); err != nil {
			log.Printf("Live session: %v", err)
		}
	case "stroke_move":
		s.canvas.ExtendStroke(cmd.X, cmd.Y)
	case "stroke_end":
		if err := s.canvas.EndStroke(); err != nil {
			log.Printf("Live session: persist annotation: %v", err)
		}
	case "clear":
		s.canvas.Clear()
	default:
		log.Printf("Live session: unknown action %q", cmd.Action)
	}
	snap := s.runner.Snapshot()
	if snap.State == live.StateFinished {
		// The finished event already went out and the socket is closing.
		return
	}
	s.push(LiveEvent{Type: "tick", Snapshot: &snap})
}

// pushAlert sends the expiry event with the alert tone and, when TTS is
// available, the spoken announcement. TTS failure degrades to tone only.
func (s *LiveSession) pushAlert(alert live.Alert) {
	ev := LiveEvent{
		Type:  "alert",
		Alert: &alert,
		Tone:  base64.StdEncoding.EncodeToString(tts.AlertTone()),
	}
	if s.speech != nil {
		if audio, err := s.speech.Speak(alert.Phrase, s.lang); err == nil {
			ev.Speech = base64.StdEncoding.EncodeToString(audio)
		} else {
			log.Printf("Live session: speech synthesis: %v", err)
		}
	}
	s.push(ev)
}

func (s *LiveSession) push(ev LiveEvent) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(ev); err != nil {
		log.Printf("Live session write error: %v", err)
	}
}

// Close stops the timer and closes the connection. Safe to call twice.
func (s *LiveSession) Close() {
	s.closeMu.Do(func() {
		s.runner.Close()
		s.conn.Close()
	})
}
