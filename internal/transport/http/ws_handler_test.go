package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"drivetest-quiz/internal/app"
	"drivetest-quiz/internal/domain"
	"drivetest-quiz/internal/infra/memory"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func TestWebSocketQuizFlow(t *testing.T) {
	service, sessions := newTestService()
	wsHandler := NewWSHandler(service, zap.NewNop())
	wsHandler.tickInterval = time.Hour

	server := httptest.NewServer(newMux(service, wsHandler))
	defer server.Close()

	resp, err := http.Get(server.URL + "/results")
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before any submission, got %d", resp.StatusCode)
	}

	conn := dial(t, server)
	defer conn.Close()

	var first app.SessionView
	readInto(t, conn, "state", &first)
	if first.Position != 1 || first.Total != 2 || !first.IsFirst {
		t.Fatalf("unexpected first state %+v", first)
	}

	answers := correctAnswers()
	var view app.SessionView
	send(t, conn, "answer", map[string]any{"label": answers[first.Question.ID]})
	readInto(t, conn, "state", &view)
	if view.Selected != answers[first.Question.ID] || view.Answered != 1 {
		t.Fatalf("expected recorded answer, got %+v", view)
	}

	send(t, conn, "next", nil)
	readInto(t, conn, "state", &view)
	if view.Position != 2 || !view.IsLast {
		t.Fatalf("expected last question, got %+v", view)
	}
	second := view.Question.ID
	send(t, conn, "answer", map[string]any{"label": answers[second]})
	readInto(t, conn, "state", &view)

	send(t, conn, "previous", nil)
	readInto(t, conn, "state", &view)
	if view.Position != 1 || view.Selected != answers[first.Question.ID] {
		t.Fatalf("expected first answer kept after navigation, got %+v", view)
	}

	send(t, conn, "answer", map[string]any{"label": "Z"})
	var errMsg errorPayload
	readInto(t, conn, "error", &errMsg)
	if errMsg.Message != domain.ErrInvalidLabel.Error() {
		t.Fatalf("expected invalid label error, got %q", errMsg.Message)
	}

	send(t, conn, "submit", nil)
	var results app.ResultsView
	readInto(t, conn, "results", &results)
	if results.Score != 100 || !results.Passed || len(results.Review) != 2 {
		t.Fatalf("unexpected results %+v", results)
	}
	if results.TimeLabel != "less than 1 minute" {
		t.Fatalf("unexpected time label %q", results.TimeLabel)
	}

	resp, err = http.Get(server.URL + "/results")
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after submission, got %d", resp.StatusCode)
	}
	var stored app.ResultsView
	if err := json.NewDecoder(resp.Body).Decode(&stored); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if stored.Score != 100 || stored.CorrectAnswers != 2 {
		t.Fatalf("unexpected stored results %+v", stored)
	}
	if sessions.Len() != 0 {
		t.Fatalf("expected submitted session to be dropped, %d left", sessions.Len())
	}
}

func TestWebSocketDisconnectAbandonsSession(t *testing.T) {
	service, sessions := newTestService()
	wsHandler := NewWSHandler(service, zap.NewNop())
	wsHandler.tickInterval = time.Hour
	server := httptest.NewServer(newMux(service, wsHandler))
	defer server.Close()

	conn := dial(t, server)
	var view app.SessionView
	readInto(t, conn, "state", &view)
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for sessions.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected session abandoned after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketSendsTicks(t *testing.T) {
	service, _ := newTestService()
	wsHandler := NewWSHandler(service, zap.NewNop())
	wsHandler.tickInterval = 10 * time.Millisecond
	server := httptest.NewServer(newMux(service, wsHandler))
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	var tick tickPayload
	readInto(t, conn, "tick", &tick)
	if tick.Display == "" || tick.Seconds < 0 {
		t.Fatalf("unexpected tick %+v", tick)
	}
}

func newMux(service *app.QuizService, wsHandler *WSHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.Handle("/results", NewResultsHandler(service, zap.NewNop()))
	return mux
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readInto skips ticks unless a tick is what the caller waits for.
func readInto(t *testing.T, conn *websocket.Conn, expect string, out any) {
	t.Helper()
	for {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if msg.Type == "tick" && expect != "tick" {
			continue
		}
		if msg.Type != expect {
			t.Fatalf("expected type %s, got %s (%s)", expect, msg.Type, msg.Payload)
		}
		if err := json.Unmarshal(msg.Payload, out); err != nil {
			t.Fatalf("decode %s payload: %v", expect, err)
		}
		return
	}
}

func newTestService() (*app.QuizService, *memory.SessionStore) {
	sessions := memory.NewSessionStore()
	questions := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(samplePool()), time.Minute)
	return app.NewQuizService(questions, sessions, memory.NewKVStore()), sessions
}

func correctAnswers() map[int]domain.Label {
	out := make(map[int]domain.Label)
	for _, q := range samplePool() {
		out[q.ID] = q.CorrectAnswer
	}
	return out
}

func samplePool() []domain.Question {
	return []domain.Question{
		{
			ID:            1,
			Text:          "What does a red octagonal sign mean?",
			Options:       []string{"A. Yield", "B. Stop", "C. Merge", "D. No entry"},
			CorrectAnswer: domain.LabelB,
			Explanation:   "A red octagon is always a stop sign.",
		},
		{
			ID:            2,
			Text:          "What is the school zone speed limit?",
			Options:       []string{"A. 20 km/h", "B. 30 km/h", "C. 40 km/h", "D. 50 km/h"},
			CorrectAnswer: domain.LabelB,
			Explanation:   "School zones are 30 km/h during posted hours.",
		},
	}
}
