package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/isyarat/internal/app"
	"github.com/ayusman/isyarat/internal/detector"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 1 << 20
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// perceptionFrame is one landmark message sent by a browser perception
// client. Hands must carry 21 points each; the face is optional.
type perceptionFrame struct {
	Hands [][]detector.Point `json:"hands"`
	Face  []detector.Point   `json:"face"`
}

// decodePerceptionFrame validates a client message. A message with any
// malformed hand is rejected as a whole.
func decodePerceptionFrame(data []byte) (detector.Observation, error) {
	var msg perceptionFrame
	if err := json.Unmarshal(data, &msg); err != nil {
		return detector.Observation{}, fmt.Errorf("invalid landmark message: %w", err)
	}

	var obs detector.Observation
	for i, points := range msg.Hands {
		frame, err := detector.HandFrameFromPoints(points)
		if err != nil {
			return detector.Observation{}, fmt.Errorf("hand %d: %w", i, err)
		}
		obs.Hands = append(obs.Hands, frame)
	}
	if len(msg.Face) > 0 {
		obs.Face = detector.FaceMesh(msg.Face)
	}
	return obs, nil
}

// PerceptionHandler accepts landmark frames from browser perception clients
// over WebSocket and streams engine events back to every connected client.
type PerceptionHandler struct {
	app *app.App
}

// NewPerceptionHandler creates a PerceptionHandler feeding a.
func NewPerceptionHandler(a *app.App) *PerceptionHandler {
	return &PerceptionHandler{app: a}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *PerceptionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := h.app.Subscribe()
	defer unsubscribe()

	replies := make(chan app.Event, 8)
	done := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeLoop(conn, events, replies, done)
	}()

	h.readLoop(conn, replies)
	close(done)
	<-writerDone
}

func (h *PerceptionHandler) readLoop(conn *websocket.Conn, replies chan<- app.Event) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		obs, err := decodePerceptionFrame(data)
		if err != nil {
			select {
			case replies <- app.Event{
				Kind:    app.EventError,
				Source:  app.SourceSystem,
				Message: err.Error(),
				Time:    time.Now().UnixMilli(),
			}:
			default:
			}
			continue
		}
		h.app.ProcessObservation(obs)
	}
}

// writeLoop is the only writer on conn. Closing the connection on a write
// failure unblocks the reader.
func writeLoop(conn *websocket.Conn, events <-chan app.Event, replies <-chan app.Event, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	write := func(e app.Event) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(e); err != nil {
			conn.Close()
			return false
		}
		return true
	}

	for {
		select {
		case <-done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case e, ok := <-events:
			if !ok || !write(e) {
				return
			}
		case e := <-replies:
			if !write(e) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
