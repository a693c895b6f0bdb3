package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type liveMessage struct {
	Type    string `json:"type"`
	Version uint64 `json:"version"`
}

// Live subscribes the page to its session store. A message is sent whenever
// the state moves past the version the page was rendered from, and the page
// re-renders itself.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	st := h.storeFor(r)
	seen, _ := strconv.ParseUint(r.URL.Query().Get("v"), 10, 64)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Debug("websocket upgrade")
		return
	}
	defer conn.Close()

	changed := make(chan struct{}, 1)
	signal := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	unsubscribe := st.Subscribe(signal)
	defer unsubscribe()
	if st.Version() != seen {
		signal()
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case <-changed:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(liveMessage{Type: "changed", Version: st.Version()}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
