package realtime

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// dialTestSocket spins up a websocket echo-sink server and returns a client
// connection to it.
func dialTestSocket(t *testing.T) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func TestConnectionSendAfterClose(t *testing.T) {
	conn := NewConnection("u1", dialTestSocket(t))
	conn.Start()
	conn.Close(websocket.CloseNormalClosure, "bye")

	// Bridge relay goroutines keep calling Send while the socket controller
	// tears the connection down; every call must fail cleanly, never panic.
	for i := 0; i < 256; i++ {
		if err := conn.Send([]byte("late frame")); !errors.Is(err, ErrConnectionClosed) {
			t.Fatalf("Send after Close = %v, want ErrConnectionClosed", err)
		}
	}
}

func TestConnectionConcurrentSendAndClose(t *testing.T) {
	conn := NewConnection("u1", dialTestSocket(t))
	conn.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = conn.Send([]byte("payload"))
			}
		}()
	}
	conn.Close(websocket.CloseGoingAway, "racing close")
	wg.Wait()
}

func TestConnectionCloseIdempotent(t *testing.T) {
	conn := NewConnection("u1", dialTestSocket(t))
	conn.Start()
	conn.Close(websocket.CloseNormalClosure, "first")
	conn.Close(websocket.CloseNormalClosure, "second")
}
