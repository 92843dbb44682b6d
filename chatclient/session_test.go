package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// fakeRelay implements just enough of the server contract for session
// tests: a canned history page and a websocket endpoint that persists
// nothing but echoes every chat_message back as a new_message broadcast.
type fakeRelay struct {
	history  []Message
	received atomic.Int64
	nextID   atomic.Int64
}

func (f *fakeRelay) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.history)
	})
	mux.HandleFunc("/api/v1/chat/ws", func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			var event map[string]string
			if json.Unmarshal(data, &event) != nil || event["type"] != "chat_message" {
				continue
			}
			f.received.Add(1)
			out, _ := json.Marshal(broadcastEnvelope{
				Type: "new_message",
				Message: Message{
					ID:          f.nextID.Add(1),
					SenderID:    event["senderId"],
					SenderRole:  event["senderRole"],
					Body:        event["content"],
					TaggedUsers: []string{},
					CreatedAt:   time.Now().UTC(),
				},
			})
			_ = ws.WriteMessage(websocket.TextMessage, out)
		}
	})
	return mux
}

func newTestSession(t *testing.T, relay *fakeRelay) *Session {
	t.Helper()
	srv := httptest.NewServer(relay.handler())
	t.Cleanup(srv.Close)
	session := NewSession(srv.URL, "u1", "customer")
	t.Cleanup(session.Close)
	return session
}

func TestSendBeforeConnectIsNoOp(t *testing.T) {
	relay := &fakeRelay{}
	session := newTestSession(t, relay)

	assert.Equal(t, StateConnecting, session.State())
	session.Send("too early") // must not panic, must not transmit
	assert.Equal(t, int64(0), relay.received.Load())
}

func TestConnectTransitionsToOpen(t *testing.T) {
	relay := &fakeRelay{}
	session := newTestSession(t, relay)

	require.NoError(t, session.Connect(context.Background()))
	assert.Equal(t, StateOpen, session.State())
}

func TestConnectFailureTransitionsToClosed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing is listening anymore

	session := NewSession(srv.URL, "u1", "customer")
	err := session.Connect(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateClosed, session.State())
}

func TestLocalViewMergesHistoryAndBroadcasts(t *testing.T) {
	relay := &fakeRelay{
		history: []Message{
			{ID: 1, SenderID: "a1", SenderRole: "admin", Body: "welcome"},
			{ID: 2, SenderID: "u1", SenderRole: "customer", Body: "hi"},
		},
	}
	session := newTestSession(t, relay)

	require.NoError(t, session.LoadHistory(context.Background(), 50))
	require.NoError(t, session.Connect(context.Background()))

	session.Send("hello @a1")

	require.Eventually(t, func() bool {
		return len(session.Messages()) == 3
	}, 2*time.Second, 10*time.Millisecond)

	view := session.Messages()
	// History first, oldest-first; the live broadcast appended after it.
	assert.Equal(t, "welcome", view[0].Body)
	assert.Equal(t, "hi", view[1].Body)
	assert.Equal(t, "hello @a1", view[2].Body)
	assert.Equal(t, []string{"a1"}, view[2].Mentions())
}

func TestBlankSendTransmitsNothing(t *testing.T) {
	relay := &fakeRelay{}
	session := newTestSession(t, relay)
	require.NoError(t, session.Connect(context.Background()))

	session.Send("   ")
	session.Send("\t\n")

	// Give any stray frame time to arrive before asserting silence.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(0), relay.received.Load())
}

func TestServerCloseTransitionsToClosed(t *testing.T) {
	connCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connCh <- ws
	}))
	t.Cleanup(srv.Close)

	session := NewSession(srv.URL, "u1", "customer")
	require.NoError(t, session.Connect(context.Background()))

	serverSide := <-connCh
	_ = serverSide.Close()

	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session never observed the close")
	}
	assert.Equal(t, StateClosed, session.State())

	// Sends after close stay silent no-ops.
	session.Send("after close")
}

func TestConnectAfterCloseIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Hang up immediately so any stray read loop exits right away.
		_ = ws.Close()
	}))
	t.Cleanup(srv.Close)

	session := NewSession(srv.URL, "u1", "customer")
	session.Close()
	require.Equal(t, StateClosed, session.State())

	// Closed is terminal: reconnecting the same session must fail cleanly
	// instead of reopening the state machine.
	err := session.Connect(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Equal(t, StateClosed, session.State())

	// Done stays closed exactly once; a second close here would panic.
	time.Sleep(100 * time.Millisecond)
	select {
	case <-session.Done():
	default:
		t.Fatal("done channel must remain closed")
	}
	assert.Equal(t, StateClosed, session.State())
}

func TestConnectTwiceIsRejected(t *testing.T) {
	relay := &fakeRelay{}
	session := newTestSession(t, relay)

	require.NoError(t, session.Connect(context.Background()))
	assert.ErrorIs(t, session.Connect(context.Background()), ErrSessionClosed)
	assert.Equal(t, StateOpen, session.State(), "the live connection is untouched")
}

func TestUnknownBroadcastTypesAreIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"presence","online":3}`))
		out, _ := json.Marshal(broadcastEnvelope{Type: "new_message", Message: Message{ID: 7, Body: "kept"}})
		_ = ws.WriteMessage(websocket.TextMessage, out)
		// Hold the connection open long enough for the client to read both.
		time.Sleep(500 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	session := NewSession(srv.URL, "u1", "customer")
	t.Cleanup(session.Close)
	require.NoError(t, session.Connect(context.Background()))

	require.Eventually(t, func() bool {
		return len(session.Messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "kept", session.Messages()[0].Body)
}
