// Package chatclient provides a Go client session for the chatroom
// endpoint: one websocket connection plus a local, append-only view of the
// message stream.
package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mobelhaus/mention"
)

// State is the session lifecycle: Connecting while the handshake is in
// flight, Open once it completes, Closed after either side ends the
// transport. A Closed session does not reconnect; callers build a fresh
// Session instead.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

// ErrSessionClosed is returned by Connect when the session has left the
// Connecting state. Closed is terminal; callers wanting a new connection
// build a fresh Session.
var ErrSessionClosed = errors.New("chatclient: session is not connecting")

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Message is the client-side view of a chatroom message.
type Message struct {
	ID          int64     `json:"id"`
	SenderID    string    `json:"senderId"`
	SenderRole  string    `json:"senderRole"`
	Body        string    `json:"message"`
	TaggedUsers []string  `json:"taggedUsers"`
	CreatedAt   time.Time `json:"createdAt"`
	SenderName  string    `json:"senderName,omitempty"`
}

// Mentions returns the mention tokens in the message body for display
// highlighting. Same extractor the server persists with, so the two views
// never disagree.
func (m Message) Mentions() []string {
	return mention.Extract(m.Body)
}

type broadcastEnvelope struct {
	Type    string  `json:"type"`
	Message Message `json:"message"`
}

// Session maintains one client's connection and local view of the chat
// stream. The view is the fetched history page followed by every broadcast
// received while Open, in arrival order. No de-duplication is attempted
// between the two; a message sent around the time of the history fetch can
// appear twice, which mirrors the server contract.
type Session struct {
	baseURL    string
	userID     string
	userRole   string
	httpClient *http.Client

	mu      sync.Mutex
	state   State
	ws      *websocket.Conn
	history []Message
	live    []Message
	done    chan struct{}
}

// NewSession prepares a session for the given authenticated principal
// against baseURL (e.g. "http://localhost:8080"). Nothing connects until
// Connect is called.
func NewSession(baseURL, userID, userRole string) *Session {
	return &Session{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userID:     userID,
		userRole:   userRole,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		state:      StateConnecting,
		done:       make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed when the session reaches Closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// LoadHistory fetches the initial history page. The server returns it
// oldest-first, ready to render before live broadcasts start arriving.
func (s *Session) LoadHistory(ctx context.Context, limit int) error {
	url := fmt.Sprintf("%s/api/v1/messages?limit=%d", s.baseURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	s.setIdentity(req.Header)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chatclient: history fetch returned %s", resp.Status)
	}

	var page []Message
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return err
	}

	s.mu.Lock()
	s.history = page
	s.mu.Unlock()
	return nil
}

// Connect opens the websocket transport. Connecting -> Open on handshake
// success, -> Closed on failure. Broadcast events are appended to the local
// view until the transport ends. Connect on an Open or Closed session
// returns ErrSessionClosed without touching the state machine.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateConnecting {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.mu.Unlock()

	wsURL := toWebsocketURL(s.baseURL) + "/api/v1/chat/ws"

	header := http.Header{}
	s.setIdentity(header)

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		s.transition(StateClosed)
		return fmt.Errorf("chatclient: handshake failed: %w", err)
	}

	s.mu.Lock()
	if s.state != StateConnecting {
		// Close raced with the dial; the session is already terminal.
		s.mu.Unlock()
		_ = ws.Close()
		return ErrSessionClosed
	}
	s.ws = ws
	s.state = StateOpen
	s.mu.Unlock()

	go s.readLoop(ws)
	return nil
}

// Send transmits one chat-message event. It is a deliberate no-op unless
// the session is Open and content is non-empty after trimming, and it never
// waits for a reply: the message reappears in the local view only when the
// relay's broadcast arrives back over the same connection.
func (s *Session) Send(content string) {
	if strings.TrimSpace(content) == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen || s.ws == nil {
		return
	}

	event := map[string]string{
		"type":       "chat_message",
		"senderId":   s.userID,
		"senderRole": s.userRole,
		"content":    content,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	// A write failure means the transport is going away; the read loop
	// observes the close and transitions the state.
	_ = s.ws.WriteMessage(websocket.TextMessage, payload)
}

// Messages returns a copy of the local view: history page first, then live
// broadcasts in arrival order. Append-only; entries are never reordered.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := make([]Message, 0, len(s.history)+len(s.live))
	view = append(view, s.history...)
	view = append(view, s.live...)
	return view
}

// Close ends the transport and transitions to Closed. Safe to call on an
// already-closed session.
func (s *Session) Close() {
	s.mu.Lock()
	ws := s.ws
	s.mu.Unlock()
	if ws != nil {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second))
		_ = ws.Close()
	}
	s.transition(StateClosed)
}

func (s *Session) readLoop(ws *websocket.Conn) {
	defer s.transition(StateClosed)

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var envelope broadcastEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			continue
		}
		if envelope.Type != "new_message" {
			continue
		}

		s.mu.Lock()
		if s.state == StateOpen {
			s.live = append(s.live, envelope.Message)
		}
		s.mu.Unlock()
	}
}

func (s *Session) transition(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.state = next
	if next == StateClosed {
		close(s.done)
	}
}

func (s *Session) setIdentity(h http.Header) {
	h.Set("X-User-Id", s.userID)
	h.Set("X-User-Role", s.userRole)
}

func toWebsocketURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}
