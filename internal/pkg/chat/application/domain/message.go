package chat

import (
	"errors"
	"strings"
	"time"
)

// SenderRole is the sender's platform role captured at send time.
// Role changes never retroactively alter history display.
type SenderRole string

const (
	RoleCustomer   SenderRole = "customer"
	RoleAdmin      SenderRole = "admin"
	RoleSuperadmin SenderRole = "superadmin"
)

// Valid reports whether r is one of the recognized platform roles.
func (r SenderRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// CanModerate reports whether the role may delete chatroom messages.
func (r SenderRole) CanModerate() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

// Message is an immutable entry in the chatroom log.
//
// ID and CreatedAt are assigned by the store at persistence time, never by
// the client. TaggedUsers is re-derived server-side from Body and is exactly
// the ordered list of @token matches at persistence time; it is never edited
// afterwards.
type Message struct {
	ID          int64      `db:"id"`
	SenderID    string     `db:"sender_id"`
	SenderRole  SenderRole `db:"sender_role"`
	Body        string     `db:"message"`
	TaggedUsers []string   `db:"tagged_users"`
	CreatedAt   time.Time  `db:"created_at"`

	// SenderName is joined from the platform's users table on reads.
	// It is display metadata, not part of the persisted message row.
	SenderName string `db:"-"`
}

// Domain-level errors for chatroom behaviors.
var (
	ErrEmptyMessage  = errors.New("chat: message body is empty")
	ErrMissingSender = errors.New("chat: sender id is required")
	ErrInvalidRole   = errors.New("chat: unknown sender role")
)

// NewMessage validates an inbound message before persistence. The body is
// kept raw (rendering escapes it); validation only rejects blank bodies.
func NewMessage(senderID string, role SenderRole, body string) (*Message, error) {
	if senderID == "" {
		return nil, ErrMissingSender
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}
	return &Message{
		SenderID:   senderID,
		SenderRole: role,
		Body:       body,
	}, nil
}
