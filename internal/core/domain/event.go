package domain

// Event names on the WebSocket wire.
const (
	EventMessage    = "message"
	EventUserJoined = "user-joined"
	EventUserLeft   = "user-left"
	EventAck        = "ack"
	EventError      = "error"
)

// Event is one outbound frame: a name plus its JSON-serialisable payload.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// MessagePayload is the body of a "message" event.
type MessagePayload struct {
	ID       int64  `json:"id"`
	Content  string `json:"content"`
	SenderID string `json:"senderId"`
	Username string `json:"username"`
}

// PresencePayload is the body of "user-joined" and "user-left" events.
type PresencePayload struct {
	Message string `json:"message"`
}

// NewMessageEvent builds the broadcast event for a persisted message.
func NewMessageEvent(m *Message) Event {
	return Event{
		Name: EventMessage,
		Data: MessagePayload{
			ID:       m.ID,
			Content:  m.Content,
			SenderID: m.SenderID,
			Username: m.Username,
		},
	}
}
