package server

// Identity is the transport-provided player identity carried by every request.
type Identity struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name,omitempty"`
}

func (id Identity) name() string {
	if id.DisplayName == "" {
		return id.PlayerID
	}
	return id.DisplayName
}

type StartRequest struct {
	Identity
}

type StartResponse struct {
	Notification *NotificationMessage `json:"notification"`
}

type JoinRequest struct {
	Identity
}

type LeaveRequest struct {
	Identity
}

type GuessRequest struct {
	Identity
	Value int `json:"value"`
}

// PressRequest carries the opaque token of a choice the player selected.
type PressRequest struct {
	Identity
	Token string `json:"token"`
}

// ActionResponse is the direct answer to the acting player. Messages for
// other players travel over StreamNotifications.
type ActionResponse struct {
	Outcome   string `json:"outcome"`
	Reply     string `json:"reply,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type ChoiceMessage struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

type NotificationMessage struct {
	PlayerID  string          `json:"player_id"`
	Text      string          `json:"text"`
	Choices   []ChoiceMessage `json:"choices,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

type StreamRequest struct {
	PlayerID string `json:"player_id"`
}

type ListSessionsRequest struct{}

type SessionSummary struct {
	SessionID string   `json:"session_id"`
	State     string   `json:"state"`
	Players   []string `json:"players"`
}

type ListSessionsResponse struct {
	Sessions []*SessionSummary `json:"sessions"`
}
