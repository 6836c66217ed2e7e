package protocol

// HTTP responses for the thin session create/lookup API.

type SessionCreatedResponse struct {
	SessionID string `json:"sessionId"`
}

type SessionInfoResponse struct {
	Exists bool   `json:"exists"`
	Reason string `json:"reason,omitempty"`
}

const (
	ReasonExpired  = "expired"
	ReasonNotFound = "not_found"
)
