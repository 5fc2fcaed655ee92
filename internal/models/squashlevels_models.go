package models

// StatusGood is the document status reported for a logged-in session.
const StatusGood = "good"

// Document is one player_detail response. Nested maps hold json.Number
// values since the client decodes with UseNumber.
type Document struct {
	Status string       `json:"status"`
	Data   DocumentData `json:"data"`
}

type DocumentData struct {
	Summary    map[string]any   `json:"summary"`
	Matches    []map[string]any `json:"matches"`
	Statistics map[string]any   `json:"statistics"`
}

type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Empty() bool {
	return c.Username == "" && c.Password == ""
}

type AuthStatus int

const (
	Anonymous AuthStatus = iota
	Authenticated
	AuthFailed
)

func (s AuthStatus) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case AuthFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s AuthStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type AuthResult struct {
	Status AuthStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
}
