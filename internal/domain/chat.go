package domain

import "fmt"

// Role tags who authored a Turn. The set is closed.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Turn is one message in a conversation. It is the wire shape shared by the
// relay handler, the provider adapter and the conversation client. Turns are
// values; code appends new ones instead of editing existing ones.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func SystemTurn(content string) Turn    { return Turn{Role: RoleSystem, Content: content} }
func UserTurn(content string) Turn      { return Turn{Role: RoleUser, Content: content} }
func AssistantTurn(content string) Turn { return Turn{Role: RoleAssistant, Content: content} }

// Validate checks that the turn has a known role and non-empty content.
func (t Turn) Validate() error {
	if t.Role == "" {
		return fmt.Errorf("domain: turn role is empty")
	}
	if !t.Role.Valid() {
		return fmt.Errorf("domain: unknown turn role %q", t.Role)
	}
	if t.Content == "" {
		return fmt.Errorf("domain: turn content is empty")
	}
	return nil
}

// ValidateTurns validates every turn and reports the index of the first bad one.
func ValidateTurns(turns []Turn) error {
	for i, t := range turns {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("turn %d: %w", i, err)
		}
	}
	return nil
}

// Candidate is one continuation returned by the completion provider.
type Candidate struct {
	Content string
}
