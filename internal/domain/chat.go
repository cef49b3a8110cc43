package domain

import "time"

// ChatRole identifies who produced a chat turn.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// HistoryWindow is how many prior turns are handed to the coach.
const HistoryWindow = 10

// ChatTurn is one message of the Log tab conversation.
type ChatTurn struct {
	Role      ChatRole  `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// LastTurns returns at most n of the most recent turns, oldest first.
func LastTurns(history []ChatTurn, n int) []ChatTurn {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]ChatTurn, len(history))
	copy(out, history)
	return out
}
