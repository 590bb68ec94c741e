// Package events names the realtime notifications pushed to a group's sockets.
package events

const (
	MemberJoined     = "member_joined"
	TopicSubmitted   = "topic_submitted"
	RotationSaved    = "rotation_saved"
	ArticleSubmitted = "article_submitted"
	ArticleRead      = "article_read"
	QuizAttempted    = "quiz_attempted"
	TimeChanged      = "time_changed"
)

// Notifier fans a message out to every socket subscribed to a group.
type Notifier interface {
	BroadcastMessage(groupID string, messageType string, data interface{})
}

type nop struct{}

func (nop) BroadcastMessage(string, string, interface{}) {}

// Nop discards notifications.
var Nop Notifier = nop{}

// OrNop returns n, or Nop when n is nil.
func OrNop(n Notifier) Notifier {
	if n == nil {
		return Nop
	}
	return n
}
