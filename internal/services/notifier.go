package services

// Notifier is the engines' view of the notification dispatcher. Emit is
// fire-and-forget; Connected feeds the unread-count decision.
type Notifier interface {
	Emit(userID, event string, payload interface{})
	Connected(userID string) bool
}

// NopNotifier drops every event. Used where no push layer exists.
type NopNotifier struct{}

func (NopNotifier) Emit(string, string, interface{}) {}

func (NopNotifier) Connected(string) bool { return false }
