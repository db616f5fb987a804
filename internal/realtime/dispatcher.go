package realtime

import (
	"github.com/sirupsen/logrus"
)

// Dispatcher forwards engine events to connected sessions. Delivery is
// fire-and-forget: a disconnected recipient is skipped and catches up from the
// store on its next fetch.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Emit sends the event to the user's channel if one is registered; otherwise
// it is a no-op.
func (d *Dispatcher) Emit(userID, event string, payload interface{}) {
	ch, ok := d.registry.Lookup(userID)
	if !ok {
		return
	}

	if err := ch.Send(event, payload); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": userID,
			"event":  event,
		}).Warnf("Failed to push event: %v", err)
	}
}

// Connected reports whether the user has an active push channel. The message
// engine uses this to decide whether to bump the unread counter.
func (d *Dispatcher) Connected(userID string) bool {
	return d.registry.Connected(userID)
}
