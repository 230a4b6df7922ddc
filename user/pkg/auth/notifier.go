// Package auth broadcasts sign-in and sign-out transitions of a device to subscribers.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

type StateChange struct {
	DeviceID string
	UserID   uuid.UUID
	SignedIn bool
}

type Listener interface {
	OnAuthStateChanged(c context.Context, change StateChange) error
}

type ListenerFunc func(c context.Context, change StateChange) error

func (f ListenerFunc) OnAuthStateChanged(c context.Context, change StateChange) error {
	return f(c, change)
}

// Notifier delivers every change to all listeners synchronously, in subscription order.
type Notifier struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Subscribe(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

func (n *Notifier) Publish(c context.Context, change StateChange) error {
	n.mu.RLock()
	listeners := make([]Listener, len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.RUnlock()

	var errs error
	for _, l := range listeners {
		if err := l.OnAuthStateChanged(c, change); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}
