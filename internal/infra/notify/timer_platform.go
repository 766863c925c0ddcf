// Package notify implements the local notification platform with in-process
// timers. Delivery is a log line plus a handler callback; there is no OS
// notification center to hand off to in a headless client.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"studybuddy/internal/domain/service"
)

// TimerPlatform schedules one timer per notification id. Scheduling the same
// id again replaces the previous timer, matching platform notification
// centers where the id is the notification's identity.
type TimerPlatform struct {
	logger *slog.Logger

	mu            sync.Mutex
	timers        map[string]*time.Timer
	nextHandlerID int
	pressHandlers map[int]func(id string)
	onDeliver     func(id, title, body string)
}

// NewTimerPlatform is the constructor for TimerPlatform.
func NewTimerPlatform(logger *slog.Logger) *TimerPlatform {
	return &TimerPlatform{
		logger:        logger,
		timers:        make(map[string]*time.Timer),
		pressHandlers: make(map[int]func(id string)),
	}
}

// NewNotificationPlatform exposes the platform under its domain contract.
func NewNotificationPlatform(p *TimerPlatform) service.NotificationPlatform {
	return p
}

// Schedule registers a timer firing at fireAt. The precondition that fireAt
// is in the future belongs to the caller; a past instant fires immediately.
func (p *TimerPlatform) Schedule(_ context.Context, id, title, body string, fireAt time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.timers[id]; ok {
		existing.Stop()
	}

	p.timers[id] = time.AfterFunc(time.Until(fireAt), func() {
		p.deliver(id, title, body)
	})

	return nil
}

// Cancel stops and forgets the timer for id, if any.
func (p *TimerPlatform) Cancel(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if timer, ok := p.timers[id]; ok {
		timer.Stop()
		delete(p.timers, id)
	}

	return nil
}

// OnPress registers a handler for user interaction with a delivered
// notification.
func (p *TimerPlatform) OnPress(handler func(id string)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	handlerID := p.nextHandlerID
	p.nextHandlerID++
	p.pressHandlers[handlerID] = handler

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.pressHandlers, handlerID)
	}
}

// OnDeliver sets a hook invoked when a timer fires, so a delivery surface
// (the CLI) can render the notification.
func (p *TimerPlatform) OnDeliver(fn func(id, title, body string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDeliver = fn
}

// Press simulates the user acting on a delivered notification and fans the
// event out to the registered handlers.
func (p *TimerPlatform) Press(id string) {
	p.mu.Lock()
	handlers := make([]func(string), 0, len(p.pressHandlers))
	for _, fn := range p.pressHandlers {
		handlers = append(handlers, fn)
	}
	p.mu.Unlock()

	for _, fn := range handlers {
		fn(id)
	}
}

func (p *TimerPlatform) deliver(id, title, body string) {
	p.mu.Lock()
	delete(p.timers, id)
	hook := p.onDeliver
	p.mu.Unlock()

	p.logger.Info("Notification delivered",
		slog.String("id", id),
		slog.String("title", title))

	if hook != nil {
		hook(id, title, body)
	}
}

// Scheduled returns the ids of notifications still waiting to fire.
func (p *TimerPlatform) Scheduled() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]string, 0, len(p.timers))
	for id := range p.timers {
		ids = append(ids, id)
	}

	return ids
}
