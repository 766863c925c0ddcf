package impl

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"studybuddy/internal/domain/service"

	"github.com/pkg/errors"
)

// fakePlatform records scheduling calls without any real timers.
type fakePlatform struct {
	mu          sync.Mutex
	scheduled   map[string]time.Time
	cancelled   []string
	handlers    []func(id string)
	scheduleErr error
	cancelErr   error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{scheduled: map[string]time.Time{}}
}

func (p *fakePlatform) Schedule(_ context.Context, id, _, _ string, fireAt time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scheduleErr != nil {
		return p.scheduleErr
	}
	p.scheduled[id] = fireAt
	return nil
}

func (p *fakePlatform) Cancel(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, id)
	if p.cancelErr != nil {
		return p.cancelErr
	}
	delete(p.scheduled, id)
	return nil
}

func (p *fakePlatform) OnPress(handler func(id string)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
	return func() {}
}

func (p *fakePlatform) press(id string) {
	p.mu.Lock()
	handlers := append([]func(string){}, p.handlers...)
	p.mu.Unlock()
	for _, h := range handlers {
		h(id)
	}
}

func (p *fakePlatform) scheduledIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.scheduled))
	for id := range p.scheduled {
		ids = append(ids, id)
	}
	return ids
}

// fakeFallback records email fallback checks.
type fakeFallback struct {
	mu      sync.Mutex
	calls   int
	bearers []string
	err     error
	panics  bool
}

func (f *fakeFallback) CheckEmailFallback(_ context.Context, bearer string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics {
		panic("fallback exploded")
	}
	f.calls++
	f.bearers = append(f.bearers, bearer)
	return f.err
}

// fakeAPI routes operations by name to canned JSON payloads.
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	ops       []service.Operation
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{responses: map[string]string{}, errs: map[string]error{}}
}

func (a *fakeAPI) Do(_ context.Context, op service.Operation, out any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ops = append(a.ops, op)
	if err, ok := a.errs[op.Name]; ok {
		return err
	}
	payload, ok := a.responses[op.Name]
	if !ok {
		return errors.Errorf("unexpected operation %q", op.Name)
	}
	return json.Unmarshal([]byte(payload), out)
}

func (a *fakeAPI) calls(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, op := range a.ops {
		if op.Name == name {
			n++
		}
	}
	return n
}
