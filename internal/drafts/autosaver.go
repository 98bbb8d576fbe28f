package drafts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/apperrors"
	"go.uber.org/zap"
)

// Save triggers
const (
	TriggerDebounce = "debounce"
	TriggerInterval = "interval"
	TriggerManual   = "manual"
	TriggerClose    = "close"
)

const saveTimeout = 5 * time.Second

// idleIntervals is how many save intervals a clean session may go untouched
// before it is dropped from memory. The stored draft is kept.
const idleIntervals = 3

// Autosaver coalesces form updates per brand. A save happens after the form
// has been idle for the debounce period and on every interval tick, but only
// when the serialized form differs from the last save and has content.
type Autosaver struct {
	store    Store
	debounce time.Duration
	interval time.Duration
	log      *zap.Logger
	onSave   func(trigger string)
	now      func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

type session struct {
	form      CampaignForm
	lastSaved []byte
	lastTouch time.Time
	timer     *time.Timer
	discarded bool
}

func NewAutosaver(store Store, debounce, interval time.Duration, log *zap.Logger) *Autosaver {
	return &Autosaver{
		store:    store,
		debounce: debounce,
		interval: interval,
		log:      log,
		onSave:   func(string) {},
		now:      time.Now,
		sessions: make(map[uuid.UUID]*session),
	}
}

// OnSave registers a hook called after every successful write.
func (a *Autosaver) OnSave(fn func(trigger string)) {
	a.onSave = fn
}

// Run drives the periodic save until ctx is cancelled, then flushes and stops
// every session.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.flushAll(ctx, TriggerInterval)
			a.evictIdle()
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
			a.flushAll(flushCtx, TriggerClose)
			cancel()
			a.stopAll()
			return
		}
	}
}

// Touch records the latest form state and re-arms the debounce timer.
func (a *Autosaver) Touch(owner uuid.UUID, form CampaignForm) {
	form = form.Clone()

	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.sessions[owner]
	if !ok {
		s = &session{}
		a.sessions[owner] = s
	}
	s.form = form
	s.lastTouch = a.now()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(a.debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if _, err := a.flush(ctx, owner, s, TriggerDebounce); err != nil {
			a.log.Warn("draft autosave failed", zap.String("owner", owner.String()), zap.Error(err))
		}
	})
}

// Load returns the pending form if one is in flight, otherwise the stored draft
// merged over the defaults. A stored draft opens a session whose last save is
// that draft, so resubmitting it unchanged writes nothing.
func (a *Autosaver) Load(ctx context.Context, owner uuid.UUID, brandName string) (CampaignForm, error) {
	if form, ok := a.pending(owner); ok {
		return form, nil
	}

	form := Defaults(brandName)
	data, err := a.store.Load(ctx, owner)
	if errors.Is(err, apperrors.ErrNotFound) {
		return form, nil
	}
	if err != nil {
		return form, err
	}
	if err := json.Unmarshal(data, &form); err != nil {
		a.log.Warn("discarding unreadable draft", zap.String("owner", owner.String()), zap.Error(err))
		return Defaults(brandName), nil
	}
	form.Normalize()
	if brandName != "" {
		form.BrandName = brandName
	}

	saved, err := json.Marshal(form)
	if err != nil {
		return form, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.sessions[owner]; ok {
		// a Touch won the race
		return s.form.Clone(), nil
	}
	a.sessions[owner] = &session{form: form.Clone(), lastSaved: saved, lastTouch: a.now()}
	return form, nil
}

func (a *Autosaver) pending(owner uuid.UUID) (CampaignForm, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.sessions[owner]
	if !ok {
		return CampaignForm{}, false
	}
	return s.form.Clone(), true
}

// Patch applies the changed sections on top of the current form and touches it.
func (a *Autosaver) Patch(ctx context.Context, owner uuid.UUID, brandName string, p Patch) (CampaignForm, error) {
	form, err := a.Load(ctx, owner, brandName)
	if err != nil {
		return form, err
	}
	p.Apply(&form)
	a.Touch(owner, form)
	return form, nil
}

// Flush saves the owner's pending form now, subject to the usual checks.
func (a *Autosaver) Flush(ctx context.Context, owner uuid.UUID) (bool, error) {
	a.mu.Lock()
	s, ok := a.sessions[owner]
	a.mu.Unlock()
	if !ok {
		return false, nil
	}
	return a.flush(ctx, owner, s, TriggerManual)
}

// Close flushes and forgets the owner's session. No timer fires afterwards.
func (a *Autosaver) Close(ctx context.Context, owner uuid.UUID) error {
	a.mu.Lock()
	s, ok := a.sessions[owner]
	if ok {
		if s.timer != nil {
			s.timer.Stop()
		}
		delete(a.sessions, owner)
	}
	a.mu.Unlock()
	if !ok {
		return nil
	}
	_, err := a.flush(ctx, owner, s, TriggerClose)
	return err
}

// Discard drops the pending form and the stored draft, e.g. after the
// campaign has been submitted.
func (a *Autosaver) Discard(ctx context.Context, owner uuid.UUID) error {
	a.mu.Lock()
	if s, ok := a.sessions[owner]; ok {
		s.discarded = true
		if s.timer != nil {
			s.timer.Stop()
		}
		delete(a.sessions, owner)
	}
	a.mu.Unlock()
	return a.store.Clear(ctx, owner)
}

func (a *Autosaver) flush(ctx context.Context, owner uuid.UUID, s *session, trigger string) (bool, error) {
	a.mu.Lock()
	if s.discarded || !s.form.HasContent() {
		a.mu.Unlock()
		return false, nil
	}
	data, err := json.Marshal(s.form)
	if err != nil {
		a.mu.Unlock()
		return false, err
	}
	if bytes.Equal(data, s.lastSaved) {
		a.mu.Unlock()
		return false, nil
	}
	prev := s.lastSaved
	s.lastSaved = data
	a.mu.Unlock()

	if err := a.store.Save(ctx, owner, data); err != nil {
		a.mu.Lock()
		if bytes.Equal(s.lastSaved, data) {
			s.lastSaved = prev
		}
		a.mu.Unlock()
		return false, err
	}

	a.mu.Lock()
	discarded := s.discarded
	a.mu.Unlock()
	if discarded {
		// lost a race with Discard; do not resurrect the draft
		return false, a.store.Clear(ctx, owner)
	}

	a.onSave(trigger)
	return true, nil
}

func (a *Autosaver) flushAll(ctx context.Context, trigger string) {
	a.mu.Lock()
	pending := make(map[uuid.UUID]*session, len(a.sessions))
	for owner, s := range a.sessions {
		pending[owner] = s
	}
	a.mu.Unlock()

	for owner, s := range pending {
		if _, err := a.flush(ctx, owner, s, trigger); err != nil {
			a.log.Warn("draft save failed", zap.String("owner", owner.String()), zap.String("trigger", trigger), zap.Error(err))
		}
	}
}

// evictIdle forgets sessions that are saved and untouched for idleIntervals.
func (a *Autosaver) evictIdle() int {
	cutoff := a.now().Add(-idleIntervals * a.interval)

	a.mu.Lock()
	defer a.mu.Unlock()
	evicted := 0
	for owner, s := range a.sessions {
		if s.lastTouch.After(cutoff) {
			continue
		}
		if s.form.HasContent() {
			data, err := json.Marshal(s.form)
			if err != nil || !bytes.Equal(data, s.lastSaved) {
				continue
			}
		}
		if s.timer != nil {
			s.timer.Stop()
		}
		delete(a.sessions, owner)
		evicted++
	}
	return evicted
}

func (a *Autosaver) stopAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for owner, s := range a.sessions {
		if s.timer != nil {
			s.timer.Stop()
		}
		delete(a.sessions, owner)
	}
}
