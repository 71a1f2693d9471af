// Package roster keeps each user's reference images in sync with the
// attendance backend. The backend is the only authority on slot indices and
// the three-image cap, so every mutation is followed by a full re-fetch of
// that user's slots instead of a local patch. Rows for different users are
// independent: a failed or slow fetch for one user never blocks another.
package roster

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/attendbot/attend-admin/internal/attend"
	"github.com/attendbot/attend-admin/internal/clock"
)

// API is the slice of the backend client the manager needs.
type API interface {
	ListUsers() ([]attend.User, error)
	ListFaces(userID int) ([]string, error)
	AddFace(userID int, image []byte) error
	ReplaceFace(userID, slot int, image []byte) error
	DeleteFace(userID, slot int) error
	DeleteUser(userID int) error
	ResolveLocator(locator string) string
}

// Phase is the sync state of one user's row.
type Phase int

const (
	// PhaseLoading means a fetch or mutation is in flight for the row.
	PhaseLoading Phase = iota
	// PhaseLoaded means the slots mirror the backend's last answer.
	PhaseLoaded
	// PhaseEmpty means the last fetch failed; the row renders as zero
	// slots without taking the rest of the table down.
	PhaseEmpty
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseEmpty:
		return "empty"
	}
	return "unknown"
}

// Slot is one reference image as the UI should render it. URL already carries
// the cache-busting token, so a replaced image at the same index is never
// served from a stale browser cache.
type Slot struct {
	Index   int    `json:"index"`
	Locator string `json:"locator"`
	URL     string `json:"url"`
}

// Row is the UI-facing state of one user's reference images.
type Row struct {
	Phase Phase  `json:"-"`
	State string `json:"state"`
	Slots []Slot `json:"slots"`
	// FetchErr records why the row degraded to empty. Local to the row.
	FetchErr string `json:"fetch_error,omitempty"`
}

// Manager owns the per-user slot rows and the cached user list.
type Manager struct {
	api     API
	clock   clock.Clock
	confirm Confirmer

	mu    sync.Mutex
	rows  map[int]*Row
	users []attend.User
	gen   uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock used for cache-busting tokens.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithConfirmer replaces the destructive-action confirmer.
func WithConfirmer(c Confirmer) Option {
	return func(m *Manager) { m.confirm = c }
}

// New creates a manager on top of the backend client. By default destructive
// actions are auto-confirmed; the CLI installs a terminal prompt instead.
func New(api API, opts ...Option) *Manager {
	m := &Manager{
		api:     api,
		clock:   clock.New(),
		confirm: AutoConfirm,
		rows:    make(map[int]*Row),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// bustToken produces a token that differs from every previously issued one,
// so a refreshed locator never renders cached image bytes.
func (m *Manager) bustToken() string {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.mu.Unlock()
	return fmt.Sprintf("%d.%d", m.clock.Now().UnixNano(), gen)
}

// slotIndex derives the 1-based slot index from a backend locator such as
// "/users/7/face/2". Falls back to the list position when the locator does
// not end in a number.
func slotIndex(locator string, position int) int {
	trimmed := strings.TrimRight(locator, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		if n, err := strconv.Atoi(trimmed[i+1:]); err == nil && n > 0 {
			return n
		}
	}
	return position + 1
}

// buildSlots resolves locators against the backend origin and stamps each
// with a fresh cache-busting token.
func (m *Manager) buildSlots(locators []string) []Slot {
	token := m.bustToken()
	slots := make([]Slot, 0, len(locators))
	for i, locator := range locators {
		slots = append(slots, Slot{
			Index:   slotIndex(locator, i),
			Locator: locator,
			URL:     m.api.ResolveLocator(locator) + "?v=" + token,
		})
	}
	return slots
}

// setRow stores a row snapshot. Called once per completed fetch, so when two
// reconciliations race on the same user, the last one to resolve wins the
// displayed state.
func (m *Manager) setRow(userID int, row Row) {
	row.State = row.Phase.String()
	m.mu.Lock()
	stored := row
	m.rows[userID] = &stored
	m.mu.Unlock()
}

// Row returns a copy of the user's current row state. Unknown users report
// PhaseLoading with no slots.
func (m *Manager) Row(userID int) Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[userID]; ok {
		return *row
	}
	return Row{Phase: PhaseLoading, State: PhaseLoading.String()}
}

// Rows returns a copy of every known row keyed by user id.
func (m *Manager) Rows() map[int]Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int]Row, len(m.rows))
	for id, row := range m.rows {
		out[id] = *row
	}
	return out
}

// RefreshSlots re-derives the user's row from the backend. A transport or
// backend failure degrades the row to empty and is recorded on the row, not
// returned: one broken user must not break the whole table. An authorization
// failure does propagate, because by then the whole session is gone.
func (m *Manager) RefreshSlots(userID int) (Row, error) {
	m.setRow(userID, Row{Phase: PhaseLoading})

	locators, err := m.api.ListFaces(userID)
	if err != nil {
		if errors.Is(err, attend.ErrAuthorizationExpired) {
			return Row{}, err
		}
		row := Row{Phase: PhaseEmpty, FetchErr: err.Error()}
		m.setRow(userID, row)
		return m.Row(userID), nil
	}

	row := Row{Phase: PhaseLoaded, Slots: m.buildSlots(locators)}
	m.setRow(userID, row)
	return m.Row(userID), nil
}

// RefreshUsers re-fetches the user list. Called after any mutation that can
// change identity-level fields (enrollment, deletion, face counts).
func (m *Manager) RefreshUsers() ([]attend.User, error) {
	users, err := m.api.ListUsers()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.users = users
	m.mu.Unlock()
	return users, nil
}

// Users returns the cached user list.
func (m *Manager) Users() []attend.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]attend.User, len(m.users))
	copy(out, m.users)
	return out
}

// loadedSlots returns the user's known slots, fetching them first when the
// row has never been loaded. The bool reports whether the slots are known at
// all; an unknown row whose fetch degraded to empty is treated as zero slots.
func (m *Manager) loadedSlots(userID int) ([]Slot, error) {
	row := m.Row(userID)
	if row.Phase == PhaseLoading && len(row.Slots) == 0 {
		refreshed, err := m.RefreshSlots(userID)
		if err != nil {
			return nil, err
		}
		row = refreshed
	}
	return row.Slots, nil
}

// AddFace uploads one new reference image for the user. The three-slot cap
// is checked against the known row before anything is dispatched; at
// capacity the call fails with attend.ErrCapacityExceeded and zero network
// calls. On success the row and the user list are re-derived from the
// backend.
func (m *Manager) AddFace(userID int, image []byte) error {
	slots, err := m.loadedSlots(userID)
	if err != nil {
		return err
	}
	if len(slots) >= attend.MaxFaceSlots {
		return attend.ErrCapacityExceeded
	}

	prior := m.Row(userID)
	m.setRow(userID, Row{Phase: PhaseLoading})

	if err := m.api.AddFace(userID, image); err != nil {
		// Nothing changed remotely; restore the pre-mutation view.
		m.setRow(userID, prior)
		return err
	}

	if _, err := m.RefreshSlots(userID); err != nil {
		return err
	}
	_, err = m.RefreshUsers()
	return err
}

// ReplaceFace swaps the image in an occupied slot. The refreshed row carries
// a new cache-busting token, so the browser renders the new bytes even
// though the locator path is unchanged.
func (m *Manager) ReplaceFace(userID, slot int, image []byte) error {
	slots, err := m.loadedSlots(userID)
	if err != nil {
		return err
	}
	if !slotOccupied(slots, slot) {
		return fmt.Errorf("slot %d is not occupied", slot)
	}

	prior := m.Row(userID)
	m.setRow(userID, Row{Phase: PhaseLoading})

	if err := m.api.ReplaceFace(userID, slot, image); err != nil {
		m.setRow(userID, prior)
		return err
	}

	_, err = m.RefreshSlots(userID)
	return err
}

// DeleteFace removes the reference image at the given slot after the
// operator confirms. A declined confirmation returns ErrAborted with no side
// effect. On success both the row and the user list are re-derived, since
// deletion can change identity-level face indicators.
func (m *Manager) DeleteFace(userID, slot int) error {
	if !m.confirm.Confirm(fmt.Sprintf("Delete reference image %d of user %d?", slot, userID)) {
		return ErrAborted
	}

	prior := m.Row(userID)
	m.setRow(userID, Row{Phase: PhaseLoading})

	if err := m.api.DeleteFace(userID, slot); err != nil {
		m.setRow(userID, prior)
		return err
	}

	if _, err := m.RefreshSlots(userID); err != nil {
		return err
	}
	_, err := m.RefreshUsers()
	return err
}

// DeleteUser removes the user after confirmation. The backend cascades the
// deletion to the user's reference images, so the local row is dropped
// outright rather than re-fetched.
func (m *Manager) DeleteUser(userID int) error {
	if !m.confirm.Confirm(fmt.Sprintf("Delete user %d and all reference images?", userID)) {
		return ErrAborted
	}

	if err := m.api.DeleteUser(userID); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.rows, userID)
	m.mu.Unlock()

	_, err := m.RefreshUsers()
	return err
}

func slotOccupied(slots []Slot, index int) bool {
	for _, s := range slots {
		if s.Index == index {
			return true
		}
	}
	return false
}
