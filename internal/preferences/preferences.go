// Package preferences binds the reader's synced settings (theme, fonts,
// display mode, shared-content visibility) to the signed-in user and to
// network reachability.
package preferences

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mrlokans/chumash/internal/cloud"
	"github.com/mrlokans/chumash/internal/entities"
	"github.com/mrlokans/chumash/internal/syncedstate"
)

// Local key for the shared-content toggle; the other keys live in entities.
const settingKeyShowShared = "torah-show-shared-content"

// Session reports the signed-in user and login/logout events.
type Session interface {
	UserID() string
	Subscribe(fn func(userID string)) func()
}

// Connectivity reports reachability changes.
type Connectivity interface {
	Online() bool
	Subscribe(fn func(online bool)) func()
}

type Options struct {
	Local        syncedstate.LocalStore
	Remote       cloud.Backend
	Session      Session
	Connectivity Connectivity
	Debounce     time.Duration
}

// Status is the sync status of every preference.
type Status struct {
	Theme      syncedstate.Snapshot[Theme]           `json:"theme"`
	Font       syncedstate.Snapshot[FontSettings]    `json:"font_settings"`
	Display    syncedstate.Snapshot[DisplaySettings] `json:"display_settings"`
	ShowShared syncedstate.Snapshot[bool]            `json:"show_shared_content"`
}

type Manager struct {
	theme      *syncedstate.Container[Theme]
	font       *syncedstate.Container[FontSettings]
	display    *syncedstate.Container[DisplaySettings]
	showShared *syncedstate.Container[bool]

	session      Session
	connectivity Connectivity
	unsubscribe  []func()
}

func New(opts Options) *Manager {
	userID := ""
	if opts.Session != nil {
		userID = opts.Session.UserID()
	}
	online := true
	if opts.Connectivity != nil {
		online = opts.Connectivity.Online()
	}

	return &Manager{
		theme: newContainer(opts, userID, online, entities.SettingKeyTheme,
			entities.ColumnTheme, ThemeClassic),
		font: newContainer(opts, userID, online, entities.SettingKeyFontSettings,
			entities.ColumnFontSettings, DefaultFontSettings),
		display: newContainer(opts, userID, online, entities.SettingKeyDisplaySettings,
			entities.ColumnDisplaySettings, DefaultDisplaySettings),
		showShared: newContainer(opts, userID, online, settingKeyShowShared,
			entities.ColumnShowSharedContent, true),
		session:      opts.Session,
		connectivity: opts.Connectivity,
	}
}

func newContainer[T any](opts Options, userID string, online bool, key, column string, def T) *syncedstate.Container[T] {
	return syncedstate.New(syncedstate.Options[T]{
		LocalKey:    key,
		Table:       entities.TableUserSettings,
		Column:      column,
		UserID:      userID,
		SyncEnabled: true,
		Default:     def,
		Debounce:    opts.Debounce,
		Local:       opts.Local,
		Remote:      opts.Remote,
		Online:      online,
	})
}

// Start loads cloud values for the current user and follows session and
// connectivity changes until Close. The returned channel closes once the
// initial cloud reads have finished.
func (m *Manager) Start(ctx context.Context) <-chan struct{} {
	mounts := []<-chan struct{}{
		m.theme.Start(ctx),
		m.font.Start(ctx),
		m.display.Start(ctx),
		m.showShared.Start(ctx),
	}

	if m.session != nil {
		m.unsubscribe = append(m.unsubscribe, m.session.Subscribe(func(userID string) {
			m.SetUser(userID)
		}))
	}
	if m.connectivity != nil {
		m.unsubscribe = append(m.unsubscribe, m.connectivity.Subscribe(m.SetOnline))
	}
	return all(mounts)
}

// SetUser rebinds every preference to userID.
func (m *Manager) SetUser(userID string) <-chan struct{} {
	return all([]<-chan struct{}{
		m.theme.SetUser(userID),
		m.font.SetUser(userID),
		m.display.SetUser(userID),
		m.showShared.SetUser(userID),
	})
}

func (m *Manager) SetOnline(online bool) {
	m.theme.SetOnline(online)
	m.font.SetOnline(online)
	m.display.SetOnline(online)
	m.showShared.SetOnline(online)
}

// SyncNow pushes every preference to the cloud immediately.
func (m *Manager) SyncNow(ctx context.Context) {
	m.theme.SyncNow(ctx)
	m.font.SyncNow(ctx)
	m.display.SyncNow(ctx)
	m.showShared.SyncNow(ctx)
}

func (m *Manager) Theme() Theme {
	return m.theme.Data()
}

func (m *Manager) SetTheme(t Theme) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return m.theme.SetData(t)
}

func (m *Manager) FontSettings() FontSettings {
	return m.font.Data()
}

// UpdateFontSettings merges patch, a partial JSON object, onto the current
// font settings.
func (m *Manager) UpdateFontSettings(patch json.RawMessage) error {
	var decodeErr error
	err := m.font.Update(func(prev FontSettings) FontSettings {
		next := prev
		if decodeErr = json.Unmarshal(patch, &next); decodeErr != nil {
			return prev
		}
		return next
	})
	if decodeErr != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, decodeErr)
	}
	return err
}

func (m *Manager) DisplaySettings() DisplaySettings {
	return m.display.Data().Sanitized()
}

// UpdateDisplaySettings merges patch, a partial JSON object, onto the current
// display settings.
func (m *Manager) UpdateDisplaySettings(patch json.RawMessage) error {
	var decodeErr error
	err := m.display.Update(func(prev DisplaySettings) DisplaySettings {
		next := prev
		if decodeErr = json.Unmarshal(patch, &next); decodeErr != nil {
			return prev
		}
		return next.Sanitized()
	})
	if decodeErr != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, decodeErr)
	}
	return err
}

func (m *Manager) ShowSharedContent() bool {
	return m.showShared.Data()
}

func (m *Manager) SetShowSharedContent(show bool) error {
	return m.showShared.SetData(show)
}

func (m *Manager) Status() Status {
	return Status{
		Theme:      m.theme.State(),
		Font:       m.font.State(),
		Display:    m.display.State(),
		ShowShared: m.showShared.State(),
	}
}

// Close unsubscribes from session and connectivity events and closes every
// container.
func (m *Manager) Close() {
	for _, fn := range m.unsubscribe {
		fn()
	}
	m.unsubscribe = nil

	m.theme.Close()
	m.font.Close()
	m.display.Close()
	m.showShared.Close()
}

func all(chans []<-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, ch := range chans {
			<-ch
		}
	}()
	return done
}
