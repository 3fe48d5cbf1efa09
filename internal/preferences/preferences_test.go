package preferences

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mrlokans/chumash/internal/auth"
	"github.com/mrlokans/chumash/internal/cloud"
	"github.com/mrlokans/chumash/internal/entities"
	"github.com/mrlokans/chumash/internal/scheduler"
	"github.com/mrlokans/chumash/internal/settingsstore"
	"github.com/mrlokans/chumash/internal/syncedstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	local   *settingsstore.SettingsStore
	remote  *cloud.MemoryBackend
	session *auth.Session
	monitor *scheduler.ConnectivityMonitor
}

func newFixture() *fixture {
	return &fixture{
		local:   settingsstore.NewMemory(),
		remote:  cloud.NewMemoryBackend(),
		session: auth.NewSession(settingsstore.NewMemory()),
		monitor: scheduler.NewConnectivityMonitor(nil, "@every 30s", true),
	}
}

func (f *fixture) manager(t *testing.T) *Manager {
	t.Helper()
	m := New(Options{
		Local:        f.local,
		Remote:       f.remote,
		Session:      f.session,
		Connectivity: f.monitor,
		Debounce:     20 * time.Millisecond,
	})
	t.Cleanup(m.Close)
	return m
}

func (f *fixture) cloudValue(userID, column string) string {
	raw, err := f.remote.ReadColumn(context.Background(), entities.TableUserSettings, column, userID)
	if err != nil {
		return ""
	}
	return string(raw)
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestManagerDefaults(t *testing.T) {
	m := newFixture().manager(t)
	wait(t, m.Start(context.Background()))

	assert.Equal(t, ThemeClassic, m.Theme())
	assert.Equal(t, DefaultFontSettings, m.FontSettings())
	assert.Equal(t, DefaultDisplaySettings, m.DisplaySettings())
	assert.True(t, m.ShowSharedContent())
	assert.Equal(t, syncedstate.StatusSynced, m.Status().Theme.Status)
}

func TestManagerLocalValues(t *testing.T) {
	t.Run("legacy raw theme", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.local.SetRaw(entities.SettingKeyTheme, "gold-silver"))
		assert.Equal(t, ThemeGoldSilver, f.manager(t).Theme())
	})

	t.Run("theme is validated and stored locally", func(t *testing.T) {
		f := newFixture()
		m := f.manager(t)

		assert.ErrorIs(t, m.SetTheme("purple"), ErrInvalidValue)
		require.NoError(t, m.SetTheme(ThemeElegantNight))

		raw, ok, err := f.local.GetRaw(entities.SettingKeyTheme)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, `"elegant-night"`, raw)
	})

	t.Run("partial updates merge", func(t *testing.T) {
		m := newFixture().manager(t)

		require.NoError(t, m.UpdateDisplaySettings(json.RawMessage(`{"pasukCount":5}`)))
		assert.Equal(t, DisplaySettings{Mode: DisplayScroll, PasukCount: 5}, m.DisplaySettings())

		require.NoError(t, m.UpdateFontSettings(json.RawMessage(`{"pasukSize":22,"pasukBold":true}`)))
		font := m.FontSettings()
		assert.Equal(t, 22, font.PasukSize)
		assert.True(t, font.PasukBold)
		assert.Equal(t, "David", font.PasukFont)

		assert.ErrorIs(t, m.UpdateFontSettings(json.RawMessage(`{"pasukSize":"big"}`)), ErrInvalidValue)
		assert.Equal(t, 22, m.FontSettings().PasukSize)
	})

	t.Run("display settings are sanitized", func(t *testing.T) {
		m := newFixture().manager(t)
		require.NoError(t, m.UpdateDisplaySettings(json.RawMessage(`{"mode":"","pasukCount":0}`)))
		assert.Equal(t, DefaultDisplaySettings, m.DisplaySettings())
	})
}

func TestManagerSession(t *testing.T) {
	t.Run("login loads cloud values", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.remote.WriteColumn(context.Background(), entities.TableUserSettings,
			entities.ColumnTheme, "u1", json.RawMessage(`"light"`)))
		require.NoError(t, f.remote.WriteColumn(context.Background(), entities.TableUserSettings,
			entities.ColumnDisplaySettings, "u1", json.RawMessage(`{"mode":"compact"}`)))

		m := f.manager(t)
		wait(t, m.Start(context.Background()))
		assert.Equal(t, ThemeClassic, m.Theme())

		f.session.Login("u1", "token")
		assert.Eventually(t, func() bool { return m.Theme() == ThemeLight }, time.Second, 5*time.Millisecond)
		assert.Eventually(t, func() bool {
			return m.DisplaySettings() == DisplaySettings{Mode: DisplayCompact, PasukCount: 10}
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("changes reach the cloud after login", func(t *testing.T) {
		f := newFixture()
		f.session.Login("u2", "token")
		m := f.manager(t)
		wait(t, m.Start(context.Background()))

		require.NoError(t, m.SetTheme(ThemeRoyalGold))
		assert.Eventually(t, func() bool {
			return f.cloudValue("u2", entities.ColumnTheme) == `"royal-gold"`
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("signed out changes stay local", func(t *testing.T) {
		f := newFixture()
		m := f.manager(t)
		wait(t, m.Start(context.Background()))

		require.NoError(t, m.SetShowSharedContent(false))
		m.SyncNow(context.Background())
		assert.False(t, m.ShowSharedContent())
		assert.Equal(t, "", f.cloudValue("", entities.ColumnShowSharedContent))
	})
}

func TestManagerConnectivity(t *testing.T) {
	f := newFixture()
	f.session.Login("u3", "token")
	m := f.manager(t)
	wait(t, m.Start(context.Background()))

	f.monitor.SetOnline(false)
	assert.Equal(t, syncedstate.StatusOffline, m.Status().Theme.Status)

	require.NoError(t, m.SetTheme(ThemeAncientScroll))
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, "", f.cloudValue("u3", entities.ColumnTheme))

	f.monitor.SetOnline(true)
	assert.Eventually(t, func() bool {
		return f.cloudValue("u3", entities.ColumnTheme) == `"ancient-scroll"`
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		return m.Status().Theme.Status == syncedstate.StatusSynced && m.Status().Theme.LastSynced > 0
	}, time.Second, 5*time.Millisecond)
}
