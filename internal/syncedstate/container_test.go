package syncedstate

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/chumash/internal/cloud"
	"github.com/mrlokans/chumash/internal/settingsstore"
)

const (
	testKey    = "torah-font-color-settings"
	testTable  = "user_settings"
	testColumn = "font_settings"
	debounce   = 30 * time.Millisecond
)

type fontSettings struct {
	Size  int    `json:"size"`
	Color string `json:"color"`
}

var defaultFont = fontSettings{Size: 16, Color: "black"}

type recordedWrite struct {
	UserID string
	Value  string
}

type fakeRemote struct {
	mu      sync.Mutex
	writes  []recordedWrite
	rows    map[string]json.RawMessage
	readErr error
	// onWrite runs for the n-th write (0 based) before it is recorded.
	onWrite func(n int) error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{rows: make(map[string]json.RawMessage)}
}

func (f *fakeRemote) ReadColumn(ctx context.Context, table, column, userID string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	v, ok := f.rows[userID+"/"+column]
	if !ok {
		return nil, cloud.ErrNoRow
	}
	return v, nil
}

func (f *fakeRemote) WriteColumn(ctx context.Context, table, column, userID string, value json.RawMessage) error {
	f.mu.Lock()
	n := len(f.writes)
	f.writes = append(f.writes, recordedWrite{UserID: userID, Value: string(value)})
	hook := f.onWrite
	f.mu.Unlock()

	if hook != nil {
		if err := hook(n); err != nil {
			return err
		}
	}
	f.mu.Lock()
	f.rows[userID+"/"+column] = value
	f.mu.Unlock()
	return nil
}

func (f *fakeRemote) Writes() []recordedWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedWrite(nil), f.writes...)
}

func newFont(t *testing.T, local *settingsstore.SettingsStore, remote cloud.Backend, online bool) *Container[fontSettings] {
	t.Helper()
	c := New(Options[fontSettings]{
		LocalKey:    testKey,
		Table:       testTable,
		Column:      testColumn,
		UserID:      "u1",
		SyncEnabled: true,
		Default:     defaultFont,
		Debounce:    debounce,
		Local:       local,
		Remote:      remote,
		Online:      online,
	})
	t.Cleanup(c.Close)
	return c
}

func localValue(t *testing.T, local *settingsstore.SettingsStore) fontSettings {
	t.Helper()
	raw, ok, err := local.GetRaw(testKey)
	require.NoError(t, err)
	require.True(t, ok)
	var v fontSettings
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestNew_LocalValue(t *testing.T) {
	t.Run("absent uses default", func(t *testing.T) {
		c := newFont(t, settingsstore.NewMemory(), nil, true)
		assert.Equal(t, defaultFont, c.Data())
		assert.Equal(t, StatusSynced, c.State().Status)
		assert.Zero(t, c.State().LastSynced)
	})

	t.Run("object is merged onto default", func(t *testing.T) {
		local := settingsstore.NewMemory()
		require.NoError(t, local.SetRaw(testKey, `{"size":20}`))

		c := newFont(t, local, nil, true)
		assert.Equal(t, fontSettings{Size: 20, Color: "black"}, c.Data())
	})

	t.Run("unreadable value uses default", func(t *testing.T) {
		local := settingsstore.NewMemory()
		require.NoError(t, local.SetRaw(testKey, `{"size":`))

		c := newFont(t, local, nil, true)
		assert.Equal(t, defaultFont, c.Data())
	})

	t.Run("null uses default", func(t *testing.T) {
		local := settingsstore.NewMemory()
		require.NoError(t, local.SetRaw(testKey, `null`))

		c := newFont(t, local, nil, true)
		assert.Equal(t, defaultFont, c.Data())
	})

	t.Run("raw string for string values", func(t *testing.T) {
		local := settingsstore.NewMemory()
		require.NoError(t, local.SetRaw("torah-theme", "dark"))

		c := New(Options[string]{LocalKey: "torah-theme", Default: "light", Local: local, Online: true})
		assert.Equal(t, "dark", c.Data())
	})

	t.Run("json string for string values", func(t *testing.T) {
		local := settingsstore.NewMemory()
		require.NoError(t, local.SetRaw("torah-theme", `"sepia"`))

		c := New(Options[string]{LocalKey: "torah-theme", Default: "light", Local: local, Online: true})
		assert.Equal(t, "sepia", c.Data())
	})

	t.Run("starts offline", func(t *testing.T) {
		c := newFont(t, settingsstore.NewMemory(), nil, false)
		assert.Equal(t, StatusOffline, c.State().Status)
	})
}

func TestSetData_WritesLocalBeforeReturning(t *testing.T) {
	local := settingsstore.NewMemory()
	c := newFont(t, local, newFakeRemote(), true)

	require.NoError(t, c.SetData(fontSettings{Size: 18, Color: "blue"}))
	assert.Equal(t, fontSettings{Size: 18, Color: "blue"}, localValue(t, local))

	require.NoError(t, c.Update(func(prev fontSettings) fontSettings {
		prev.Size++
		return prev
	}))
	assert.Equal(t, 19, localValue(t, local).Size)
}

func TestSetData_DebounceCollapsesWrites(t *testing.T) {
	remote := newFakeRemote()
	c := newFont(t, settingsstore.NewMemory(), remote, true)

	for size := 10; size <= 15; size++ {
		require.NoError(t, c.SetData(fontSettings{Size: size, Color: "black"}))
	}
	assert.Empty(t, remote.Writes(), "nothing is written before the debounce window closes")

	assert.Eventually(t, func() bool { return c.State().Status == StatusSynced && len(remote.Writes()) == 1 },
		time.Second, 5*time.Millisecond)
	time.Sleep(3 * debounce)

	writes := remote.Writes()
	require.Len(t, writes, 1)
	assert.JSONEq(t, `{"size":15,"color":"black"}`, writes[0].Value)
	assert.Equal(t, "u1", writes[0].UserID)
	assert.NotZero(t, c.State().LastSynced)
}

func TestSetOnline_OfflineDuringDebounce(t *testing.T) {
	remote := newFakeRemote()
	c := newFont(t, settingsstore.NewMemory(), remote, true)

	require.NoError(t, c.SetData(fontSettings{Size: 20}))
	c.SetOnline(false)
	require.NoError(t, c.SetData(fontSettings{Size: 21}))

	time.Sleep(3 * debounce)
	assert.Empty(t, remote.Writes())
	assert.Equal(t, StatusOffline, c.State().Status)

	c.SetOnline(true)
	assert.Eventually(t, func() bool { return len(remote.Writes()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * debounce)

	writes := remote.Writes()
	require.Len(t, writes, 1)
	assert.JSONEq(t, `{"size":21,"color":""}`, writes[0].Value)
	assert.Eventually(t, func() bool { return c.State().Status == StatusSynced }, time.Second, 5*time.Millisecond)
}

func TestSetOnline_NothingQueued(t *testing.T) {
	remote := newFakeRemote()
	c := newFont(t, settingsstore.NewMemory(), remote, false)

	c.SetOnline(true)
	time.Sleep(2 * debounce)

	assert.Empty(t, remote.Writes())
	assert.Equal(t, StatusSynced, c.State().Status)
}

func TestCloudWriteFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.onWrite = func(n int) error {
		if n == 0 {
			return errors.New("503")
		}
		return nil
	}
	local := settingsstore.NewMemory()
	c := newFont(t, local, remote, true)

	require.NoError(t, c.SetData(fontSettings{Size: 30}))
	assert.Eventually(t, func() bool { return c.State().Status == StatusError }, time.Second, 5*time.Millisecond)

	// Local value is untouched by the failure
	assert.Equal(t, 30, localValue(t, local).Size)

	// Retried on the next online event
	c.SetOnline(true)
	assert.Eventually(t, func() bool { return c.State().Status == StatusSynced }, time.Second, 5*time.Millisecond)
	writes := remote.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, writes[0].Value, writes[1].Value)
}

func TestSyncNow(t *testing.T) {
	t.Run("writes immediately", func(t *testing.T) {
		remote := newFakeRemote()
		c := newFont(t, settingsstore.NewMemory(), remote, true)
		require.NoError(t, c.SetData(fontSettings{Size: 40}))

		c.SyncNow(context.Background())

		writes := remote.Writes()
		require.Len(t, writes, 1)
		assert.JSONEq(t, `{"size":40,"color":""}`, writes[0].Value)
		assert.Equal(t, StatusSynced, c.State().Status)

		// The debounced write was superseded
		time.Sleep(3 * debounce)
		assert.Len(t, remote.Writes(), 1)
	})

	t.Run("no user", func(t *testing.T) {
		remote := newFakeRemote()
		c := New(Options[fontSettings]{
			LocalKey: testKey, Table: testTable, Column: testColumn, SyncEnabled: true,
			Default: defaultFont, Debounce: debounce, Local: settingsstore.NewMemory(), Remote: remote, Online: true,
		})
		defer c.Close()

		require.NoError(t, c.SetData(fontSettings{Size: 1}))
		c.SyncNow(context.Background())
		time.Sleep(2 * debounce)

		assert.Empty(t, remote.Writes())
	})

	t.Run("sync disabled", func(t *testing.T) {
		remote := newFakeRemote()
		c := New(Options[fontSettings]{
			LocalKey: testKey, Table: testTable, Column: testColumn, UserID: "u1",
			Default: defaultFont, Debounce: debounce, Local: settingsstore.NewMemory(), Remote: remote, Online: true,
		})
		defer c.Close()

		require.NoError(t, c.SetData(fontSettings{Size: 1}))
		c.SyncNow(context.Background())
		time.Sleep(2 * debounce)

		assert.Empty(t, remote.Writes())
	})
}

func TestStart_LoadsCloudValue(t *testing.T) {
	t.Run("cloud value is merged and stored locally", func(t *testing.T) {
		remote := newFakeRemote()
		remote.rows["u1/"+testColumn] = json.RawMessage(`{"color":"red"}`)
		local := settingsstore.NewMemory()
		require.NoError(t, local.SetRaw(testKey, `{"size":22,"color":"blue"}`))
		c := newFont(t, local, remote, true)

		<-c.Start(context.Background())

		state := c.State()
		assert.Equal(t, fontSettings{Size: 16, Color: "red"}, state.Data)
		assert.Equal(t, StatusSynced, state.Status)
		assert.NotZero(t, state.LastSynced)
		assert.Equal(t, state.Data, localValue(t, local))
		assert.Empty(t, remote.Writes(), "loading does not write back")
	})

	t.Run("no row keeps local value", func(t *testing.T) {
		local := settingsstore.NewMemory()
		require.NoError(t, local.SetRaw(testKey, `{"size":22}`))
		c := newFont(t, local, newFakeRemote(), true)

		<-c.Start(context.Background())

		assert.Equal(t, 22, c.Data().Size)
		assert.Zero(t, c.State().LastSynced)
	})

	t.Run("read failure is swallowed", func(t *testing.T) {
		remote := newFakeRemote()
		remote.readErr = errors.New("timeout")
		c := newFont(t, settingsstore.NewMemory(), remote, true)

		<-c.Start(context.Background())

		assert.Equal(t, defaultFont, c.Data())
		assert.Equal(t, StatusSynced, c.State().Status)
	})

	t.Run("null column keeps local value", func(t *testing.T) {
		remote := newFakeRemote()
		remote.rows["u1/"+testColumn] = json.RawMessage(`null`)
		c := newFont(t, settingsstore.NewMemory(), remote, true)

		<-c.Start(context.Background())

		assert.Equal(t, defaultFont, c.Data())
	})
}

func TestClose_DropsPendingWrite(t *testing.T) {
	remote := newFakeRemote()
	c := newFont(t, settingsstore.NewMemory(), remote, true)

	require.NoError(t, c.SetData(fontSettings{Size: 50}))
	c.Close()
	time.Sleep(3 * debounce)

	assert.Empty(t, remote.Writes())
}

func TestClose_WaitsForInFlightWrite(t *testing.T) {
	release := make(chan struct{})
	remote := newFakeRemote()
	remote.onWrite = func(int) error {
		<-release
		return nil
	}
	c := newFont(t, settingsstore.NewMemory(), remote, true)

	require.NoError(t, c.SetData(fontSettings{Size: 50}))
	assert.Eventually(t, func() bool { return c.State().Status == StatusSyncing }, time.Second, 5*time.Millisecond)

	closed := make(chan struct{})
	go func() {
		c.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a write was in flight")
	case <-time.After(2 * debounce):
	}

	close(release)
	<-closed
	assert.Len(t, remote.Writes(), 1)
}

func TestStaleWriteDoesNotOverrideNewer(t *testing.T) {
	release := make(chan struct{})
	remote := newFakeRemote()
	remote.onWrite = func(n int) error {
		if n == 0 {
			<-release
			return errors.New("slow failure")
		}
		return nil
	}
	c := newFont(t, settingsstore.NewMemory(), remote, true)

	require.NoError(t, c.SetData(fontSettings{Size: 1}))
	assert.Eventually(t, func() bool { return len(remote.Writes()) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.SetData(fontSettings{Size: 2}))
	c.SyncNow(context.Background())
	assert.Equal(t, StatusSynced, c.State().Status)
	synced := c.State().LastSynced

	// The older write fails after the newer one succeeded
	close(release)
	c.Close()

	assert.Equal(t, StatusSynced, c.State().Status)
	assert.Equal(t, synced, c.State().LastSynced)
}

func TestSetUser(t *testing.T) {
	t.Run("login loads the new user's value", func(t *testing.T) {
		remote := newFakeRemote()
		remote.rows["u2/"+testColumn] = json.RawMessage(`{"size":99}`)
		c := newFont(t, settingsstore.NewMemory(), remote, true)

		<-c.SetUser("u2")

		assert.Equal(t, "u2", c.UserID())
		assert.Equal(t, 99, c.Data().Size)
	})

	t.Run("logout stops syncing", func(t *testing.T) {
		remote := newFakeRemote()
		c := newFont(t, settingsstore.NewMemory(), remote, true)

		require.NoError(t, c.SetData(fontSettings{Size: 3}))
		<-c.SetUser("")
		require.NoError(t, c.SetData(fontSettings{Size: 4}))
		time.Sleep(3 * debounce)

		assert.Empty(t, remote.Writes())
	})

	t.Run("same user is a no-op", func(t *testing.T) {
		c := newFont(t, settingsstore.NewMemory(), newFakeRemote(), true)
		<-c.SetUser("u1")
		assert.Equal(t, "u1", c.UserID())
	})
}

func TestSubscribe(t *testing.T) {
	c := newFont(t, settingsstore.NewMemory(), nil, true)

	var mu sync.Mutex
	var seen []Snapshot[fontSettings]
	unsubscribe := c.Subscribe(func(s Snapshot[fontSettings]) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	require.NoError(t, c.SetData(fontSettings{Size: 5}))
	c.SetOnline(false)
	unsubscribe()
	require.NoError(t, c.SetData(fontSettings{Size: 6}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, 5, seen[0].Data.Size)
	assert.Equal(t, StatusOffline, seen[1].Status)
}
