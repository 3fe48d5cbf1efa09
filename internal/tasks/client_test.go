package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/mrlokans/chumash/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasksDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "chumash-tasks.db"), TasksDBPath(filepath.Join("data", "chumash.db")))
	assert.Equal(t, "store-tasks", TasksDBPath("store"))
}

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	_, err = os.Stat(filepath.Join(tmpDir, "test-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")

	assert.NoError(t, client.Close())
}

func TestClientStartStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestClientStopBeforeStart(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, client.Stop(context.Background()))
}

type echoTask struct {
	Value string `json:"value"`
}

func (t echoTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "echo",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestClientEnqueue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), cfg)
	require.NoError(t, err)
	defer client.Close()

	executed := make(chan string, 1)
	client.Register(backlite.NewQueue(func(ctx context.Context, task echoTask) error {
		executed <- task.Value
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.Enqueue(echoTask{Value: "שלום"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case val := <-executed:
		assert.Equal(t, "שלום", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestStatusName(t *testing.T) {
	assert.Equal(t, "pending", StatusName(backlite.TaskStatusPending))
	assert.Equal(t, "running", StatusName(backlite.TaskStatusRunning))
	assert.Equal(t, "success", StatusName(backlite.TaskStatusSuccess))
	assert.Equal(t, "failure", StatusName(backlite.TaskStatusFailure))
	assert.Equal(t, "not_found", StatusName(backlite.TaskStatusNotFound))
}

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Equal(t, 2, cfg.Workers)
		assert.Equal(t, 3, cfg.MaxRetries)
		assert.Equal(t, time.Minute, cfg.RetryDelay)
		assert.Equal(t, 10*time.Minute, cfg.TaskTimeout)
		assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
		assert.Equal(t, time.Hour, cfg.CleanupInterval)
		assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
	})

	t.Run("from application config", func(t *testing.T) {
		cfg := ConfigFrom(config.Tasks{Workers: 4, ReleaseAfter: time.Minute})
		assert.Equal(t, 4, cfg.Workers)
		assert.Equal(t, time.Minute, cfg.ReleaseAfter)
		assert.Equal(t, 3, cfg.MaxRetries)
	})
}

func TestQueueConfigs(t *testing.T) {
	tests := []struct {
		task        backlite.Task
		name        string
		maxAttempts int
	}{
		{PreloadSeferTask{Sefer: 1}, QueuePreloadSefer, 3},
		{DownloadSefarimTask{}, QueueDownloadSefarim, 1},
		{DownloadCommentariesTask{}, QueueDownloadCommentaries, 1},
		{BuildSearchIndexTask{}, QueueBuildSearchIndex, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.task.Config()
			assert.Equal(t, tt.name, cfg.Name)
			assert.Equal(t, tt.maxAttempts, cfg.MaxAttempts)
			assert.NotNil(t, cfg.Retention)
		})
	}
}
