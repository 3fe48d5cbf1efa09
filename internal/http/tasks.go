package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/chumash/internal/entities"
	"github.com/mrlokans/chumash/internal/tasks"
)

// TaskQueue enqueues tasks and reports their status.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// SyncProgressLister lists bulk download progress records.
type SyncProgressLister interface {
	List() ([]entities.SyncProgress, error)
}

// TasksController handles task queue management endpoints.
type TasksController struct {
	queue    TaskQueue
	progress SyncProgressLister
	sefarim  []int
}

// NewTasksController creates a new TasksController. sefarim are the books a
// build_search_index task indexes.
func NewTasksController(queue TaskQueue, progress SyncProgressLister, sefarim []int) *TasksController {
	return &TasksController{queue: queue, progress: progress, sefarim: sefarim}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

var taskTypes = []TaskTypeInfo{
	{
		Type:        tasks.QueuePreloadSefer,
		Description: "Load one sefer into the caches (requires sefer)",
		Queue:       tasks.QueuePreloadSefer,
	},
	{
		Type:        tasks.QueueDownloadSefarim,
		Description: "Download every sefer of the catalog",
		Queue:       tasks.QueueDownloadSefarim,
	},
	{
		Type:        tasks.QueueDownloadCommentaries,
		Description: "Download commentaries, for one mefaresh or all of them",
		Queue:       tasks.QueueDownloadCommentaries,
	},
	{
		Type:        tasks.QueueBuildSearchIndex,
		Description: "Rebuild the search index",
		Queue:       tasks.QueueBuildSearchIndex,
	},
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"task_types": taskTypes})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": tasks.StatusName(status),
	})
}

// RunTaskRequest is the request body for running a task.
type RunTaskRequest struct {
	// Sefer is required for preload_sefer
	Sefer int `json:"sefer,omitempty"`
	// Mefaresh limits download_commentaries to one commentator
	Mefaresh string `json:"mefaresh,omitempty"`
}

// RunTask handles POST /api/tasks/:type/run
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid JSON body")
			return
		}
	}

	var task backlite.Task
	switch taskType {
	case tasks.QueuePreloadSefer:
		if req.Sefer <= 0 {
			respondBadRequest(c, "sefer is required for preload_sefer")
			return
		}
		task = tasks.PreloadSeferTask{Sefer: req.Sefer}
	case tasks.QueueDownloadSefarim:
		task = tasks.DownloadSefarimTask{}
	case tasks.QueueDownloadCommentaries:
		task = tasks.DownloadCommentariesTask{Mefaresh: req.Mefaresh}
	case tasks.QueueBuildSearchIndex:
		task = tasks.BuildSearchIndexTask{Sefarim: tc.sefarim}
	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	id, err := tc.queue.Enqueue(task)
	if err != nil {
		respondInternalError(c, err, "enqueue "+taskType)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": id,
		"type":    taskType,
		"message": "task enqueued",
	})
}

// GetSyncProgress handles GET /api/sync/progress
func (tc *TasksController) GetSyncProgress(c *gin.Context) {
	if tc.progress == nil {
		c.JSON(http.StatusOK, []entities.SyncProgress{})
		return
	}
	progress, err := tc.progress.List()
	if err != nil {
		respondInternalError(c, err, "sync progress")
		return
	}
	if progress == nil {
		progress = []entities.SyncProgress{}
	}
	c.JSON(http.StatusOK, progress)
}
