package repository

import (
	"sync"
	"time"

	"github.com/costmatrix/analytics-engine/internal/models"
)

// progressExpiry is how long a ProgressTask remains readable after
// reaching a terminal state, well past the minimum window callers poll on.
const progressExpiry = time.Hour

// progressStore is the ephemeral, in-process ProgressTask table. It is
// never persisted to the relational store — restarting the process loses
// all in-flight progress, which is acceptable since the underlying
// ingestion either already committed or did not.
type progressStore struct {
	mu    sync.Mutex
	tasks map[string]*progressEntry
}

type progressEntry struct {
	task      models.ProgressTask
	expiresAt time.Time
}

func newProgressStore() *progressStore {
	return &progressStore{tasks: make(map[string]*progressEntry)}
}

func (p *progressStore) create(task models.ProgressTask) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sweepLocked()
	p.tasks[task.TaskID] = &progressEntry{task: task}
}

func (p *progressStore) update(taskID string, mutate func(*models.ProgressTask)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.tasks[taskID]
	if !ok {
		return
	}
	mutate(&entry.task)
	if entry.task.Status == models.ProgressCompleted || entry.task.Status == models.ProgressFailed {
		entry.expiresAt = time.Now().Add(progressExpiry)
	}
}

func (p *progressStore) get(taskID string) (models.ProgressTask, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.tasks[taskID]
	if !ok {
		return models.ProgressTask{}, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(p.tasks, taskID)
		return models.ProgressTask{}, false
	}
	return entry.task, true
}

func (p *progressStore) sweepLocked() {
	now := time.Now()
	for id, entry := range p.tasks {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(p.tasks, id)
		}
	}
}
