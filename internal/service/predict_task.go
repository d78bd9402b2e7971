package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stock-dashboard-backend/internal/metrics"
	"stock-dashboard-backend/internal/model"
	"stock-dashboard-backend/internal/stockdata"
)

const (
	TaskPending  = "pending"
	TaskRunning  = "running"
	TaskDone     = "done"
	TaskFailed   = "failed"
	TaskCanceled = "canceled"
)

var (
	ErrNoSymbols      = errors.New("at least one symbol is required")
	ErrTooManySymbols = errors.New("too many symbols")
)

const canceledMessage = "task canceled"

// PredictTaskStatus is the externally visible state of a batch task.
type PredictTaskStatus struct {
	TaskID    string             `json:"taskId"`
	Status    string             `json:"status"`
	Current   string             `json:"current,omitempty"`
	Done      int                `json:"done"`
	Total     int                `json:"total"`
	Results   []model.Prediction `json:"results,omitempty"`
	Error     string             `json:"error,omitempty"`
	ExpiresAt time.Time          `json:"expiresAt"`
}

// Predictor produces one prediction.
type Predictor interface {
	Predict(ctx context.Context, symbol string, horizon model.Horizon) (model.Prediction, error)
}

// TaskOptions bounds the task manager.
type TaskOptions struct {
	TTL        time.Duration
	Workers    int
	MaxSymbols int
}

type predictTask struct {
	id        string
	status    string
	requestID string
	current   string
	done      int
	total     int
	results   []model.Prediction
	err       string
	expiresAt time.Time
	cancel    context.CancelFunc
}

// TaskManager runs batch predictions in the background. At most
// opts.Workers tasks run at once; finished tasks are kept for opts.TTL.
type TaskManager struct {
	predictor Predictor
	metrics   *metrics.Metrics
	opts      TaskOptions
	now       func() time.Time

	mu           sync.Mutex
	tasks        map[string]*predictTask
	requestTasks map[string]string
	sem          chan struct{}
	wg           sync.WaitGroup
}

// NewTaskManager builds a manager; zero options fall back to the defaults.
func NewTaskManager(p Predictor, m *metrics.Metrics, opts TaskOptions) *TaskManager {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.Workers <= 0 {
		opts.Workers = 3
	}
	if opts.MaxSymbols <= 0 {
		opts.MaxSymbols = 20
	}
	return &TaskManager{
		predictor:    p,
		metrics:      m,
		opts:         opts,
		now:          time.Now,
		tasks:        make(map[string]*predictTask),
		requestTasks: make(map[string]string),
		sem:          make(chan struct{}, opts.Workers),
	}
}

// Create starts a task for symbols. A live task created with the same
// requestID is returned instead; the bool reports whether a new task started.
func (m *TaskManager) Create(symbols []string, horizon model.Horizon, requestID string) (PredictTaskStatus, bool, error) {
	if len(symbols) == 0 {
		return PredictTaskStatus{}, false, ErrNoSymbols
	}
	if len(symbols) > m.opts.MaxSymbols {
		return PredictTaskStatus{}, false, fmt.Errorf("%w: %d > %d", ErrTooManySymbols, len(symbols), m.opts.MaxSymbols)
	}
	normalized := make([]string, len(symbols))
	for i, s := range symbols {
		n, err := stockdata.NormalizeSymbol(s)
		if err != nil {
			return PredictTaskStatus{}, false, err
		}
		normalized[i] = n
	}
	horizon, err := ParseHorizon(horizon)
	if err != nil {
		return PredictTaskStatus{}, false, err
	}
	requestID = strings.TrimSpace(requestID)

	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupLocked(now)

	if requestID != "" {
		if id, ok := m.requestTasks[requestID]; ok {
			if t, ok := m.tasks[id]; ok {
				return t.snapshot(), false, nil
			}
			delete(m.requestTasks, requestID)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &predictTask{
		id:        uuid.NewString(),
		status:    TaskPending,
		requestID: requestID,
		total:     len(normalized),
		expiresAt: now.Add(m.opts.TTL),
		cancel:    cancel,
	}
	m.tasks[t.id] = t
	if requestID != "" {
		m.requestTasks[requestID] = t.id
	}

	m.wg.Add(1)
	go m.run(ctx, t, normalized, horizon)
	return t.snapshot(), true, nil
}

// Get returns the status of taskID.
func (m *TaskManager) Get(taskID string) (PredictTaskStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupLocked(m.now())
	t, ok := m.tasks[taskID]
	if !ok {
		return PredictTaskStatus{}, false
	}
	return t.snapshot(), true
}

// Cancel stops a pending or running task. Finished tasks are returned as is.
func (m *TaskManager) Cancel(taskID string) (PredictTaskStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupLocked(m.now())
	t, ok := m.tasks[taskID]
	if !ok {
		return PredictTaskStatus{}, false
	}
	switch t.status {
	case TaskDone, TaskFailed, TaskCanceled:
	default:
		t.cancel()
		m.finishLocked(t, TaskCanceled, canceledMessage)
	}
	return t.snapshot(), true
}

// Cleanup drops expired tasks and returns how many were removed.
func (m *TaskManager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanupLocked(m.now())
}

// Wait blocks until every running task returns or ctx is done.
func (m *TaskManager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown cancels every unfinished task.
func (m *TaskManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.status == TaskPending || t.status == TaskRunning {
			t.cancel()
			m.finishLocked(t, TaskCanceled, canceledMessage)
		}
	}
}

func (m *TaskManager) run(ctx context.Context, t *predictTask, symbols []string, horizon model.Horizon) {
	defer m.wg.Done()
	defer t.cancel()

	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-m.sem }()

	m.mu.Lock()
	if t.status == TaskPending {
		t.status = TaskRunning
	}
	m.mu.Unlock()

	results := make([]model.Prediction, 0, len(symbols))
	for i, symbol := range symbols {
		m.mu.Lock()
		if t.status != TaskRunning {
			m.mu.Unlock()
			return
		}
		t.current = symbol
		m.mu.Unlock()

		p, err := m.predictor.Predict(ctx, symbol, horizon)

		m.mu.Lock()
		if t.status != TaskRunning {
			m.mu.Unlock()
			return
		}
		if err != nil {
			t.done = i
			t.results = results
			m.finishLocked(t, TaskFailed, err.Error())
			m.mu.Unlock()
			log.Warn().Err(err).Str("task", t.id).Str("symbol", symbol).Msg("predict task failed")
			return
		}
		results = append(results, p)
		t.done = i + 1
		m.mu.Unlock()
	}

	m.mu.Lock()
	t.results = results
	m.finishLocked(t, TaskDone, "")
	m.mu.Unlock()
}

func (m *TaskManager) finishLocked(t *predictTask, status, msg string) {
	t.status = status
	t.err = msg
	t.current = ""
	if t.requestID != "" {
		delete(m.requestTasks, t.requestID)
	}
	if m.metrics != nil {
		m.metrics.TasksTotal.WithLabelValues(status).Inc()
	}
}

func (m *TaskManager) cleanupLocked(now time.Time) int {
	removed := 0
	for id, t := range m.tasks {
		if now.After(t.expiresAt) {
			t.cancel()
			delete(m.tasks, id)
			removed++
		}
	}
	for rid, tid := range m.requestTasks {
		if _, ok := m.tasks[tid]; !ok {
			delete(m.requestTasks, rid)
		}
	}
	return removed
}

func (t *predictTask) snapshot() PredictTaskStatus {
	out := PredictTaskStatus{
		TaskID:    t.id,
		Status:    t.status,
		Current:   t.current,
		Done:      t.done,
		Total:     t.total,
		Error:     t.err,
		ExpiresAt: t.expiresAt,
	}
	if t.status == TaskDone || t.status == TaskFailed {
		out.Results = append([]model.Prediction(nil), t.results...)
	}
	return out
}
