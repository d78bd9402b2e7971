package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stock-dashboard-backend/internal/metrics"
	"stock-dashboard-backend/internal/model"
)

type fakePredictor struct {
	mu      sync.Mutex
	calls   []string
	failOn  string
	block   chan struct{}
	started chan string
}

func (f *fakePredictor) Predict(ctx context.Context, symbol string, horizon model.Horizon) (model.Prediction, error) {
	f.mu.Lock()
	f.calls = append(f.calls, symbol)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- symbol
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return model.Prediction{}, ctx.Err()
		}
	}
	if symbol == f.failOn {
		return model.Prediction{}, errors.New("chart unavailable")
	}
	return model.Prediction{ID: symbol + "-id", Symbol: symbol, Timeframe: horizon, Trend: model.TrendNeutral}, nil
}

func waitStatus(t *testing.T, m *TaskManager, id, want string) PredictTaskStatus {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		st, ok := m.Get(id)
		if !ok {
			t.Fatalf("task %s disappeared", id)
		}
		if st.Status == want {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("task %s: status %s, want %s", id, st.Status, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTaskManager_RunsToCompletion(t *testing.T) {
	m := NewTaskManager(&fakePredictor{}, metrics.New(), TaskOptions{})
	st, created, err := m.Create([]string{"aapl", "MSFT", "tsla"}, model.Horizon1M, "")
	if err != nil || !created {
		t.Fatalf("create: %v %v", created, err)
	}
	if st.Total != 3 {
		t.Errorf("total: got %d", st.Total)
	}

	st = waitStatus(t, m, st.TaskID, TaskDone)
	if st.Done != 3 || len(st.Results) != 3 {
		t.Fatalf("unexpected final status: %+v", st)
	}
	for i, sym := range []string{"AAPL", "MSFT", "TSLA"} {
		if st.Results[i].Symbol != sym || st.Results[i].Timeframe != model.Horizon1M {
			t.Errorf("result %d: %+v", i, st.Results[i])
		}
	}
	if err := m.Wait(context.Background()); err != nil {
		t.Errorf("wait: %v", err)
	}
}

func TestTaskManager_Failure(t *testing.T) {
	m := NewTaskManager(&fakePredictor{failOn: "MSFT"}, nil, TaskOptions{})
	st, _, err := m.Create([]string{"AAPL", "MSFT", "TSLA"}, "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	st = waitStatus(t, m, st.TaskID, TaskFailed)
	if st.Done != 1 || len(st.Results) != 1 || st.Error != "chart unavailable" {
		t.Errorf("unexpected status: %+v", st)
	}
}

func TestTaskManager_RequestIDDedupe(t *testing.T) {
	f := &fakePredictor{block: make(chan struct{})}
	m := NewTaskManager(f, nil, TaskOptions{})
	a, created, err := m.Create([]string{"AAPL"}, "", "req-1")
	if err != nil || !created {
		t.Fatalf("create: %v %v", created, err)
	}
	b, created, err := m.Create([]string{"AAPL"}, "", " req-1 ")
	if err != nil || created || b.TaskID != a.TaskID {
		t.Fatalf("expected the same task, got %s vs %s (created=%v)", b.TaskID, a.TaskID, created)
	}
	close(f.block)
	waitStatus(t, m, a.TaskID, TaskDone)

	c, created, err := m.Create([]string{"AAPL"}, "", "req-1")
	if err != nil || !created || c.TaskID == a.TaskID {
		t.Errorf("finished tasks should release their request id")
	}
}

func TestTaskManager_Cancel(t *testing.T) {
	f := &fakePredictor{block: make(chan struct{}), started: make(chan string, 4)}
	m := NewTaskManager(f, nil, TaskOptions{})
	st, _, err := m.Create([]string{"AAPL", "MSFT"}, "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	<-f.started

	st, ok := m.Cancel(st.TaskID)
	if !ok || st.Status != TaskCanceled || st.Error != canceledMessage {
		t.Fatalf("cancel: %+v", st)
	}
	if err := m.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	f.mu.Lock()
	calls := len(f.calls)
	f.mu.Unlock()
	if calls != 1 {
		t.Errorf("expected the task to stop after the first symbol, got %d calls", calls)
	}

	st, ok = m.Cancel(st.TaskID)
	if !ok || st.Status != TaskCanceled {
		t.Errorf("cancel twice: %+v", st)
	}
	if _, ok := m.Cancel("missing"); ok {
		t.Errorf("expected unknown task")
	}
}

func TestTaskManager_Validation(t *testing.T) {
	m := NewTaskManager(&fakePredictor{}, nil, TaskOptions{MaxSymbols: 2})
	tests := []struct {
		name    string
		symbols []string
		horizon model.Horizon
	}{
		{"no symbols", nil, ""},
		{"too many", []string{"A", "B", "C"}, ""},
		{"bad symbol", []string{"A B"}, ""},
		{"bad horizon", []string{"AAPL"}, "5y"},
	}
	for _, tt := range tests {
		if _, _, err := m.Create(tt.symbols, tt.horizon, ""); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestTaskManager_Cleanup(t *testing.T) {
	m := NewTaskManager(&fakePredictor{}, nil, TaskOptions{TTL: time.Minute})
	st, _, err := m.Create([]string{"AAPL"}, "", "req")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	waitStatus(t, m, st.TaskID, TaskDone)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if n := m.Cleanup(); n != 1 {
		t.Errorf("expected one expired task, removed %d", n)
	}
	if _, ok := m.Get(st.TaskID); ok {
		t.Errorf("expected task to be gone")
	}
}
