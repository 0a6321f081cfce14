package controller

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/taskdeck/taskdeck/internal/apierr"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/task"
)

// fakeGateway is a scriptable in-memory gateway.Client.
type fakeGateway struct {
	tasks     []task.Task
	listErr   error
	deleteErr error

	listCalls   int
	deleteCalls []int64
}

func (f *fakeGateway) List(_ context.Context) ([]task.Task, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tasks, nil
}

func (f *fakeGateway) Get(_ context.Context, id int64) (task.Task, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, apierr.Newf(apierr.NotFound, "task %d not found", id)
}

func (f *fakeGateway) Create(_ context.Context, fields task.Fields) (task.Task, error) {
	t := task.Task{ID: int64(len(f.tasks) + 1), Title: fields.Title}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeGateway) Update(_ context.Context, id int64, fields task.Fields) (task.Task, error) {
	return task.Task{ID: id, Title: fields.Title}, nil
}

func (f *fakeGateway) Delete(_ context.Context, id int64) error {
	f.deleteCalls = append(f.deleteCalls, id)
	return f.deleteErr
}

func (f *fakeGateway) Parse(_ context.Context, text string) ([]task.Task, error) {
	t := task.Task{ID: int64(len(f.tasks) + 1), Title: text}
	f.tasks = append(f.tasks, t)
	return []task.Task{t}, nil
}

func (f *fakeGateway) ParseMeetingMinutes(_ context.Context, _ string) ([]task.Task, error) {
	return nil, nil
}

func (f *fakeGateway) ByStatus(_ context.Context, _ task.Status) ([]task.Task, error) {
	return f.tasks, nil
}

func (f *fakeGateway) ByAssignee(_ context.Context, _ string) ([]task.Task, error) {
	return f.tasks, nil
}

func (f *fakeGateway) ByPriority(_ context.Context, _ task.Priority) ([]task.Task, error) {
	return f.tasks, nil
}

func seedTasks(n int) []task.Task {
	out := make([]task.Task, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, task.Task{ID: int64(i), Title: fmt.Sprintf("Task %d", i)})
	}
	return out
}

func newLoaded(t *testing.T, gw *fakeGateway, pageSize int) *Controller {
	t.Helper()
	c := New(gw, store.New(pageSize, nil), nil)
	tok := c.Initialize()
	tasks, err := c.Fetch(context.Background())
	if !c.FinishLoad(tok, tasks, err) {
		t.Fatalf("expected initial load to apply")
	}
	return c
}

func TestInitializeAndLoad(t *testing.T) {
	gw := &fakeGateway{tasks: seedTasks(3)}
	c := newLoaded(t, gw, 10)

	vs := c.ViewState()
	if vs.Phase != store.PhaseLoaded || vs.TotalCount != 3 {
		t.Fatalf("unexpected view state: phase=%v count=%d", vs.Phase, vs.TotalCount)
	}
	if gw.listCalls != 1 {
		t.Fatalf("expected one list call, got %d", gw.listCalls)
	}
}

func TestLoadFailureSurfacesError(t *testing.T) {
	gw := &fakeGateway{listErr: apierr.New(apierr.TransportError, "request failed")}
	c := New(gw, store.New(10, nil), nil)
	tok := c.Initialize()
	tasks, err := c.Fetch(context.Background())
	c.FinishLoad(tok, tasks, err)

	vs := c.ViewState()
	if vs.Phase != store.PhaseFailed {
		t.Fatalf("expected failed phase, got %v", vs.Phase)
	}
	if !apierr.IsTransport(vs.Err) {
		t.Fatalf("expected transport error in view, got %v", vs.Err)
	}
}

func TestRefreshSupersedesEarlierLoad(t *testing.T) {
	gw := &fakeGateway{tasks: seedTasks(3)}
	c := New(gw, store.New(10, nil), nil)

	first := c.Initialize()
	second := c.Refresh()

	if !c.FinishLoad(second, seedTasks(5), nil) {
		t.Fatalf("expected latest load to apply")
	}
	if c.FinishLoad(first, seedTasks(1), nil) {
		t.Fatalf("expected superseded load to be dropped")
	}
	if got := c.ViewState().TotalCount; got != 5 {
		t.Fatalf("expected 5 tasks from latest load, got %d", got)
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	gw := &fakeGateway{tasks: seedTasks(3)}
	c := newLoaded(t, gw, 10)

	target := gw.tasks[1]
	if !c.RequestDelete(target) {
		t.Fatalf("expected delete request to be accepted")
	}
	if c.ViewState().PendingDelete == nil {
		t.Fatalf("expected pending delete in view state")
	}

	// A second request while one is staged is refused.
	if c.RequestDelete(gw.tasks[0]) {
		t.Fatalf("expected concurrent delete request to be refused")
	}

	staged, ok := c.StartDelete()
	if !ok || staged.ID != target.ID {
		t.Fatalf("expected staged target %d, got %+v", target.ID, staged)
	}
	err := c.Delete(context.Background(), staged.ID)
	c.FinishDelete(staged, err)

	if len(gw.deleteCalls) != 1 || gw.deleteCalls[0] != target.ID {
		t.Fatalf("expected one delete call for %d, got %v", target.ID, gw.deleteCalls)
	}
	// The row is removed locally, without a refetch.
	if gw.listCalls != 1 {
		t.Fatalf("expected no refetch after delete, got %d list calls", gw.listCalls)
	}
	vs := c.ViewState()
	if vs.TotalCount != 2 {
		t.Fatalf("expected 2 tasks after delete, got %d", vs.TotalCount)
	}
	for _, rem := range vs.Tasks {
		if rem.ID == target.ID {
			t.Fatalf("deleted task %d still visible", target.ID)
		}
	}

	n, ok := c.TakeNotice()
	if !ok || n.IsErr {
		t.Fatalf("expected success notice, got %+v", n)
	}
	if _, again := c.TakeNotice(); again {
		t.Fatalf("notice must be one-shot")
	}
}

func TestCancelDelete(t *testing.T) {
	gw := &fakeGateway{tasks: seedTasks(2)}
	c := newLoaded(t, gw, 10)

	if !c.RequestDelete(gw.tasks[0]) {
		t.Fatalf("expected delete request to be accepted")
	}
	c.CancelDelete()
	if c.ViewState().PendingDelete != nil {
		t.Fatalf("expected no pending delete after cancel")
	}
	if len(gw.deleteCalls) != 0 {
		t.Fatalf("cancel must not call the gateway")
	}
	if c.ViewState().TotalCount != 2 {
		t.Fatalf("cancel must not change the snapshot")
	}
}

func TestDeleteNotFoundIsSoftSuccess(t *testing.T) {
	gw := &fakeGateway{
		tasks:     seedTasks(3),
		deleteErr: apierr.Newf(apierr.NotFound, "task 2 not found"),
	}
	c := newLoaded(t, gw, 10)

	if !c.RequestDelete(gw.tasks[1]) {
		t.Fatalf("expected delete request to be accepted")
	}
	staged, _ := c.StartDelete()
	err := c.Delete(context.Background(), staged.ID)
	c.FinishDelete(staged, err)

	vs := c.ViewState()
	if vs.TotalCount != 2 {
		t.Fatalf("already-deleted task must still be removed locally, got %d", vs.TotalCount)
	}
	n, ok := c.TakeNotice()
	if !ok || n.IsErr {
		t.Fatalf("already-deleted must not surface an error, got %+v", n)
	}
}

func TestDeleteFailureLeavesSnapshot(t *testing.T) {
	gw := &fakeGateway{
		tasks:     seedTasks(3),
		deleteErr: errors.New("500 internal server error"),
	}
	c := newLoaded(t, gw, 10)

	if !c.RequestDelete(gw.tasks[0]) {
		t.Fatalf("expected delete request to be accepted")
	}
	staged, _ := c.StartDelete()
	err := c.Delete(context.Background(), staged.ID)
	c.FinishDelete(staged, err)

	vs := c.ViewState()
	if vs.TotalCount != 3 {
		t.Fatalf("failed delete must not change the snapshot, got %d", vs.TotalCount)
	}
	n, ok := c.TakeNotice()
	if !ok || !n.IsErr {
		t.Fatalf("expected error notice, got %+v", n)
	}

	// The slot is free again after the failure.
	if !c.RequestDelete(gw.tasks[0]) {
		t.Fatalf("expected a new delete request to be accepted after failure")
	}
}

func TestSearchAndPagingPassthrough(t *testing.T) {
	gw := &fakeGateway{tasks: seedTasks(25)}
	c := newLoaded(t, gw, 10)

	if !c.GoToPage(2) {
		t.Fatalf("expected page 2 to be valid")
	}
	if got := len(c.ViewState().Tasks); got != 5 {
		t.Fatalf("expected 5 visible on last page, got %d", got)
	}

	c.SetSearchTerm("zzz-no-match")
	vs := c.ViewState()
	if vs.TotalCount != 0 || vs.TotalPages != 1 || vs.Page != 0 {
		t.Fatalf("unexpected no-match view: count=%d pages=%d page=%d", vs.TotalCount, vs.TotalPages, vs.Page)
	}
	// Search is purely local.
	if gw.listCalls != 1 {
		t.Fatalf("search must not trigger a network call, got %d list calls", gw.listCalls)
	}
}

func TestParseThenRefreshIncorporatesNewTasks(t *testing.T) {
	gw := &fakeGateway{tasks: seedTasks(2)}
	c := newLoaded(t, gw, 10)

	parsed, err := c.Gateway().Parse(context.Background(), "call mom tomorrow")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("expected one parsed task, got %d", len(parsed))
	}

	tok := c.Refresh()
	tasks, err := c.Fetch(context.Background())
	if !c.FinishLoad(tok, tasks, err) {
		t.Fatalf("expected refresh to apply")
	}
	vs := c.ViewState()
	if vs.TotalCount != 3 {
		t.Fatalf("expected parsed task in refreshed collection, got %d", vs.TotalCount)
	}
	if vs.Tasks[2].Title != "call mom tomorrow" {
		t.Fatalf("unexpected refreshed tail: %+v", vs.Tasks[2])
	}
}

func TestApplyUpdateReplacesInPlace(t *testing.T) {
	gw := &fakeGateway{tasks: seedTasks(3)}
	c := newLoaded(t, gw, 10)

	c.ApplyUpdate(task.Task{ID: 2, Title: "Renamed"})
	vs := c.ViewState()
	if vs.Tasks[1].Title != "Renamed" {
		t.Fatalf("expected in-place replacement, got %+v", vs.Tasks[1])
	}
	if gw.listCalls != 1 {
		t.Fatalf("update application must not refetch, got %d list calls", gw.listCalls)
	}
}
