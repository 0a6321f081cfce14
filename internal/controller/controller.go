// Package controller sequences user intents against the store and
// gateway and exposes the single view-state the presentation renders.
package controller

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/apierr"
	"github.com/taskdeck/taskdeck/internal/gateway"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/task"
)

// Notice is a one-shot message surfaced after a mutation.
type Notice struct {
	Text  string
	IsErr bool
}

// ViewState is everything the presentation layer needs for one render.
type ViewState struct {
	store.View
	PendingDelete *task.Task
	Notice        Notice
}

// Controller owns a store and drives it from user intents. Like the
// store it is confined to the UI event loop; async work is split into
// Start/Finish pairs so network calls can run off-loop.
type Controller struct {
	gw    gateway.Client
	store *store.Store
	log   *zap.Logger

	pendingDelete  *task.Task
	deleteInFlight bool
	notice         Notice
}

// New creates a Controller over the given gateway and store.
func New(gw gateway.Client, st *store.Store, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{gw: gw, store: st, log: log}
}

// Gateway returns the remote client, for presentation code that issues
// the actual network calls from commands.
func (c *Controller) Gateway() gateway.Client { return c.gw }

// Initialize triggers the store's first load. Called once per mounted view.
func (c *Controller) Initialize() store.LoadToken {
	return c.store.BeginLoad()
}

// Refresh re-enters the load lifecycle, e.g. after create or parse.
func (c *Controller) Refresh() store.LoadToken {
	return c.store.BeginLoad()
}

// Fetch performs the collection load for a token issued by Initialize
// or Refresh. Safe to run off-loop; apply the result with FinishLoad.
func (c *Controller) Fetch(ctx context.Context) ([]task.Task, error) {
	return c.gw.List(ctx)
}

// FinishLoad applies a completed load; superseded results are dropped.
func (c *Controller) FinishLoad(tok store.LoadToken, tasks []task.Task, err error) bool {
	return c.store.FinishLoad(tok, tasks, err)
}

// SetSearchTerm updates the local filter. No network call occurs; the
// derivation runs on the snapshot.
func (c *Controller) SetSearchTerm(term string) {
	c.store.SetSearch(term)
}

// GoToPage moves to page n; out-of-range values are a no-op.
func (c *Controller) GoToPage(n int) bool {
	return c.store.SetPage(n)
}

// RequestDelete stages a task for deletion pending confirmation. Only
// one delete can be staged or in flight at a time.
func (c *Controller) RequestDelete(t task.Task) bool {
	if c.pendingDelete != nil || c.deleteInFlight {
		return false
	}
	c.pendingDelete = &t
	return true
}

// CancelDelete clears the staged target with no side effect.
func (c *Controller) CancelDelete() {
	if !c.deleteInFlight {
		c.pendingDelete = nil
	}
}

// StartDelete commits the staged delete and returns its target. The
// caller performs the gateway call and reports back via FinishDelete.
func (c *Controller) StartDelete() (task.Task, bool) {
	if c.pendingDelete == nil || c.deleteInFlight {
		return task.Task{}, false
	}
	c.deleteInFlight = true
	return *c.pendingDelete, true
}

// Delete performs the remote delete for a target obtained from
// StartDelete. Safe to run off-loop.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	return c.gw.Delete(ctx, id)
}

// FinishDelete applies the outcome of a delete. Success removes the row
// locally without a reload. NotFound is an already-achieved goal and is
// treated the same way, with no error surfaced. Any other failure
// leaves the snapshot untouched and raises an error notice.
func (c *Controller) FinishDelete(t task.Task, err error) {
	c.deleteInFlight = false
	c.pendingDelete = nil

	if err != nil && !apierr.IsNotFound(err) {
		c.log.Warn("delete failed", zap.Int64("id", t.ID), zap.Error(err))
		c.notice = Notice{Text: "Delete failed: " + err.Error(), IsErr: true}
		return
	}
	c.store.RemoveTask(t.ID)
	c.notice = Notice{Text: fmt.Sprintf("Deleted task #%d: %s", t.ID, t.Title)}
}

// ApplyUpdate replaces a record after a successful update whose response
// carried the full record, avoiding a refetch.
func (c *Controller) ApplyUpdate(t task.Task) {
	if !c.store.ReplaceTask(t) {
		// Record not in the snapshot (e.g. filtered load); next refresh picks it up.
		c.log.Debug("updated task not in snapshot", zap.Int64("id", t.ID))
	}
}

// TakeNotice returns the pending one-shot notice and clears it.
func (c *Controller) TakeNotice() (Notice, bool) {
	n := c.notice
	c.notice = Notice{}
	return n, n.Text != ""
}

// ViewState assembles the render state.
func (c *Controller) ViewState() ViewState {
	return ViewState{
		View:          c.store.View(),
		PendingDelete: c.pendingDelete,
		Notice:        c.notice,
	}
}
