package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/apierr"
	"github.com/taskdeck/taskdeck/internal/task"
)

func newTestGateway(t *testing.T, handler http.Handler) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", 5*time.Second, 2, nil), srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestListBareArray(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(t, w, http.StatusOK, []map[string]any{
			{"id": 1, "title": "First", "status": "PENDING", "priority": "P3"},
			{"id": 2, "title": "Second", "assigneeName": "bob"},
		})
	}))

	tasks, err := gw.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, int64(1), tasks[0].ID)
	assert.Equal(t, task.StatusPending, tasks[0].Status)
	assert.Equal(t, "bob", tasks[1].Assignee)
}

func TestListContentEnvelope(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"content":       []map[string]any{{"id": 9, "title": "Paged"}},
			"totalElements": 1,
		})
	}))

	tasks, err := gw.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(9), tasks[0].ID)
}

func TestGetNotFound(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"message": "Task not found with id: 99"})
	}))

	_, err := gw.Get(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, apierr.IsNotFound(err))
	assert.Contains(t, err.Error(), "Task not found with id: 99")
}

func TestCreateSendsWireFields(t *testing.T) {
	due, err := task.ParseDateTime("2026-09-01 14:30")
	require.NoError(t, err)

	var received map[string]any
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		writeJSON(t, w, http.StatusCreated, map[string]any{"id": 5, "title": received["title"]})
	}))

	created, err := gw.Create(context.Background(), task.Fields{
		Title:    "Ship it",
		Assignee: "dana",
		DueDate:  &due,
		Priority: task.PriorityP1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)

	assert.Equal(t, "Ship it", received["title"])
	assert.Equal(t, "dana", received["assignee"])
	assert.Equal(t, "2026-09-01 14:30", received["dueDate"])
	assert.Equal(t, "P1", received["priority"])
}

func TestCreateRejectsEmptyTitleWithoutRequest(t *testing.T) {
	var calls int32
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))

	_, err := gw.Create(context.Background(), task.Fields{Title: "  "})
	require.Error(t, err)
	assert.True(t, apierr.IsValidation(err))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestUpdateValidationFromServer(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]string{"error": "due date in the past"})
	}))

	_, err := gw.Update(context.Background(), 3, task.Fields{Title: "x"})
	require.Error(t, err)
	assert.True(t, apierr.IsValidation(err))
	assert.Contains(t, err.Error(), "due date in the past")
}

func TestDeleteNoContent(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/tasks/7", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, gw.Delete(context.Background(), 7))
}

func TestDeleteNotFoundSurfacesCode(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	err := gw.Delete(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, apierr.IsNotFound(err))
}

func TestParseSendsQueryText(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tasks/parse", r.URL.Path)
		assert.Equal(t, "call mom tomorrow", r.URL.Query().Get("text"))
		writeJSON(t, w, http.StatusOK, []map[string]any{{"id": 11, "title": "Call mom"}})
	}))

	tasks, err := gw.Parse(context.Background(), "call mom tomorrow")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Call mom", tasks[0].Title)
}

func TestParseSingleObjectNormalized(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"id": 12, "title": "One"})
	}))

	tasks, err := gw.Parse(context.Background(), "one thing")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(12), tasks[0].ID)
}

func TestParseEmptyTextRejectedLocally(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	}))

	_, err := gw.Parse(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, apierr.IsValidation(err))
}

func TestParseMeetingMinutesBody(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks/meeting-minutes", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Alice will fix the gate", body["transcript"])
		writeJSON(t, w, http.StatusOK, []map[string]any{{"id": 20, "title": "Fix the gate", "assignee": "Alice"}})
	}))

	tasks, err := gw.ParseMeetingMinutes(context.Background(), "Alice will fix the gate")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Alice", tasks[0].Assignee)
}

func TestServerSideFilterPaths(t *testing.T) {
	var paths []string
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		writeJSON(t, w, http.StatusOK, []map[string]any{})
	}))

	ctx := context.Background()
	_, err := gw.ByStatus(ctx, task.StatusCompleted)
	require.NoError(t, err)
	_, err = gw.ByAssignee(ctx, "dana k")
	require.NoError(t, err)
	_, err = gw.ByPriority(ctx, task.PriorityP2)
	require.NoError(t, err)

	require.Equal(t, []string{
		"/api/tasks/status/COMPLETED",
		"/api/tasks/assignee/dana%20k",
		"/api/tasks/priority/P2",
	}, paths)
}

func TestReadRetriesServerErrors(t *testing.T) {
	var calls int32
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(t, w, http.StatusOK, []map[string]any{{"id": 1, "title": "Recovered"}})
	}))

	tasks, err := gw.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestReadDoesNotRetryNotFound(t *testing.T) {
	var calls int32
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := gw.Get(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, apierr.IsNotFound(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestMutationNotRetried(t *testing.T) {
	var calls int32
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := gw.Create(context.Background(), task.Fields{Title: "once"})
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.ServerError))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestUnreachableServiceIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close()
	gw := New(srv.URL+"/api", time.Second, 0, nil)

	_, err := gw.List(context.Background())
	require.Error(t, err)
	assert.True(t, apierr.IsTransport(err))
}

func TestDecodeCollectionShapes(t *testing.T) {
	tasks, err := decodeCollection(json.RawMessage(`[]`))
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = decodeCollection(json.RawMessage(`{"content":[{"id":1,"title":"a"}]}`))
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	tasks, err = decodeCollection(json.RawMessage(`{"id":3,"title":"solo"}`))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(3), tasks[0].ID)

	_, err = decodeCollection(json.RawMessage(`"nonsense"`))
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.ServerError))
}
