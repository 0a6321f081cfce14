// Package gateway wraps the remote task service REST API. It holds no
// state between calls and normalizes every failure into the structured
// error taxonomy.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/apierr"
	"github.com/taskdeck/taskdeck/internal/task"
)

// Client is the interface the controller and commands program against.
type Client interface {
	List(ctx context.Context) ([]task.Task, error)
	Get(ctx context.Context, id int64) (task.Task, error)
	Create(ctx context.Context, fields task.Fields) (task.Task, error)
	Update(ctx context.Context, id int64, fields task.Fields) (task.Task, error)
	Delete(ctx context.Context, id int64) error
	Parse(ctx context.Context, text string) ([]task.Task, error)
	ParseMeetingMinutes(ctx context.Context, transcript string) ([]task.Task, error)
	ByStatus(ctx context.Context, s task.Status) ([]task.Task, error)
	ByAssignee(ctx context.Context, name string) ([]task.Task, error)
	ByPriority(ctx context.Context, p task.Priority) ([]task.Task, error)
}

// Gateway talks to the task service over HTTP.
type Gateway struct {
	base       string
	hc         *http.Client
	maxRetries int
	log        *zap.Logger
}

var _ Client = (*Gateway)(nil)

// New creates a Gateway for the given API base URL (e.g.
// "http://localhost:8081/api"). A nil logger disables instrumentation.
func New(baseURL string, timeout time.Duration, maxRetries int, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		base:       strings.TrimRight(baseURL, "/"),
		hc:         &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		log:        log,
	}
}

// List fetches the full task collection in server order.
func (g *Gateway) List(ctx context.Context) ([]task.Task, error) {
	var raw json.RawMessage
	if err := g.get(ctx, "/tasks", &raw); err != nil {
		return nil, err
	}
	return decodeCollection(raw)
}

// Get fetches a single task by ID.
func (g *Gateway) Get(ctx context.Context, id int64) (task.Task, error) {
	var t task.Task
	err := g.get(ctx, fmt.Sprintf("/tasks/%d", id), &t)
	return t, err
}

// Create creates a task from structured fields. An empty title is
// rejected client-side without a network call.
func (g *Gateway) Create(ctx context.Context, fields task.Fields) (task.Task, error) {
	var t task.Task
	if err := task.ValidateFields(fields); err != nil {
		return t, err
	}
	err := g.send(ctx, http.MethodPost, "/tasks", nil, fields, &t)
	return t, err
}

// Update replaces the full record for the given ID.
func (g *Gateway) Update(ctx context.Context, id int64, fields task.Fields) (task.Task, error) {
	var t task.Task
	if err := task.ValidateFields(fields); err != nil {
		return t, err
	}
	err := g.send(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), nil, fields, &t)
	return t, err
}

// Delete removes the task with the given ID. A NotFound error means the
// task was already gone; callers decide whether that counts as success.
func (g *Gateway) Delete(ctx context.Context, id int64) error {
	return g.send(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil, nil)
}

// Parse submits free text to the natural-language endpoint. The service
// decides how many tasks the text yields; zero and many are both valid.
func (g *Gateway) Parse(ctx context.Context, text string) ([]task.Task, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apierr.New(apierr.ValidationError, "text is required")
	}
	q := url.Values{"text": {text}}
	var raw json.RawMessage
	if err := g.send(ctx, http.MethodPost, "/tasks/parse", q, nil, &raw); err != nil {
		return nil, err
	}
	return decodeCollection(raw)
}

// ParseMeetingMinutes submits a meeting transcript and returns the tasks
// the service extracted from it.
func (g *Gateway) ParseMeetingMinutes(ctx context.Context, transcript string) ([]task.Task, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, apierr.New(apierr.ValidationError, "transcript is required")
	}
	body := map[string]string{"transcript": transcript}
	var raw json.RawMessage
	if err := g.send(ctx, http.MethodPost, "/tasks/meeting-minutes", nil, body, &raw); err != nil {
		return nil, err
	}
	return decodeCollection(raw)
}

// ByStatus fetches tasks filtered server-side by status.
func (g *Gateway) ByStatus(ctx context.Context, s task.Status) ([]task.Task, error) {
	return g.collection(ctx, "/tasks/status/"+url.PathEscape(string(s)))
}

// ByAssignee fetches tasks filtered server-side by assignee name.
func (g *Gateway) ByAssignee(ctx context.Context, name string) ([]task.Task, error) {
	return g.collection(ctx, "/tasks/assignee/"+url.PathEscape(name))
}

// ByPriority fetches tasks filtered server-side by priority.
func (g *Gateway) ByPriority(ctx context.Context, p task.Priority) ([]task.Task, error) {
	return g.collection(ctx, "/tasks/priority/"+url.PathEscape(string(p)))
}

func (g *Gateway) collection(ctx context.Context, path string) ([]task.Task, error) {
	var raw json.RawMessage
	if err := g.get(ctx, path, &raw); err != nil {
		return nil, err
	}
	return decodeCollection(raw)
}

// get performs an idempotent read with exponential-backoff retries on
// transport failures and 5xx responses.
func (g *Gateway) get(ctx context.Context, path string, out any) error {
	op := func() error {
		err := g.do(ctx, http.MethodGet, path, nil, nil, out)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(g.maxRetries)), ctx)
	return backoff.Retry(op, b)
}

// send performs a mutating call exactly once; superseded or failed
// mutations are the caller's problem to retry.
func (g *Gateway) send(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return g.do(ctx, method, path, query, body, out)
}

func retryable(err error) bool {
	return apierr.IsTransport(err) || apierr.Is(err, apierr.ServerError)
}

func (g *Gateway) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := g.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apierr.Wrap(apierr.InternalError, err, "encoding request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return apierr.Wrap(apierr.InternalError, err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := g.hc.Do(req)
	if err != nil {
		g.log.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return apierr.Wrap(apierr.TransportError, err, "task service unreachable")
	}
	defer resp.Body.Close() //nolint:errcheck // read-side close

	g.log.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return g.responseError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apierr.Wrap(apierr.ServerError, err, "decoding response")
	}
	return nil
}

// responseError maps a non-success response onto the error taxonomy,
// preferring the server's own message when the body carries one.
func (g *Gateway) responseError(resp *http.Response) error {
	msg := serverMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		if msg == "" {
			msg = "task not found"
		}
		return apierr.New(apierr.NotFound, msg)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		if msg == "" {
			msg = "request rejected by server"
		}
		return apierr.New(apierr.ValidationError, msg)
	case resp.StatusCode >= 500:
		if msg == "" {
			msg = resp.Status
		}
		return apierr.Newf(apierr.ServerError, "server error: %s", msg)
	default:
		if msg == "" {
			msg = resp.Status
		}
		return apierr.Newf(apierr.ServerError, "unexpected response: %s", msg)
	}
}

// serverMessage extracts an error message from a JSON error body, if any.
func serverMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096)) //nolint:mnd // cap error body size
	if err != nil {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// decodeCollection accepts the two collection shapes the service
// returns: a bare array, or a page envelope with a "content" array. A
// single object is normalized to a one-element slice.
func decodeCollection(raw json.RawMessage) ([]task.Task, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var tasks []task.Task
	if err := json.Unmarshal(raw, &tasks); err == nil {
		return tasks, nil
	}

	var envelope struct {
		Content []task.Task `json:"content"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Content != nil {
		return envelope.Content, nil
	}

	var single task.Task
	if err := json.Unmarshal(raw, &single); err == nil && single.ID != 0 {
		return []task.Task{single}, nil
	}

	return nil, apierr.New(apierr.ServerError, "decoding response: unrecognized collection shape")
}
