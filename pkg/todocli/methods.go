package todocli

import (
	"context"
	"errors"
	"time"

	"github.com/creachadair/jrpc2"

	"github.com/todostudio/todostudio/common"
)

// Error codes returned by the daemon.
const (
	CodeTaskNotFound  = jrpc2.Code(-32001)
	CodeInvalidParams = jrpc2.Code(-32602)
)

// IsNotFound reports whether err means the referenced task does not exist.
func IsNotFound(err error) bool {
	return hasCode(err, CodeTaskNotFound)
}

// IsInvalid reports whether the daemon rejected the request's parameters.
func IsInvalid(err error) bool {
	return hasCode(err, CodeInvalidParams)
}

func hasCode(err error, code jrpc2.Code) bool {
	var rpcErr *jrpc2.Error
	return errors.As(err, &rpcErr) && rpcErr.Code == code
}

// ReminderOpts picks a reminder for Add or SetReminder. At most one field
// may be set; both empty means no reminder.
type ReminderOpts struct {
	// At is an absolute instant such as "2026-03-04T09:30".
	At string
	// In is relative to the daemon's clock.
	In time.Duration
}

func (o ReminderOpts) in() string {
	if o.In == 0 {
		return ""
	}
	return o.In.String()
}

func (c *Client) GetDaemonVersion(ctx context.Context) (*common.VersionResponse, error) {
	return call[common.VersionResponse](ctx, c, common.MethodVersion, nil)
}

// Add creates a task.
func (c *Client) Add(ctx context.Context, text string, opts ReminderOpts) (*common.TaskView, error) {
	return call[common.TaskView](ctx, c, common.MethodTaskAdd, &common.AddParams{
		Text:     text,
		Reminder: opts.At,
		RemindIn: opts.in(),
	})
}

// List returns the tasks matching filter ("all", "active" or "completed").
func (c *Client) List(ctx context.Context, filter string) (*common.ListResponse, error) {
	return call[common.ListResponse](ctx, c, common.MethodTaskList, &common.ListParams{Filter: filter})
}

// Get looks a task up by id or unique id prefix.
func (c *Client) Get(ctx context.Context, id string) (*common.TaskView, error) {
	return call[common.TaskView](ctx, c, common.MethodTaskGet, &common.IDParams{ID: id})
}

func (c *Client) Toggle(ctx context.Context, id string) (*common.TaskView, error) {
	return call[common.TaskView](ctx, c, common.MethodTaskToggle, &common.IDParams{ID: id})
}

// Remove deletes a task and returns it as it was.
func (c *Client) Remove(ctx context.Context, id string) (*common.TaskView, error) {
	return call[common.TaskView](ctx, c, common.MethodTaskRemove, &common.IDParams{ID: id})
}

func (c *Client) ClearCompleted(ctx context.Context) (*common.ClearResponse, error) {
	return call[common.ClearResponse](ctx, c, common.MethodTaskClear, nil)
}

// SetReminder replaces the task's reminder. An unparseable At clears it.
func (c *Client) SetReminder(ctx context.Context, id string, opts ReminderOpts) (*common.TaskView, error) {
	return call[common.TaskView](ctx, c, common.MethodReminderSet, &common.ReminderParams{
		ID: id,
		At: opts.At,
		In: opts.in(),
	})
}

func (c *Client) ClearReminder(ctx context.Context, id string) (*common.TaskView, error) {
	return call[common.TaskView](ctx, c, common.MethodReminderClear, &common.IDParams{ID: id})
}

// Pending lists the reminders the daemon has armed, soonest first.
func (c *Client) Pending(ctx context.Context) (*common.PendingResponse, error) {
	return call[common.PendingResponse](ctx, c, common.MethodReminderPending, nil)
}
