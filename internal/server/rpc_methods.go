package server

import (
	"context"
	"errors"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/todostudio/todostudio/common"
	"github.com/todostudio/todostudio/internal/studio"
	"github.com/todostudio/todostudio/pkg/logger"
	"github.com/todostudio/todostudio/pkg/todolib"
)

// Custom JSON-RPC error codes for task operations.
const (
	codeTaskNotFound  = jrpc2.Code(-32001)
	codeInvalidParams = jrpc2.Code(-32602)
)

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // Auth token (required -- empty means RPC disabled)
	Version   string // Daemon version
	Commit    string // Git commit
	BuildType string // Build type

	// Location interprets reminders without an offset; nil means time.Local.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

// RPCServer manages the JSON-RPC 2.0 bridge and method handlers.
type RPCServer struct {
	bridge    jhttp.Bridge
	methods   handler.Map
	secret    string
	version   string
	commit    string
	buildType string
	loc       *time.Location
	now       func() time.Time
	studio    *studio.Studio
	notifier  *RPCNotifier
	log       logger.Logger
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}

// NewRPCServer creates a new RPCServer with method handlers and HTTP bridge.
func NewRPCServer(cfg *RPCConfig, st *studio.Studio, l logger.Logger) *RPCServer {
	if l == nil {
		l = logger.NewNopLogger()
	}
	rs := &RPCServer{
		secret:    cfg.Secret,
		version:   cfg.Version,
		commit:    cfg.Commit,
		buildType: cfg.BuildType,
		loc:       cfg.Location,
		now:       cfg.Now,
		studio:    st,
		notifier:  NewRPCNotifier(l),
		log:       l,
	}
	if rs.loc == nil {
		rs.loc = time.Local
	}
	if rs.now == nil {
		rs.now = time.Now
	}

	rs.methods = handler.Map{
		common.MethodVersion:         handler.New(rs.systemGetVersion),
		common.MethodTaskAdd:         handler.New(rs.taskAdd),
		common.MethodTaskList:        handler.New(rs.taskList),
		common.MethodTaskGet:         handler.New(rs.taskGet),
		common.MethodTaskToggle:      handler.New(rs.taskToggle),
		common.MethodTaskRemove:      handler.New(rs.taskRemove),
		common.MethodTaskClear:       handler.New(rs.taskClearCompleted),
		common.MethodReminderSet:     handler.New(rs.reminderSet),
		common.MethodReminderClear:   handler.New(rs.reminderClear),
		common.MethodReminderPending: handler.New(rs.reminderPending),
	}

	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

// Notifier returns the broadcaster for WebSocket push notifications.
func (rs *RPCServer) Notifier() *RPCNotifier {
	return rs.notifier
}

// Close shuts down the HTTP bridge.
func (rs *RPCServer) Close() error {
	return rs.bridge.Close()
}

func invalidParams(msg string) error {
	return &jrpc2.Error{Code: codeInvalidParams, Message: msg}
}

// taskError maps list errors to JSON-RPC errors.
func taskError(err error) error {
	switch {
	case errors.Is(err, todolib.ErrTaskNotFound):
		return &jrpc2.Error{Code: codeTaskNotFound, Message: err.Error()}
	case errors.Is(err, todolib.ErrAmbiguousID), errors.Is(err, todolib.ErrEmptyText):
		return invalidParams(err.Error())
	}
	return err
}

func (rs *RPCServer) view(t todolib.Task) *common.TaskView {
	v := common.NewTaskView(t, rs.now(), rs.loc)
	return &v
}

func (rs *RPCServer) resolve(ref string) (todolib.Task, error) {
	if ref == "" {
		return todolib.Task{}, invalidParams("missing required param: id")
	}
	t, err := rs.studio.List.Resolve(ref)
	if err != nil {
		return todolib.Task{}, taskError(err)
	}
	return t, nil
}

// reminderFrom turns the at/in pair into an instant. Unparseable absolute
// input means no reminder; a malformed duration is rejected.
func (rs *RPCServer) reminderFrom(at, in string) (*time.Time, error) {
	if at != "" && in != "" {
		return nil, invalidParams("reminder: at and in are mutually exclusive")
	}
	if in != "" {
		d, err := time.ParseDuration(in)
		if err != nil {
			return nil, invalidParams("invalid reminder duration: " + err.Error())
		}
		return todolib.ReminderIn(d, rs.now()), nil
	}
	return todolib.ParseReminder(at, rs.loc), nil
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*common.VersionResponse, error) {
	return &common.VersionResponse{
		Version:   rs.version,
		Commit:    rs.commit,
		BuildType: rs.buildType,
	}, nil
}

func (rs *RPCServer) taskAdd(_ context.Context, p *common.AddParams) (*common.TaskView, error) {
	reminder, err := rs.reminderFrom(p.Reminder, p.RemindIn)
	if err != nil {
		return nil, err
	}
	t, err := rs.studio.List.Add(p.Text, reminder)
	if err != nil {
		return nil, taskError(err)
	}
	rs.log.Debug("Added task %s", t.ID)
	return rs.view(t), nil
}

func (rs *RPCServer) taskList(_ context.Context, p *common.ListParams) (*common.ListResponse, error) {
	f := todolib.ParseFilter(p.Filter)
	list := rs.studio.List
	tasks := list.Filter(f)
	views := make([]common.TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = *rs.view(t)
	}
	done, left := list.Counts()
	resp := &common.ListResponse{
		Tasks:   views,
		Filter:  string(f),
		Done:    done,
		Left:    left,
		Summary: todolib.Summary(done, left),
	}
	if len(views) == 0 {
		resp.Empty = todolib.EmptyMessage(done + left)
	}
	return resp, nil
}

func (rs *RPCServer) taskGet(_ context.Context, p *common.IDParams) (*common.TaskView, error) {
	t, err := rs.resolve(p.ID)
	if err != nil {
		return nil, err
	}
	return rs.view(t), nil
}

func (rs *RPCServer) taskToggle(_ context.Context, p *common.IDParams) (*common.TaskView, error) {
	t, err := rs.resolve(p.ID)
	if err != nil {
		return nil, err
	}
	t, err = rs.studio.List.Toggle(t.ID)
	if err != nil {
		return nil, taskError(err)
	}
	return rs.view(t), nil
}

func (rs *RPCServer) taskRemove(_ context.Context, p *common.IDParams) (*common.TaskView, error) {
	t, err := rs.resolve(p.ID)
	if err != nil {
		return nil, err
	}
	if err := rs.studio.List.Remove(t.ID); err != nil {
		return nil, taskError(err)
	}
	return rs.view(t), nil
}

func (rs *RPCServer) taskClearCompleted(_ context.Context) (*common.ClearResponse, error) {
	n := rs.studio.List.ClearCompleted()
	return &common.ClearResponse{Removed: n, Message: todolib.CompletedMessage(n)}, nil
}

func (rs *RPCServer) reminderSet(_ context.Context, p *common.ReminderParams) (*common.TaskView, error) {
	t, err := rs.resolve(p.ID)
	if err != nil {
		return nil, err
	}
	reminder, err := rs.reminderFrom(p.At, p.In)
	if err != nil {
		return nil, err
	}
	t, err = rs.studio.List.SetReminder(t.ID, reminder)
	if err != nil {
		return nil, taskError(err)
	}
	return rs.view(t), nil
}

func (rs *RPCServer) reminderClear(_ context.Context, p *common.IDParams) (*common.TaskView, error) {
	t, err := rs.resolve(p.ID)
	if err != nil {
		return nil, err
	}
	t, err = rs.studio.List.ClearReminder(t.ID)
	if err != nil {
		return nil, taskError(err)
	}
	return rs.view(t), nil
}

func (rs *RPCServer) reminderPending(_ context.Context) (*common.PendingResponse, error) {
	pending := rs.studio.Scheduler.Pending()
	out := make([]common.PendingReminder, len(pending))
	for i, p := range pending {
		out[i] = common.PendingReminder{ID: p.TaskID, Text: p.Text, DueAt: p.DueAt}
	}
	return &common.PendingResponse{Pending: out}, nil
}
