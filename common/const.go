package common

// JSON-RPC method names served by the daemon.
const (
	MethodVersion         = "system.getVersion"
	MethodTaskAdd         = "task.add"
	MethodTaskList        = "task.list"
	MethodTaskGet         = "task.get"
	MethodTaskToggle      = "task.toggle"
	MethodTaskRemove      = "task.remove"
	MethodTaskClear       = "task.clearCompleted"
	MethodReminderSet     = "reminder.set"
	MethodReminderClear   = "reminder.clear"
	MethodReminderPending = "reminder.pending"
)

// Push notification methods sent to WebSocket clients.
const (
	PushReminderFired = "reminder.fired"
	PushReminderAlert = "reminder.alert"
)

// JSON-RPC paths on the daemon's HTTP listener.
const (
	RPCPath   = "/jsonrpc"
	RPCWSPath = "/jsonrpc/ws"
)

// DefaultListenAddr is where the daemon listens unless configured otherwise.
const DefaultListenAddr = "127.0.0.1:7725"
