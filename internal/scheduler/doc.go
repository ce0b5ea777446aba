// Package scheduler keeps reminder callbacks in step with the task list.
//
// Every change to the list is followed by a Reconcile call that cancels all
// pending callbacks and re-arms one per task that still needs its reminder.
// The pending set is therefore always a function of the latest snapshot; no
// callback outlives the state that justified it.
//
// A due reminder is marked sent before its notification is delivered, and
// delivery runs on its own goroutine. An open permission prompt never holds
// up a Reconcile.
//
// Callbacks sleep at most maxSleepCap before re-checking the wall clock, so
// NTP steps, DST transitions and system sleep cannot delay a reminder by
// more than that cap. Nothing is persisted: the set is rebuilt from the task
// list on the next Reconcile.
package scheduler
