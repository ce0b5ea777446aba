// Package notify delivers due reminders to the user.
//
// A Notifier prefers a desktop notification Sink and falls back to an
// Alerter whenever notifications are unsupported, not permitted or fail.
// Delivery never reports an error to the caller.
package notify
