// Package notifications delivers operator-facing messages such as "Work order
// updated" through pluggable notifiers.
//
// The CLI always prints notifications to the console; when an ntfy topic is
// configured they are also pushed there. Without a topic NewService returns a
// no-op so callers never need to check whether notifications are enabled.
package notifications
