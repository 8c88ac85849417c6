// Package workorder tracks the reconstruction work order attached to an
// annotation task.
//
// The Controller issues status transitions against the remote service and
// re-reads the server status after every attempt, successful or not, so the
// displayed View is always derived from the server. Display sessions bind
// calls to one task and drop results that arrive after the operator has moved
// on.
package workorder
