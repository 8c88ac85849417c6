// Package dispatch starts batch jobs on the reconstruction service: preview
// and blend generation, GLB export and library refreshes. Jobs are sent once
// and their outcome is published as a notification.
package dispatch
