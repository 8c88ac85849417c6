// Command trisetra is the operator console for reconstruction work orders.
//
// It shows and changes a task's work order status, lists reconstruction
// previews, builds rotation-aware export URLs, dispatches batch jobs and
// prints the task action menu. `trisetra watch` keeps a display session open
// and polls the status until interrupted.
package main
