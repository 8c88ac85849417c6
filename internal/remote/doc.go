// Package remote talks to the reconstruction service that tracks work orders,
// previews and batch jobs.
//
// Every call carries the configured token as a query parameter, decodes the
// JSON envelope the service answers with and normalizes failures into a
// single *Error value. Reads retry with bounded exponential backoff; writes
// are sent once.
package remote
