// Package export builds annotation export URLs that carry each job's rotation
// override in degrees. It makes no network calls; opening the URL is up to
// the caller.
package export
