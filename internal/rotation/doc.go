// Package rotation persists client-local key/value state, chiefly the
// per-job rotation overrides written by the annotation editor under keys of
// the form Task_{taskId}_Job_{jobId}_rotation.
//
// Keys enumerate in insertion order. Values are read one key at a time, so a
// reader can observe a partially updated set while the editor is writing.
package rotation
