// Package actions orders built-in entries together with externally
// contributed ones by numeric weight. The generic Registry is the extension
// point; the task action menu is its main user.
package actions
