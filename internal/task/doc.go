// Package task holds the annotation task value the console operates on.
package task
