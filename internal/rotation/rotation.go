package rotation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const keySuffix = "_rotation"

// Override is one job's stored rotation. Err is set when the stored value is
// not an integer.
type Override struct {
	Key   string
	JobID string
	Raw   string
	Steps int
	Err   error
}

// Key returns the storage key for a job's rotation override.
func Key(taskID int64, jobID string) string {
	return keyPrefix(taskID) + jobID + keySuffix
}

func keyPrefix(taskID int64) string {
	return "Task_" + strconv.FormatInt(taskID, 10) + "_Job_"
}

// MatchesTask reports whether key is a rotation override of taskID.
func MatchesTask(key string, taskID int64) bool {
	return strings.HasPrefix(key, keyPrefix(taskID)) && strings.HasSuffix(key, keySuffix)
}

// JobIDFromKey returns the second-to-last underscore separated segment.
func JobIDFromKey(key string) string {
	parts := strings.Split(key, "_")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}

// SetRotation stores the quarter-turn step count for a job.
func (s *Store) SetRotation(ctx context.Context, taskID int64, jobID string, steps int) error {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return errors.New("set rotation: job id required")
	}
	return s.SetItem(ctx, Key(taskID, jobID), strconv.Itoa(steps))
}

// Rotation returns a job's stored step count.
func (s *Store) Rotation(ctx context.Context, taskID int64, jobID string) (int, bool, error) {
	raw, ok, err := s.GetItem(ctx, Key(taskID, jobID))
	if err != nil || !ok {
		return 0, ok, err
	}
	steps, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, true, fmt.Errorf("rotation %s: %w", Key(taskID, jobID), err)
	}
	return steps, true, nil
}

// Overrides returns the task's rotation overrides in key enumeration order.
// Each key is read on its own; there is no snapshot across keys.
func (s *Store) Overrides(ctx context.Context, taskID int64) ([]Override, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	var out []Override
	for _, key := range keys {
		if !MatchesTask(key, taskID) {
			continue
		}
		raw, ok, err := s.GetItem(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		override := Override{Key: key, JobID: JobIDFromKey(key), Raw: raw}
		if steps, convErr := strconv.Atoi(strings.TrimSpace(raw)); convErr != nil {
			override.Err = fmt.Errorf("rotation value %q is not an integer", raw)
		} else {
			override.Steps = steps
		}
		out = append(out, override)
	}
	return out, nil
}
