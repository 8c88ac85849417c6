package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"trisetra/internal/logging"
	"trisetra/internal/rotation"
	"trisetra/internal/services"
)

// Degrees converts clockwise quarter-turn steps into the anticlockwise degree
// value the export endpoint expects.
func Degrees(steps int) int {
	if steps > 0 {
		return (4 - steps) * 90
	}
	return steps * -90
}

// Pair is one job's rotation parameter.
type Pair struct {
	JobID   string
	Degrees int
}

func (p Pair) String() string {
	return url.QueryEscape(p.JobID) + "=" + strconv.Itoa(p.Degrees)
}

// OverrideSource lists a task's stored rotation overrides.
type OverrideSource interface {
	Overrides(ctx context.Context, taskID int64) ([]rotation.Override, error)
}

// Target identifies the service the export URL points at.
type Target interface {
	Endpoint() string
	Token() string
}

// Builder turns stored rotation overrides into an export URL.
type Builder struct {
	target Target
	source OverrideSource
	logger *slog.Logger
}

// NewBuilder returns a builder reading overrides from source.
func NewBuilder(target Target, source OverrideSource, logger *slog.Logger) *Builder {
	return &Builder{
		target: target,
		source: source,
		logger: logging.NewComponentLogger(logger, "export"),
	}
}

// Query returns one pair per job with a stored override, in storage order.
// Values that are not integers are skipped.
func (b *Builder) Query(ctx context.Context, taskID int64) ([]Pair, error) {
	ctx = services.WithTaskID(ctx, taskID)
	overrides, err := b.source.Overrides(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("read rotation overrides: %w", err)
	}

	seen := make(map[string]struct{}, len(overrides))
	pairs := make([]Pair, 0, len(overrides))
	for _, o := range overrides {
		if o.Err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, b.logger), "rotation override skipped", "export_rotation_invalid",
				logging.String("key", o.Key),
				logging.String("value", o.Raw),
				logging.String(logging.FieldImpact, "job exports without rotation"),
				logging.String(logging.FieldErrorHint, "re-apply the rotation in the editor"),
			)
			continue
		}
		if o.JobID == "" {
			continue
		}
		if _, dup := seen[o.JobID]; dup {
			continue
		}
		seen[o.JobID] = struct{}{}
		pairs = append(pairs, Pair{JobID: o.JobID, Degrees: Degrees(o.Steps)})
	}
	return pairs, nil
}

// Export is a task's export URL together with the pairs encoded in it.
type Export struct {
	TaskID int64
	URL    string
	Pairs  []Pair
}

// Build reads the overrides once and returns the export URL with the pairs it
// carries. The trailing separator is kept when there are no pairs.
func (b *Builder) Build(ctx context.Context, taskID int64) (Export, error) {
	pairs, err := b.Query(ctx, taskID)
	if err != nil {
		return Export{}, err
	}
	encoded := make([]string, len(pairs))
	for i, p := range pairs {
		encoded[i] = p.String()
	}
	link := fmt.Sprintf("%s/annotations/%d/export?token=%s&%s",
		strings.TrimRight(b.target.Endpoint(), "/"),
		taskID,
		url.QueryEscape(b.target.Token()),
		strings.Join(encoded, "&"),
	)
	return Export{TaskID: taskID, URL: link, Pairs: pairs}, nil
}
