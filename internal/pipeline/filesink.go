package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/storm-vortex-track/internal/atcf"
	"github.com/couchcryptid/storm-vortex-track/internal/domain"
)

const fort22Ext = ".fort.22"

// FileSink writes each event as a fort.22 file under Dir. Dir must exist.
type FileSink struct {
	Dir       string
	Overwrite bool
	Logger    *slog.Logger
}

// Deliver writes one file per event. Events in the same batch that map to
// the same name get numbered suffixes, e.g. track.fort.22 and track_2.fort.22.
func (s FileSink) Deliver(ctx context.Context, events []domain.OutputEvent) error {
	seen := make(map[string]int, len(events))
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := FileName(event)
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, fort22Ext), n, fort22Ext)
		}
		path := filepath.Join(s.Dir, name)
		written, err := atcf.WriteFile(path, string(event.Value), s.Overwrite, s.Logger)
		if err != nil {
			return err
		}
		if written {
			s.Logger.Info("track written", "path", path)
		}
	}
	return nil
}

// FileName derives the output name for an event, e.g. al112017.fort.22 or
// al112017_ofcl.fort.22 when a record type is selected.
func FileName(event domain.OutputEvent) string {
	name := strings.ToLower(string(event.Key))
	if name == "" {
		name = "track"
	}
	if rt := event.Headers["record_type"]; rt != "" {
		name += "_" + strings.ToLower(rt)
	}
	return name + fort22Ext
}
