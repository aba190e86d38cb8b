package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/domain"
	"github.com/couchcryptid/storm-vortex-track/internal/track"
)

// Job names one track to export and the view of it to serialize.
type Job struct {
	Storm       string // storm id, name and year (irma2017), or ATCF file path
	Deck        domain.FileDeck
	Mode        domain.Mode
	RecordType  string
	Start       time.Time
	End         time.Time
	StartOffset *time.Duration
	EndOffset   *time.Duration
}

// Options converts the job into track construction options.
func (j Job) Options() []track.Option {
	var opts []track.Option
	if j.Deck != "" {
		opts = append(opts, track.WithFileDeck(j.Deck))
	}
	if j.Mode != "" {
		opts = append(opts, track.WithMode(j.Mode))
	}
	if j.RecordType != "" {
		opts = append(opts, track.WithRecordType(j.RecordType))
	}
	if !j.Start.IsZero() {
		opts = append(opts, track.WithStartDate(j.Start))
	}
	if !j.End.IsZero() {
		opts = append(opts, track.WithEndDate(j.End))
	}
	if j.StartOffset != nil {
		opts = append(opts, track.WithStartOffset(*j.StartOffset))
	}
	if j.EndOffset != nil {
		opts = append(opts, track.WithEndOffset(*j.EndOffset))
	}
	return opts
}

// ProviderLoader opens tracks through a storm data provider. Job storms that
// name a local ATCF file are read only when AllowFiles is set.
type ProviderLoader struct {
	Provider   domain.Provider
	Resolver   domain.Resolver
	Logger     *slog.Logger
	AllowFiles bool
}

func (l ProviderLoader) LoadTrack(ctx context.Context, job Job) (*track.Track, error) {
	opts := append(job.Options(),
		track.WithProvider(l.Provider),
		track.WithResolver(l.Resolver),
		track.WithLogger(l.Logger),
	)
	src := track.StormIdentity(job.Storm)
	if l.AllowFiles {
		src = track.Identity(job.Storm)
	}
	return track.New(ctx, src, opts...)
}

// Serialize renders the track's current view as a TrackDocument.
func Serialize(tr *track.Track) (domain.TrackDocument, error) {
	if tr.Len() == 0 {
		return domain.TrackDocument{}, fmt.Errorf("%w: %s has no fixes in the selected window",
			domain.ErrRetrieval, tr.StormID())
	}
	body := tr.String()
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return domain.TrackDocument{
		StormID:    tr.StormID().String(),
		Name:       tr.Name(),
		RecordType: tr.RecordType(),
		Start:      tr.StartDate(),
		End:        tr.EndDate(),
		Body:       []byte(body),
	}, nil
}

// ToEvent maps a TrackDocument onto the sink wire format.
func ToEvent(doc domain.TrackDocument) domain.OutputEvent {
	headers := map[string]string{
		"storm_id": doc.StormID,
		"start":    doc.Start.UTC().Format(time.RFC3339),
		"end":      doc.End.UTC().Format(time.RFC3339),
	}
	if doc.Name != "" {
		headers["name"] = doc.Name
	}
	if doc.RecordType != "" {
		headers["record_type"] = doc.RecordType
	}
	return domain.OutputEvent{
		Key:     []byte(doc.StormID),
		Value:   doc.Body,
		Headers: headers,
	}
}
