package track

import (
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/domain"
)

// Option configures a Track at construction.
type Option func(*settings)

type settings struct {
	start       time.Time
	end         time.Time
	startOffset *time.Duration
	endOffset   *time.Duration
	deck        domain.FileDeck
	mode        domain.Mode
	recordType  string
	filename    string
	provider    domain.Provider
	resolver    domain.Resolver
	logger      *slog.Logger
}

// WithStartDate restricts the view to fixes at or after t.
func WithStartDate(t time.Time) Option {
	return func(s *settings) { s.start = t }
}

// WithEndDate restricts the view to fixes at or before t, snapped forward to
// the next timestamp present in the track.
func WithEndDate(t time.Time) Option {
	return func(s *settings) { s.end = t }
}

// WithStartOffset sets the start relative to the track: a non-negative offset
// counts from the first fix, a negative one back from the last.
func WithStartOffset(d time.Duration) Option {
	return func(s *settings) { s.startOffset = &d }
}

// WithEndOffset sets the end relative to the track, as WithStartOffset does.
func WithEndOffset(d time.Duration) Option {
	return func(s *settings) { s.endOffset = &d }
}

// WithFileDeck selects the ATCF deck. The a-deck is the default.
func WithFileDeck(deck domain.FileDeck) Option {
	return func(s *settings) { s.deck = deck }
}

// WithMode selects historical or realtime retrieval.
func WithMode(mode domain.Mode) Option {
	return func(s *settings) { s.mode = mode }
}

// WithRecordType restricts the view to a single reporting source.
func WithRecordType(recordType string) Option {
	return func(s *settings) { s.recordType = recordType }
}

// WithFilename reads fixes from a local ATCF file instead of the provider.
func WithFilename(path string) Option {
	return func(s *settings) { s.filename = path }
}

// WithProvider sets the remote deck provider.
func WithProvider(p domain.Provider) Option {
	return func(s *settings) { s.provider = p }
}

// WithResolver sets the storm name lookup.
func WithResolver(r domain.Resolver) Option {
	return func(s *settings) { s.resolver = r }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}
