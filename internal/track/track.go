// Package track holds the VortexTrack aggregate: one storm's fixes together
// with the time window and reporting source they are viewed through.
//
// A Track acquires its record table once per source configuration (storm id,
// file deck, mode and explicit filename) and reuses it while only the window
// or record type changes. Speed and direction are derived from positions and
// recomputed lazily whenever the position columns change.
//
// A Track is not safe for concurrent use.
package track

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/atcf"
	"github.com/couchcryptid/storm-vortex-track/internal/domain"
)

// sourceConfig is the tuple that identifies where the table came from.
type sourceConfig struct {
	stormID  domain.StormID
	deck     domain.FileDeck
	mode     domain.Mode
	filename string
}

// Track is a storm track viewed through a time window and record type.
type Track struct {
	provider domain.Provider
	resolver domain.Resolver
	logger   *slog.Logger

	cfg     sourceConfig
	fetched sourceConfig
	// forecast applies a-deck forecast hours when reading cfg.filename.
	forecast bool

	table  domain.RecordTable
	remote bool // table came from the provider

	start      time.Time // zero means the first fix
	end        time.Time // zero means the last fix
	recordType string

	positions     uint64
	velocityStale bool
}

// New builds a track from src. Fixes are acquired eagerly, so retrieval and
// identity errors surface here.
func New(ctx context.Context, src Source, opts ...Option) (*Track, error) {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	t := &Track{
		provider: s.provider,
		resolver: s.resolver,
		logger:   s.logger,
		forecast: src.forecast,
	}

	deck, err := domain.ParseFileDeck(string(s.deck))
	if err != nil {
		return nil, err
	}
	mode, err := domain.ParseMode(string(s.mode))
	if err != nil {
		return nil, err
	}
	t.cfg = sourceConfig{deck: deck, mode: mode, filename: s.filename}

	if t.recordType, err = domain.NormalizeRecordType(deck, s.recordType); err != nil {
		return nil, err
	}

	if err := t.load(ctx, src); err != nil {
		return nil, err
	}

	if err := t.applyWindow(s); err != nil {
		return nil, err
	}
	return t, nil
}

// Open builds a track from an existing file path or a storm identity.
func Open(ctx context.Context, s string, opts ...Option) (*Track, error) {
	return New(ctx, Identity(s), opts...)
}

// FromStormName resolves a storm by name and year and fetches its deck.
func FromStormName(ctx context.Context, name string, year int, opts ...Option) (*Track, error) {
	return New(ctx, Source{kind: sourceName, name: name, year: year}, opts...)
}

// FromFort22 reads a fort.22 file, whose forecast hours are offsets from the
// track start and leave fix times untouched.
func FromFort22(ctx context.Context, path string, opts ...Option) (*Track, error) {
	return New(ctx, Source{kind: sourceFile, identity: path}, opts...)
}

// FromATCFFile reads a raw ATCF deck file. Forecast rows are placed at their
// valid time, issuance time plus forecast hour.
func FromATCFFile(ctx context.Context, path string, opts ...Option) (*Track, error) {
	return New(ctx, Source{kind: sourceFile, identity: path, forecast: true}, opts...)
}

func (t *Track) load(ctx context.Context, src Source) error {
	switch src.kind {
	case sourceTable:
		t.adopt(src.table.Clone(), false)
		t.fetched = t.cfg
		return t.deriveStormID(ctx)

	case sourceStream:
		table, err := atcf.Decode(src.stream, atcf.DecodeOptions{})
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
		}
		t.adopt(table, false)
		t.fetched = t.cfg
		return t.deriveStormID(ctx)

	case sourceFile:
		t.cfg.filename = src.identity
		return t.acquire(ctx)

	case sourceName:
		id, err := t.resolve(ctx, src.name, src.year)
		if err != nil {
			return err
		}
		t.cfg.stormID = id
		return t.acquire(ctx)
	}

	if src.kind == sourceIdentity {
		if _, err := os.Stat(src.identity); err == nil {
			t.cfg.filename = src.identity
			return t.acquire(ctx)
		}
	}
	id, err := t.parseIdentity(ctx, src.identity)
	if err != nil {
		return err
	}
	t.cfg.stormID = id
	return t.acquire(ctx)
}

// parseIdentity accepts a storm id or a name followed by a four-digit year.
func (t *Track) parseIdentity(ctx context.Context, s string) (domain.StormID, error) {
	if name, year, ok := domain.SplitNameYear(s); ok {
		return t.resolve(ctx, name, year)
	}
	id, err := domain.ParseStormID(s)
	if err != nil {
		return domain.StormID{}, fmt.Errorf("%w: %q is neither a file nor a storm id", domain.ErrIdentityResolution, s)
	}
	return id, nil
}

func (t *Track) resolve(ctx context.Context, name string, year int) (domain.StormID, error) {
	if t.resolver == nil {
		return domain.StormID{}, fmt.Errorf("%w: no resolver for storm %q %d", domain.ErrIdentityResolution, name, year)
	}
	id, err := t.resolver.Resolve(ctx, name, year)
	if err != nil {
		return domain.StormID{}, fmt.Errorf("resolve storm %q %d: %w", name, year, err)
	}
	return id, nil
}

// acquire replaces the table from the configured file or the provider.
func (t *Track) acquire(ctx context.Context) error {
	cfg := t.cfg

	var (
		table  domain.RecordTable
		remote bool
		err    error
	)
	if cfg.filename != "" {
		table, err = readFile(cfg.filename, t.forecast)
	} else {
		table, err = t.fetch(ctx, cfg)
		remote = true
	}
	if err != nil {
		return err
	}

	t.adopt(table, remote)
	t.fetched = cfg
	if cfg.stormID.IsZero() {
		if err := t.deriveStormID(ctx); err != nil {
			return err
		}
	}

	t.logger.Info("track acquired",
		"storm_id", t.cfg.stormID.String(),
		"deck", string(cfg.deck),
		"mode", string(cfg.mode),
		"filename", cfg.filename,
		"fixes", len(table),
	)
	return nil
}

func (t *Track) fetch(ctx context.Context, cfg sourceConfig) (domain.RecordTable, error) {
	if cfg.stormID.IsZero() {
		return nil, fmt.Errorf("%w: no storm id to fetch", domain.ErrIdentityResolution)
	}
	if t.provider == nil {
		return nil, fmt.Errorf("%w: no provider configured", domain.ErrRetrieval)
	}
	table, err := t.provider.Fetch(ctx, domain.FetchRequest{StormID: cfg.stormID, Deck: cfg.deck, Mode: cfg.mode})
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: %s %s-deck is empty", domain.ErrRetrieval, cfg.stormID, cfg.deck)
	}
	return table, nil
}

func readFile(path string, forecast bool) (domain.RecordTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}
	defer f.Close()

	table, err := atcf.Decode(f, atcf.DecodeOptions{ApplyForecastHours: forecast})
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrRetrieval, path, err)
	}
	return table, nil
}

func (t *Track) adopt(table domain.RecordTable, remote bool) {
	table.SortByTime()
	t.table = table
	t.remote = remote
	t.velocityStale = true
}

// deriveStormID takes the identity from the last fix, falling back to a name
// lookup. A track whose identity cannot be derived keeps a zero StormID.
func (t *Track) deriveStormID(ctx context.Context) error {
	if len(t.table) == 0 {
		return fmt.Errorf("%w: %w", domain.ErrRetrieval, atcf.ErrNoRecords)
	}
	last := t.table[len(t.table)-1]

	if id, err := domain.ParseStormID(domain.StormIDFromFix(last).String()); err == nil && id.Number > 0 {
		t.setDerivedID(id)
		return nil
	}
	if last.Name != "" && t.resolver != nil {
		id, err := t.resolver.Resolve(ctx, last.Name, last.Time.Year())
		if err == nil {
			t.setDerivedID(id)
			return nil
		}
		if !errors.Is(err, domain.ErrIdentityResolution) {
			return fmt.Errorf("resolve storm %q: %w", last.Name, err)
		}
	}
	t.logger.Warn("storm id could not be derived", "name", last.Name)
	return nil
}

// setDerivedID records an identity learned from the data without making the
// source configuration look changed.
func (t *Track) setDerivedID(id domain.StormID) {
	t.cfg.stormID = id
	t.fetched.stormID = id
}

// reconfigure applies change to the source configuration and reacquires the
// table when the configuration differs from the one last fetched. On failure
// the previous configuration is restored.
func (t *Track) reconfigure(ctx context.Context, change func(*sourceConfig)) error {
	prev := t.cfg
	change(&t.cfg)
	if t.cfg == t.fetched && t.table != nil {
		return nil
	}
	if err := t.acquire(ctx); err != nil {
		t.cfg = prev
		return err
	}
	t.revalidateWindow()
	return nil
}

// SetStormID switches to another storm, given as an id or name and year, and
// drops any explicit filename.
func (t *Track) SetStormID(ctx context.Context, s string) error {
	id, err := t.parseIdentity(ctx, s)
	if err != nil {
		return err
	}
	return t.reconfigure(ctx, func(c *sourceConfig) {
		c.stormID = id
		c.filename = ""
	})
}

// SetFileDeck switches deck. It fails when the selected record type is not
// valid for the new deck.
func (t *Track) SetFileDeck(ctx context.Context, deck domain.FileDeck) error {
	deck, err := domain.ParseFileDeck(string(deck))
	if err != nil {
		return err
	}
	if t.recordType != "" {
		if _, err := domain.NormalizeRecordType(deck, t.recordType); err != nil {
			return err
		}
	}
	return t.reconfigure(ctx, func(c *sourceConfig) { c.deck = deck })
}

// SetMode switches between the archive and the realtime directories.
func (t *Track) SetMode(ctx context.Context, mode domain.Mode) error {
	mode, err := domain.ParseMode(string(mode))
	if err != nil {
		return err
	}
	return t.reconfigure(ctx, func(c *sourceConfig) { c.mode = mode })
}

// SetFilename reads fixes from path. An empty path returns to the provider.
func (t *Track) SetFilename(ctx context.Context, path string) error {
	return t.reconfigure(ctx, func(c *sourceConfig) { c.filename = path })
}

// SetRecordType restricts the view to one reporting source. An empty value
// removes the restriction.
func (t *Track) SetRecordType(recordType string) error {
	rt, err := domain.NormalizeRecordType(t.cfg.deck, recordType)
	if err != nil {
		return err
	}
	t.recordType = rt
	return nil
}

// StormID is the zero value when the identity could not be derived.
func (t *Track) StormID() domain.StormID { return t.cfg.stormID }

func (t *Track) FileDeck() domain.FileDeck { return t.cfg.deck }

func (t *Track) Mode() domain.Mode { return t.cfg.mode }

func (t *Track) Filename() string { return t.cfg.filename }

func (t *Track) RecordType() string { return t.recordType }

// Table returns the underlying unfiltered table. Edits to it are seen by the
// next read; position edits trigger a velocity recomputation.
func (t *Track) Table() domain.RecordTable {
	return t.table
}

// SetTable replaces the underlying table. Window dates that fall outside the
// new table are reset.
func (t *Track) SetTable(table domain.RecordTable) {
	t.adopt(table.Clone(), t.remote)
	t.revalidateWindow()
}

// Data returns a copy of the fixes inside the window for the active record
// types, with speed and direction current.
func (t *Track) Data() domain.RecordTable {
	t.updateVelocity()
	return t.view().Clone()
}

// Len is the number of rows in the current view.
func (t *Track) Len() int {
	return len(t.view())
}

// view filters the table without copying.
func (t *Track) view() domain.RecordTable {
	if len(t.table) == 0 {
		return nil
	}
	start, end := t.StartDate(), t.snappedEnd()
	types := t.activeRecordTypes()

	out := make(domain.RecordTable, 0, len(t.table))
	for _, f := range t.table {
		if f.Time.Before(start) || f.Time.After(end) {
			continue
		}
		if types != nil && !slices.Contains(types, f.RecordType) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// activeRecordTypes is nil when every record type is shown.
func (t *Track) activeRecordTypes() []string {
	switch {
	case t.recordType != "":
		return []string{t.recordType}
	case t.remote:
		return domain.DefaultRecordTypes
	default:
		return nil
	}
}

func (t *Track) updateVelocity() {
	fp := positionFingerprint(t.table)
	if !t.velocityStale && fp == t.positions {
		return
	}
	computeVelocity(t.table)
	t.positions = fp
	t.velocityStale = false
	t.logger.Debug("velocity recomputed", "storm_id", t.cfg.stormID.String(), "fixes", len(t.table))
}
