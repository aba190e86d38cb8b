package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/domain"
	"github.com/couchcryptid/storm-vortex-track/internal/pipeline"
	"github.com/couchcryptid/storm-vortex-track/internal/track"
)

const (
	viewFort22   = "fort22"
	viewSummary  = "summary"
	viewLine     = "line"
	viewIsotachs = "isotachs"
	viewSwath    = "swath"
)

// Accepted date formats for start and end, most specific first.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04Z", "2006010215", "2006-01-02"}

func (s *Server) handleFort22(w http.ResponseWriter, r *http.Request) {
	tr, ok := s.open(w, r, viewFort22)
	if !ok {
		return
	}
	body := tr.String()
	if body != "" {
		body += "\n"
	}
	s.record(viewFort22, http.StatusOK)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body) //nolint:errcheck // client went away
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	tr, ok := s.open(w, r, viewSummary)
	if !ok {
		return
	}
	s.record(viewSummary, http.StatusOK)
	writeJSON(w, http.StatusOK, tr.Summarize())
}

func (s *Server) handleLine(w http.ResponseWriter, r *http.Request) {
	tr, ok := s.open(w, r, viewLine)
	if !ok {
		return
	}
	s.record(viewLine, http.StatusOK)
	writeGeoJSON(w, trackLine(tr))
}

func (s *Server) handleIsotachs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	windSpeed, err := intParam(q, "wind_speed", 34)
	if err != nil {
		s.fail(w, viewIsotachs, err)
		return
	}
	segments, tolerance, err := s.shapeParams(q)
	if err != nil {
		s.fail(w, viewIsotachs, err)
		return
	}
	tr, ok := s.open(w, r, viewIsotachs)
	if !ok {
		return
	}
	rings, err := tr.Isotachs(windSpeed, segments)
	if err != nil {
		s.fail(w, viewIsotachs, err)
		return
	}
	fc, err := ringCollection(rings, tolerance)
	if err != nil {
		s.fail(w, viewIsotachs, err)
		return
	}
	s.record(viewIsotachs, http.StatusOK)
	writeGeoJSON(w, fc)
}

func (s *Server) handleSwath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	threshold, err := intParam(q, "isotach", 34)
	if err != nil {
		s.fail(w, viewSwath, err)
		return
	}
	segments, tolerance, err := s.shapeParams(q)
	if err != nil {
		s.fail(w, viewSwath, err)
		return
	}
	tr, ok := s.open(w, r, viewSwath)
	if !ok {
		return
	}
	g, err := tr.WindSwath(threshold, segments)
	if err != nil {
		s.fail(w, viewSwath, err)
		return
	}
	f, err := swathFeature(tr, threshold, g, tolerance)
	if err != nil {
		s.fail(w, viewSwath, err)
		return
	}
	s.record(viewSwath, http.StatusOK)
	writeGeoJSON(w, f)
}

// open loads the track named by the path, shaped by the query string. On
// failure it writes the error response and returns false.
func (s *Server) open(w http.ResponseWriter, r *http.Request, view string) (*track.Track, bool) {
	job, err := parseJob(r)
	if err != nil {
		s.fail(w, view, err)
		return nil, false
	}
	tr, err := s.tracks.LoadTrack(r.Context(), job)
	if err != nil {
		s.fail(w, view, err)
		return nil, false
	}
	return tr, true
}

func (s *Server) shapeParams(q url.Values) (segments int, tolerance float64, err error) {
	if segments, err = intParam(q, "segments", s.segments); err != nil {
		return 0, 0, err
	}
	if v := q.Get("tolerance"); v != "" {
		tolerance, err = strconv.ParseFloat(v, 64)
		if err != nil || tolerance < 0 {
			return 0, 0, fmt.Errorf("%w: invalid tolerance %q", domain.ErrConfiguration, v)
		}
	}
	return segments, tolerance, nil
}

func parseJob(r *http.Request) (pipeline.Job, error) {
	q := r.URL.Query()
	job := pipeline.Job{
		Storm:      r.PathValue("storm"),
		Deck:       domain.FileDeck(q.Get("deck")),
		Mode:       domain.Mode(q.Get("mode")),
		RecordType: q.Get("record_type"),
	}
	var err error
	if job.Start, err = timeParam(q, "start"); err != nil {
		return job, err
	}
	if job.End, err = timeParam(q, "end"); err != nil {
		return job, err
	}
	if job.StartOffset, err = durationParam(q, "start_offset"); err != nil {
		return job, err
	}
	if job.EndOffset, err = durationParam(q, "end_offset"); err != nil {
		return job, err
	}
	return job, nil
}

func timeParam(q url.Values, key string) (time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid %s %q", domain.ErrConfiguration, key, v)
}

func durationParam(q url.Values, key string) (*time.Duration, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", domain.ErrConfiguration, key, v)
	}
	return &d, nil
}

func intParam(q url.Values, key string, fallback int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", domain.ErrConfiguration, key, v)
	}
	return n, nil
}

func (s *Server) fail(w http.ResponseWriter, view string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("track request failed", "view", view, "status", status, "error", err)
	} else {
		s.logger.Debug("track request rejected", "view", view, "status", status, "error", err)
	}
	s.record(view, status)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) record(view string, status int) {
	s.metrics.TrackRequests.WithLabelValues(view, strconv.Itoa(status)).Inc()
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrIdentityResolution):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConfiguration),
		errors.Is(err, domain.ErrDateRange),
		errors.Is(err, domain.ErrInvalidIsotach):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRetrieval):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeGeoJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
