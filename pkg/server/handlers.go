package server

import (
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/vizlab/pkg/buildinfo"
	"github.com/matzehuels/vizlab/pkg/cache"
	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/pipeline"
	"github.com/matzehuels/vizlab/pkg/render/sink"
	"github.com/matzehuels/vizlab/pkg/session"
	"github.com/matzehuels/vizlab/pkg/store"
	"github.com/matzehuels/vizlab/pkg/view"
)

// maxBody caps request bodies.
const maxBody = 1 << 20

type chartInfo struct {
	Name string     `json:"name"`
	Kind chart.Kind `json:"kind"`
	URL  string     `json:"url"`
}

type sessionInfo struct {
	session.Session
	ChartURL string `json:"chart_url"`
}

type snapshotInfo struct {
	store.Snapshot
	SVGURL string `json:"svg_url"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"charts":   len(s.cfg.Charts),
		"sessions": s.sessions.Len(),
		"build":    buildinfo.Current(),
	})
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	out := make([]chartInfo, 0, len(s.cfg.Charts))
	for _, c := range s.cfg.Charts {
		out = append(out, chartInfo{Name: c.Name, Kind: c.Kind, URL: "/charts/" + c.Name + ".svg"})
	}
	writeJSON(w, http.StatusOK, map[string]any{"title": s.cfg.Title, "charts": out})
}

// handleChartSVG renders a gallery chart. Query parameters seed the view
// state: "param.<name>=<number>" sets a numeric control, any other key
// selects a value, and "animate=true" exports pending transitions.
func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	cc, err := s.cfg.Chart(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	cc, animate, err := withQuery(cc, r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Chart:   cc,
		Formats: []sink.Format{sink.FormatSVG},
		Animate: animate,
		Title:   cc.Name,
		Logger:  s.logger,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("X-Cache", cacheStatus(res.CacheInfo.RenderHit))
	writeBytes(w, sink.FormatSVG.ContentType(), res.Artifacts[sink.FormatSVG])
}

// withQuery returns cc with the query merged into its initial selections.
func withQuery(cc chart.Config, q map[string][]string) (chart.Config, bool, error) {
	animate := false
	selected := maps.Clone(cc.Selected)
	params := maps.Clone(cc.Params)
	for key, values := range q {
		if len(values) == 0 {
			continue
		}
		v := values[len(values)-1]
		switch {
		case key == "animate":
			b, err := strconv.ParseBool(v)
			if err != nil {
				return cc, false, errors.New(errors.ErrCodeInvalidInput, "animate must be a boolean, got %q", v)
			}
			animate = b
		case strings.HasPrefix(key, "param."):
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return cc, false, errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %q", key, v)
			}
			if params == nil {
				params = map[string]float64{}
			}
			params[strings.TrimPrefix(key, "param.")] = f
		default:
			if selected == nil {
				selected = map[string]string{}
			}
			selected[key] = v
		}
	}
	cc.Selected = selected
	cc.Params = params
	return cc, animate, nil
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Chart string `json:"chart"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Chart == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "chart is required"))
		return
	}
	l, err := s.sessions.Create(r.Context(), req.Chart)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+l.ID())
	writeJSON(w, http.StatusCreated, newSessionInfo(l.Session()))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	l, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionInfo(l.Session()))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	msg, err := view.Decode(body)
	if err != nil {
		writeError(w, err)
		return
	}
	state, err := s.sessions.Dispatch(r.Context(), chi.URLParam(r, "id"), msg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}

// handleSessionSVG renders the session chart as it stands. With
// "animate=true" the transitions of the last event are exported as SMIL;
// otherwise they are settled first.
func (s *Server) handleSessionSVG(w http.ResponseWriter, r *http.Request) {
	l, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	animate, _ := strconv.ParseBool(r.URL.Query().Get("animate"))

	var svg []byte
	err = l.View(func(c chart.Chart, _ view.State) error {
		var err error
		svg, err = sink.Render(r.Context(), c, sink.FormatSVG, sink.Options{Animate: animate, Title: c.Name()})
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeBytes(w, sink.FormatSVG.ContentType(), svg)
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := readOptionalJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	l, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	snap := &store.Snapshot{Title: req.Title}
	err = l.View(func(c chart.Chart, st view.State) error {
		svg, err := sink.Render(r.Context(), c, sink.FormatSVG, sink.Options{Title: c.Name()})
		if err != nil {
			return err
		}
		snap.Chart = c.Name()
		snap.Kind = string(c.Kind())
		snap.State = st
		snap.SVG = svg
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.snapshots.Save(r.Context(), snap); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "save snapshot"))
		return
	}
	s.logger.Info("snapshot saved", "id", snap.ID, "chart", snap.Chart, "session", l.ID())

	w.Header().Set("Location", "/snapshots/"+snap.ID)
	writeJSON(w, http.StatusCreated, newSnapshotInfo(*snap))
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	opts := store.ListOptions{Chart: r.URL.Query().Get("chart")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer, got %q", v))
			return
		}
		opts.Limit = n
	}
	snaps, err := s.snapshots.List(r.Context(), opts)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "list snapshots"))
		return
	}
	out := make([]snapshotInfo, len(snaps))
	for i, snap := range snaps {
		out[i] = newSnapshotInfo(snap)
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": out})
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.getSnapshot(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSnapshotInfo(*snap))
}

// handleSnapshotSVG serves a snapshot rendering through the render cache;
// snapshots never change, so entries live for cache.TTLSnapshot.
func (s *Server) handleSnapshotSVG(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	key := s.runner.Keyer.SnapshotKey(id, string(sink.FormatSVG))
	if data, ok, err := s.runner.Cache.Get(r.Context(), key); err == nil && ok {
		w.Header().Set("X-Cache", cacheStatus(true))
		writeBytes(w, sink.FormatSVG.ContentType(), data)
		return
	}

	snap, err := s.getSnapshot(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.runner.Cache.Set(r.Context(), key, snap.SVG, cache.TTLSnapshot); err != nil {
		s.logger.Warn("cache snapshot", "id", id, "error", err)
	}
	w.Header().Set("X-Cache", cacheStatus(false))
	writeBytes(w, sink.FormatSVG.ContentType(), snap.SVG)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.snapshots.Delete(r.Context(), id); err != nil {
		writeError(w, snapshotError(id, err))
		return
	}
	if err := s.runner.Cache.Delete(r.Context(), s.runner.Keyer.SnapshotKey(id, string(sink.FormatSVG))); err != nil {
		s.logger.Warn("evict snapshot", "id", id, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSnapshot(r *http.Request) (*store.Snapshot, error) {
	id := chi.URLParam(r, "id")
	snap, err := s.snapshots.Get(r.Context(), id)
	if err != nil {
		return nil, snapshotError(id, err)
	}
	return snap, nil
}

func snapshotError(id string, err error) error {
	if err == store.ErrNotFound {
		return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %s not found", id)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "load snapshot %s", id)
}

func newSessionInfo(sess session.Session) sessionInfo {
	return sessionInfo{Session: sess, ChartURL: "/sessions/" + sess.ID + "/chart.svg"}
}

func newSnapshotInfo(snap store.Snapshot) snapshotInfo {
	snap.SVG = nil
	return snapshotInfo{Snapshot: snap, SVGURL: "/snapshots/" + snap.ID + ".svg"}
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// readJSON decodes a JSON request body, rejecting unknown fields.
func readJSON(r *http.Request, v any) error {
	return decodeBody(r, v, false)
}

// readOptionalJSON is readJSON that accepts an empty body.
func readOptionalJSON(r *http.Request, v any) error {
	return decodeBody(r, v, true)
}

func decodeBody(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	switch {
	case err == io.EOF && optional:
		return nil
	case err == io.EOF:
		return errors.New(errors.ErrCodeInvalidInput, "request body is required")
	case err != nil:
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}
