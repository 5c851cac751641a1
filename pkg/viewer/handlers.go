package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhengjing-huang/lighthouse/pkg/archive"
	"github.com/zhengjing-huang/lighthouse/pkg/errors"
	pkgio "github.com/zhengjing-huang/lighthouse/pkg/io"
	"github.com/zhengjing-huang/lighthouse/pkg/lhreport"
	"github.com/zhengjing-huang/lighthouse/pkg/render/html"
	"github.com/zhengjing-huang/lighthouse/pkg/session"
)

var upgrader = websocket.Upgrader{
	// The socket is guarded by the session ID, not the Origin header;
	// viewer pages may be saved to disk and reopened from file://.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// waitingShell is served before any report has been loaded. It connects
// to the reload socket so the page swaps itself for the viewer as soon as
// a report arrives. The %q verb carries the socket path.
const waitingShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Treemap</title>
<style>
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    display: flex; align-items: center; justify-content: center;
    height: 100vh; margin: 0; color: #444;
  }
  code { background: #f0f0f0; padding: 2px 6px; border-radius: 3px; }
</style>
</head>
<body>
<p>Waiting for a report. Push one with <code>POST /api/reports</code>.</p>
<script>
(function () {
  const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
  const sock = new WebSocket(proto + '//' + location.host + %q);
  sock.addEventListener('message', () => location.reload());
})();
</script>
</body>
</html>
`

// pushResponse acknowledges an accepted report. Token is the replacement
// handshake token; the one used for this push is spent.
type pushResponse struct {
	ID    string `json:"id"`
	URL   string `json:"url,omitempty"`
	Token string `json:"token,omitempty"`
}

// SetReport makes o the report the viewer displays: the page is rendered,
// the report is archived, and every connected page is told to reload.
//
// An archive backend failure is logged and otherwise ignored; the viewer
// keeps serving from memory.
func (s *Server) SetReport(ctx context.Context, o *lhreport.Options) (*archive.Record, error) {
	opts := s.base
	if opts.View == "" {
		opts.View = o.View()
	}
	if opts.Locale == "" {
		opts.Locale = o.Report.Locale()
	}

	tree, err := s.runner.Build(ctx, o, opts)
	if err != nil {
		return nil, err
	}

	// The page is rendered here rather than through the pipeline's
	// artifact path: it embeds this server's reload socket, so it is
	// per-process, not content-addressed.
	htmlOpts := []html.Option{
		html.WithColorizer(tree.Colorizer),
		html.WithView(opts.View),
		html.WithLocale(opts.Locale),
		html.WithLiveReload(s.wsPath()),
	}
	if opts.Title != "" {
		htmlOpts = append(htmlOpts, html.WithTitle(opts.Title))
	}
	if opts.Debug {
		raw, err := json.Marshal(o)
		if err != nil {
			return nil, fmt.Errorf("encode options: %w", err)
		}
		htmlOpts = append(htmlOpts, html.WithOptionsJSON(raw))
	}
	page, err := html.Render(tree.Root, htmlOpts...)
	if err != nil {
		return nil, err
	}

	rec, err := archive.NewRecord(o, tree.Root)
	if err != nil {
		return nil, err
	}
	if err := s.archive.Put(ctx, rec); err != nil {
		s.logger.Warn("archive unavailable, report not persisted", "err", err)
	}

	s.mu.Lock()
	s.current = o
	s.page = page
	s.sess.ReportID = rec.ID
	s.sess.URL = rec.URL
	s.sess.View = opts.View
	sess := *s.sess
	s.mu.Unlock()

	if err := s.sessions.Set(ctx, &sess); err != nil {
		s.logger.Warn("session store unavailable, session not updated", "err", err)
	}

	s.hub.broadcast(wsMessage{Type: "report", ID: rec.ID, URL: rec.URL})
	s.logger.Info("report loaded",
		"url", rec.URL,
		"resource_bytes", rec.ResourceBytes,
		"nodes", tree.Root.CountNodes(),
		"pages", s.hub.count())
	return rec, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	page := s.page
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if page == nil {
		fmt.Fprintf(w, waitingShell, s.wsPath())
		return
	}
	w.Write(page)
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	if current == nil {
		writeError(w, errors.New(errors.ErrCodeReportNotFound, "no report loaded"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := pkgio.WriteDebug(current, w); err != nil {
		s.logger.Error("write debug options", "err", err)
	}
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.Header.Get("X-Treemap-Token")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	ok, err := s.tokens.Validate(ctx, token)
	if err != nil {
		s.logger.Warn("token validation failed", "err", err)
	}
	if !ok {
		writeError(w, errors.New(errors.ErrCodeInvalidToken, "invalid or expired push token"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPushBytes))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	o, err := lhreport.DecodeOptions(body)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := s.SetReport(ctx, o)
	if err != nil {
		writeError(w, err)
		return
	}

	// Mint the replacement token so the pusher can push again.
	next, err := s.tokens.Generate(ctx, session.DefaultTokenTTL)
	if err != nil {
		s.logger.Warn("mint replacement token", "err", err)
	} else {
		s.mu.Lock()
		s.pushToken = next
		s.mu.Unlock()
	}

	writeJSON(w, http.StatusCreated, pushResponse{ID: rec.ID, URL: rec.URL, Token: next})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	records, err := s.archive.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.archive.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if rec == nil {
		writeError(w, errors.New(errors.ErrCodeReportNotFound, "no archived report %q", id))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil || sess == nil {
		http.Error(w, "unknown session", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	s.hub.add(conn)
	defer s.hub.remove(conn)

	// Pages never send anything; the read loop just notices the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read", "err", err)
			}
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps typed errors onto HTTP statuses and emits a JSON error
// body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrCodeInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, errors.ErrCodeReportNotFound), errors.Is(err, errors.ErrCodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrCodeAuditNotFound):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errors.ErrCodeInvalidOptions),
		errors.Is(err, errors.ErrCodeInvalidReport),
		errors.Is(err, errors.ErrCodeInvalidView),
		errors.Is(err, errors.ErrCodeInvalidInput):
		status = http.StatusBadRequest
	}

	writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}
