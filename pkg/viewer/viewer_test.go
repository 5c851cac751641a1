package viewer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/zhengjing-huang/lighthouse/pkg/archive"
	"github.com/zhengjing-huang/lighthouse/pkg/lhreport"
	"github.com/zhengjing-huang/lighthouse/pkg/pipeline"
)

const sampleReport = `{
	"lhr": {
		"finalDisplayedUrl": "https://example.com/",
		"audits": {
			"script-treemap-data": {
				"id": "script-treemap-data",
				"details": {
					"type": "treemap-data",
					"nodes": [
						{
							"name": "https://example.com/main.js",
							"resourceBytes": 307200,
							"unusedBytes": 81920,
							"children": [
								{"name": "src", "resourceBytes": 204800, "unusedBytes": 30720},
								{"name": "node_modules/lodash/lodash.js", "resourceBytes": 102400, "unusedBytes": 51200}
							]
						}
					]
				}
			}
		}
	}
}`

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s, err := New(context.Background(), Config{}, nil, pipeline.Options{}, Stores{}, quietLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func pushReport(t *testing.T, ts *httptest.Server, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/reports", strings.NewReader(body))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Treemap-Token", token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("push request: %v", err)
	}
	return resp
}

func TestIndexWaitingShell(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Waiting for a report") {
		t.Error("waiting shell not served before a report is loaded")
	}
	if !strings.Contains(string(body), "/ws?session=") {
		t.Error("waiting shell should connect to the reload socket")
	}
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestPushAndServePage(t *testing.T) {
	s, ts := newTestServer(t)

	resp := pushReport(t, ts, s.PushToken(), sampleReport)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}

	var ack pushResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		t.Fatalf("decoding ack: %v", err)
	}
	if ack.ID == "" {
		t.Error("ack should carry the archive record id")
	}
	if ack.URL != "https://example.com/" {
		t.Errorf("ack URL = %q", ack.URL)
	}
	if ack.Token == "" {
		t.Error("ack should carry a replacement token")
	}

	// The index now serves the viewer page for the pushed report.
	page, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer page.Body.Close()
	body, _ := io.ReadAll(page.Body)
	if !strings.Contains(string(body), "const TREE") {
		t.Error("index should serve the rendered viewer page")
	}
	if !strings.Contains(string(body), "main.js") {
		t.Error("viewer page should contain the pushed tree")
	}
	if !strings.Contains(string(body), "/ws?session=") {
		t.Error("viewer page should carry the reload socket path")
	}

	// debug.json round-trips as a loadable options document.
	dbg, err := http.Get(ts.URL + "/debug.json")
	if err != nil {
		t.Fatalf("GET /debug.json: %v", err)
	}
	defer dbg.Body.Close()
	data, _ := io.ReadAll(dbg.Body)
	o, err := lhreport.DecodeOptions(data)
	if err != nil {
		t.Fatalf("debug.json should decode: %v", err)
	}
	if o.Report.URL() != "https://example.com/" {
		t.Errorf("debug.json URL = %q", o.Report.URL())
	}
}

func TestDebugWithoutReport(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/debug.json")
	if err != nil {
		t.Fatalf("GET /debug.json: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPushTokenSingleUse(t *testing.T) {
	s, ts := newTestServer(t)
	first := s.PushToken()

	resp := pushReport(t, ts, first, sampleReport)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first push should succeed, got %d", resp.StatusCode)
	}

	// The first token is spent.
	resp = pushReport(t, ts, first, sampleReport)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("reused token should be rejected, got %d", resp.StatusCode)
	}

	// The replacement token works.
	resp = pushReport(t, ts, s.PushToken(), sampleReport)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("replacement token should work, got %d", resp.StatusCode)
	}
}

func TestPushInvalidToken(t *testing.T) {
	_, ts := newTestServer(t)

	resp := pushReport(t, ts, "not-a-token", sampleReport)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["code"] != "INVALID_TOKEN" {
		t.Errorf("error code = %q", body["code"])
	}
}

func TestPushInvalidBody(t *testing.T) {
	s, ts := newTestServer(t)

	resp := pushReport(t, ts, s.PushToken(), `{"not": "a report"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestArchiveEndpoints(t *testing.T) {
	s, ts := newTestServer(t)

	resp := pushReport(t, ts, s.PushToken(), sampleReport)
	var ack pushResponse
	json.NewDecoder(resp.Body).Decode(&ack)
	resp.Body.Close()

	// Listing returns summaries without the options body.
	list, err := http.Get(ts.URL + "/api/reports")
	if err != nil {
		t.Fatalf("GET /api/reports: %v", err)
	}
	defer list.Body.Close()
	var records []*archive.Record
	if err := json.NewDecoder(list.Body).Decode(&records); err != nil {
		t.Fatalf("decoding listing: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Options != nil {
		t.Error("listing should omit the options body")
	}
	if records[0].ResourceBytes != 307200 {
		t.Errorf("record resource bytes = %d", records[0].ResourceBytes)
	}

	// Retrieval by id returns the full record.
	one, err := http.Get(ts.URL + "/api/reports/" + ack.ID)
	if err != nil {
		t.Fatalf("GET /api/reports/{id}: %v", err)
	}
	defer one.Body.Close()
	var rec archive.Record
	if err := json.NewDecoder(one.Body).Decode(&rec); err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	if len(rec.Options) == 0 {
		t.Error("record should carry the options body")
	}
	if _, err := lhreport.DecodeOptions(rec.Options); err != nil {
		t.Errorf("archived options should decode: %v", err)
	}

	// Unknown ids are 404.
	missing, err := http.Get(ts.URL + "/api/reports/nope")
	if err != nil {
		t.Fatalf("GET missing record: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.StatusCode)
	}
}

func TestWebSocketReload(t *testing.T) {
	s, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + s.wsPath()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	push := pushReport(t, ts, s.PushToken(), sampleReport)
	push.Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}
	if msg.Type != "report" {
		t.Errorf("message type = %q", msg.Type)
	}
	if msg.URL != "https://example.com/" {
		t.Errorf("message URL = %q", msg.URL)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	_, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=bogus"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("dial with an unknown session should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake rejection, got %+v", resp)
	}
}

func TestSetReportDirect(t *testing.T) {
	s, _ := newTestServer(t)

	o, err := lhreport.DecodeOptions([]byte(sampleReport))
	if err != nil {
		t.Fatalf("decoding sample: %v", err)
	}

	rec, err := s.SetReport(context.Background(), o)
	if err != nil {
		t.Fatalf("SetReport failed: %v", err)
	}
	if rec.URL != "https://example.com/" {
		t.Errorf("record URL = %q", rec.URL)
	}
	if rec.ResourceBytes != 307200 || rec.UnusedBytes != 81920 {
		t.Errorf("record totals = %d/%d", rec.ResourceBytes, rec.UnusedBytes)
	}

	// The server session now points at the loaded report.
	sess, err := s.sessions.Get(context.Background(), s.sess.ID)
	if err != nil || sess == nil {
		t.Fatalf("session lookup failed: %v", err)
	}
	if sess.ReportID != rec.ID {
		t.Errorf("session report id = %q, want %q", sess.ReportID, rec.ID)
	}
}
