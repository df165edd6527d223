package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/brunobiangulo/docaccess"
	"github.com/brunobiangulo/docaccess/internal/testdoc"
)

type stubEvaluator struct {
	res     docaccess.Result
	err     error
	gotType docaccess.MediaType
}

func (s *stubEvaluator) Analyze(ctx context.Context, doc docaccess.Document) (docaccess.Result, error) {
	s.gotType = doc.MediaType
	return s.res, s.err
}

func testServerConfig() docaccess.ServerConfig {
	cfg := docaccess.DefaultConfig().Server
	cfg.MaxUploadBytes = 1 << 10
	cfg.AnalysisTimeout = time.Second
	return cfg
}

func uploadRequest(t *testing.T, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/validate-file", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(t *testing.T, h http.Handler, req *http.Request) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %q", rec.Body.String())
	}
	return rec.Code, body
}

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.Run()
}

func TestValidateFileTransportErrors(t *testing.T) {
	h := newRouter(&stubEvaluator{res: docaccess.Valid{}}, testServerConfig())

	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{
			name: "wrong field",
			req:  uploadRequest(t, "document", "a.pdf", string(docaccess.MediaPDF), []byte("%PDF-")),
			want: msgNoFile,
		},
		{
			name: "not multipart",
			req:  httptest.NewRequest(http.MethodPost, "/validate-file", strings.NewReader("{}")),
			want: msgNoFile,
		},
		{
			name: "bad extension",
			req:  uploadRequest(t, "file", "a.txt", "text/plain", []byte("hello")),
			want: msgUnsupported,
		},
		{
			name: "extension and mime disagree",
			req:  uploadRequest(t, "file", "a.docx", string(docaccess.MediaPDF), []byte("%PDF-")),
			want: msgUnsupported,
		},
		{
			name: "too large",
			req:  uploadRequest(t, "file", "a.pdf", string(docaccess.MediaPDF), bytes.Repeat([]byte("x"), 4<<10)),
			want: msgTooLarge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := serve(t, h, tt.req)
			if code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", code)
			}
			if body["message"] != tt.want {
				t.Errorf("message = %v, want %q", body["message"], tt.want)
			}
		})
	}
}

func TestValidateFileResult(t *testing.T) {
	stub := &stubEvaluator{res: docaccess.Invalid{
		MissingAltText: []docaccess.AltTextFinding{{ImageTag: `<wp:docPr id="1"/>`}},
	}}
	h := newRouter(stub, testServerConfig())

	code, body := serve(t, h, uploadRequest(t, "file", "report.docx", string(docaccess.MediaDOCX), []byte("PK")))
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if stub.gotType != docaccess.MediaDOCX {
		t.Errorf("media type = %q, want docx", stub.gotType)
	}
	if body["message"] != docaccess.MessageMissingAltText {
		t.Errorf("message = %v", body["message"])
	}
	if alt, _ := body["imagesMissingAlternateText"].([]any); len(alt) != 1 {
		t.Errorf("imagesMissingAlternateText = %v", body["imagesMissingAlternateText"])
	}
}

func TestValidateFileTimeout(t *testing.T) {
	h := newRouter(&stubEvaluator{err: context.DeadlineExceeded}, testServerConfig())

	code, _ := serve(t, h, uploadRequest(t, "file", "a.pdf", string(docaccess.MediaPDF), []byte("%PDF-")))
	if code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", code)
	}
}

func TestValidateFileEndToEnd(t *testing.T) {
	e, err := docaccess.New(docaccess.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	cfg := testServerConfig()
	cfg.MaxUploadBytes = 1 << 20
	h := newRouter(e, cfg)

	docx := testdoc.Zip(t,
		testdoc.Entry{Name: "word/document.xml", Data: testdoc.DocumentXML("Quarterly report")},
		testdoc.Entry{Name: "word/_rels/document.xml.rels", Data: testdoc.Relationships()},
	)
	code, body := serve(t, h, uploadRequest(t, "file", "q3.docx", string(docaccess.MediaDOCX), docx))
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["message"] != docaccess.MessageValid {
		t.Errorf("message = %v, want %q", body["message"], docaccess.MessageValid)
	}

	code, body = serve(t, h, uploadRequest(t, "file", "empty.pdf", string(docaccess.MediaPDF), []byte("not a pdf")))
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["message"] != docaccess.ReasonEmptyFile {
		t.Errorf("message = %v, want %q", body["message"], docaccess.ReasonEmptyFile)
	}
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testServerConfig()
	cfg.APIKey = "secret"
	h := newRouter(&stubEvaluator{res: docaccess.Valid{}}, cfg)

	req := uploadRequest(t, "file", "a.pdf", string(docaccess.MediaPDF), []byte("%PDF-"))
	if code, _ := serve(t, h, req); code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", code)
	}

	req = uploadRequest(t, "file", "a.pdf", string(docaccess.MediaPDF), []byte("%PDF-"))
	req.Header.Set("Authorization", "Bearer secret")
	if code, _ := serve(t, h, req); code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", code)
	}

	health := httptest.NewRequest(http.MethodGet, "/health", nil)
	if code, body := serve(t, h, health); code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", code, body)
	}
}

func TestRequestIDAndCORS(t *testing.T) {
	h := newRouter(&stubEvaluator{res: docaccess.Valid{}}, testServerConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("missing request ID header")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	code, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	if code != http.StatusInternalServerError || body["message"] != msgInternalFail {
		t.Errorf("got %d %v", code, body)
	}
}

func TestValidateFileCanceled(t *testing.T) {
	h := newRouter(&stubEvaluator{err: context.Canceled}, testServerConfig())

	code, body := serve(t, h, uploadRequest(t, "file", "a.pdf", string(docaccess.MediaPDF), []byte("%PDF-")))
	if code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", code)
	}
	if body["message"] != msgCanceled {
		t.Errorf("message = %v, want %q", body["message"], msgCanceled)
	}
}

func TestUploadMediaType(t *testing.T) {
	tests := []struct {
		filename, contentType string
		want                  docaccess.MediaType
		wantOK                bool
	}{
		{"a.pdf", "application/pdf", docaccess.MediaPDF, true},
		{"a.PDF", "application/pdf; charset=binary", docaccess.MediaPDF, true},
		{"a.docx", string(docaccess.MediaDOCX), docaccess.MediaDOCX, true},
		{"a.docx", "application/octet-stream", "", false},
		{"a.pdf", "", "", false},
		{"a.txt", "application/pdf", "", false},
	}
	for _, tt := range tests {
		got, ok := uploadMediaType(tt.filename, tt.contentType)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("uploadMediaType(%q, %q) = (%q, %v), want (%q, %v)",
				tt.filename, tt.contentType, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestRequestIDReachesAnalysisLogs(t *testing.T) {
	var buf bytes.Buffer
	e, err := docaccess.New(docaccess.DefaultConfig(),
		docaccess.WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
	if err != nil {
		t.Fatal(err)
	}
	h := newRouter(e, testServerConfig())

	req := uploadRequest(t, "file", "broken.pdf", string(docaccess.MediaPDF), []byte("not a pdf"))
	req.Header.Set(requestIDHeader, "req-7f3a")
	if code, _ := serve(t, h, req); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}

	if !strings.Contains(buf.String(), `"request_id":"req-7f3a"`) {
		t.Errorf("analysis log lacks request id:\n%s", buf.String())
	}
}
