package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdfoutline"
	"github.com/tsawler/pdfoutline/internal/pdftest"
	"github.com/tsawler/pdfoutline/model"
)

func newTestServer(t *testing.T) (*Server, string, string) {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "input")
	out := filepath.Join(dir, "output")

	srv, err := New(Config{
		InputDir:  in,
		OutputDir: out,
		Settings:  pdfoutline.DefaultSettings(),
	})
	require.NoError(t, err)
	return srv, in, out
}

func uploadRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(srv http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestNew_CreatesDirectories(t *testing.T) {
	_, in, out := newTestServer(t)

	require.DirExists(t, in)
	require.DirExists(t, out)
}

func TestNew_RequiresDirectories(t *testing.T) {
	_, err := New(Config{InputDir: t.TempDir()})
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "healthy", resp.Status)
	require.True(t, resp.InputDirExists)
	require.True(t, resp.OutputDirExists)
}

func TestUpload_ProcessesPDF(t *testing.T) {
	srv, in, out := newTestServer(t)

	rec := serve(srv, uploadRequest(t, "file", "annual report.pdf", pdftest.Sample().Bytes()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	require.Equal(t, "annual_report", resp.FileStem)
	require.Equal(t, "Annual Report", resp.Title)
	require.Equal(t, 3, resp.Headings)

	require.FileExists(t, filepath.Join(in, "annual_report.pdf"))
	require.FileExists(t, filepath.Join(out, "annual_report.json"))
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		filename string
		data     []byte
		want     string
	}{
		{"wrong field", "document", "a.pdf", pdftest.Sample().Bytes(), "no file part"},
		{"wrong extension", "file", "notes.txt", []byte("hello"), "invalid file type"},
		{"not a pdf", "file", "fake.pdf", []byte("just some text"), "invalid file type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, in, _ := newTestServer(t)

			rec := serve(srv, uploadRequest(t, tt.field, tt.filename, tt.data))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, tt.want, decodeError(t, rec))

			entries, err := os.ReadDir(in)
			require.NoError(t, err)
			require.Empty(t, entries)
		})
	}
}

func TestUpload_CorruptPDF(t *testing.T) {
	srv, in, out := newTestServer(t)

	rec := serve(srv, uploadRequest(t, "file", "broken.pdf", pdftest.Corrupt()))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, decodeError(t, rec), "failed to process PDF")

	require.NoFileExists(t, filepath.Join(in, "broken.pdf"))
	require.NoFileExists(t, filepath.Join(out, "broken.json"))
}

func TestUpload_TooLarge(t *testing.T) {
	dir := t.TempDir()
	srv, err := New(Config{
		InputDir:       filepath.Join(dir, "in"),
		OutputDir:      filepath.Join(dir, "out"),
		MaxUploadBytes: 64,
	})
	require.NoError(t, err)

	rec := serve(srv, uploadRequest(t, "file", "big.pdf", pdftest.Sample().Bytes()))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestFiles_ListsSortedStems(t *testing.T) {
	srv, _, out := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/files", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	for _, name := range []string{"b.json", "a.json", ".tmp.json", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(out, name), []byte("{}"), 0o644))
	}

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/files", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `["a","b"]`, rec.Body.String())
}

func TestOutline_RoundTrip(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := serve(srv, uploadRequest(t, "file", "sample.pdf", pdftest.Sample().Bytes()))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/outline/sample", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	outline, err := model.DecodeOutline(rec.Body)
	require.NoError(t, err)
	require.Equal(t, "Annual Report", outline.Title)
	require.Len(t, outline.Headings, 3)
	require.Equal(t, "Overview", outline.Headings[0].Text)
	require.Equal(t, 1, outline.Headings[0].Page)
}

func TestOutline_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/outline/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, decodeError(t, rec), "missing")
}

func TestOutline_InvalidStem(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/outline/..%2Fsecret", nil))
	require.NotEqual(t, http.StatusOK, rec.Code)
}

func TestPDF_ServesUpload(t *testing.T) {
	srv, _, _ := newTestServer(t)
	data := pdftest.Sample().Bytes()

	rec := serve(srv, uploadRequest(t, "file", "sample.pdf", data))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/pdf/sample", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Equal(t, data, body)
}

func TestPDF_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/pdf/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/files", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := serve(srv, req)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"annual report.pdf", "annual_report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\doc.pdf`, "doc.pdf"},
		{".hidden.pdf", "hidden.pdf"},
		{"résumé.pdf", "r_sum_.pdf"},
		{"", ""},
		{"..", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, SafeFilename(tt.in))
		})
	}
}
