package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tsawler/pdfoutline/batch"
	"github.com/tsawler/pdfoutline/format"
	"github.com/tsawler/pdfoutline/model"
)

// unsafeName matches every character not kept in a stored file name
var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UploadResponse is returned by POST /api/upload
type UploadResponse struct {
	ID       string `json:"id"`
	Message  string `json:"message"`
	FileStem string `json:"file_stem"`
	Title    string `json:"title"`
	Headings int    `json:"headings"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status          string `json:"status"`
	InputDirExists  bool   `json:"input_dir_exists"`
	OutputDirExists bool   `json:"output_dir_exists"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:          "healthy",
		InputDirExists:  dirExists(s.config.InputDir),
		OutputDirExists: dirExists(s.config.OutputDir),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Errorf("upload exceeds %s", humanize.IBytes(uint64(maxErr.Limit))))
		case errors.Is(err, http.ErrMissingFile):
			writeError(w, http.StatusBadRequest, errors.New("no file part"))
		default:
			writeError(w, http.StatusBadRequest, err)
		}
		return
	}
	defer file.Close()

	name := SafeFilename(header.Filename)
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.New("no selected file"))
		return
	}
	if format.Detect(name) != format.PDF {
		writeError(w, http.StatusBadRequest, errors.New("invalid file type"))
		return
	}
	name = format.Stem(name) + ".pdf"

	id := uuid.NewString()
	log := s.logger.With("upload_id", id, "request_id", middleware.GetReqID(r.Context()), "file", name)

	path := filepath.Join(s.config.InputDir, name)
	size, err := saveUpload(path, file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Errorf("upload exceeds %s", humanize.IBytes(uint64(maxErr.Limit))))
			return
		}
		log.Error("server: save upload", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("failed to store upload"))
		return
	}
	log.Info("server: upload stored", "size", humanize.Bytes(uint64(size)))

	res := s.runner.ProcessFile(path)
	if !res.OK() {
		os.Remove(path)
		var fileErr *batch.FileError
		if errors.As(res.Err, &fileErr) && fileErr.Kind == batch.KindNotPDF {
			writeError(w, http.StatusBadRequest, errors.New("invalid file type"))
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to process PDF: %w", res.Err))
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		ID:       id,
		Message:  "File processed successfully",
		FileStem: format.Stem(name),
		Title:    res.Title,
		Headings: res.Headings,
	})
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.config.OutputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, errors.New("output directory not found"))
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to list files: %w", err))
		return
	}

	stems := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		stems = append(stems, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(stems)

	writeJSON(w, http.StatusOK, stems)
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	stem, ok := validStem(chi.URLParam(r, "stem"))
	if !ok {
		writeError(w, http.StatusBadRequest, errors.New("invalid file stem"))
		return
	}

	f, err := os.Open(filepath.Join(s.config.OutputDir, stem+".json"))
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("outline for %q not found", stem))
		return
	}
	defer f.Close()

	outline, err := model.DecodeOutline(f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to read outline file: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	outline.Encode(w, s.config.Indent)
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	stem, ok := validStem(chi.URLParam(r, "stem"))
	if !ok {
		writeError(w, http.StatusBadRequest, errors.New("invalid file stem"))
		return
	}

	path := filepath.Join(s.config.InputDir, stem+".pdf")
	if !format.IsPDF(path) {
		writeError(w, http.StatusNotFound, fmt.Errorf("PDF file %q not found", stem+".pdf"))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

// SafeFilename reduces an uploaded file name to its base name with every
// character outside [A-Za-z0-9._-] replaced by an underscore. Leading dots
// are removed so uploads never become hidden files.
func SafeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeName.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if name == "_" {
		return ""
	}
	return name
}

func validStem(stem string) (string, bool) {
	if stem == "" || stem != SafeFilename(stem) {
		return "", false
	}
	return stem, true
}

func saveUpload(path string, src io.Reader) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return n, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, ErrorResponse{Error: err.Error()})
}
