package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvprobe/internal/core"
	"github.com/JonMunkholm/csvprobe/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// multipartMemory is how much of a multipart body is held in memory before
// parts spill to temp files.
const multipartMemory = 32 << 20

// ReportIDHeader carries the ID assigned to a validation report.
const ReportIDHeader = "X-Report-ID"

var errStoreDisabled = errors.New("report store not configured")

// handleValidate checks one uploaded file.
//
// Form fields: file (required), expected_types (optional JSON object of
// column name to type name).
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if err := s.limiter.Acquire(r.Context()); err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	defer s.limiter.Release()

	if err := s.parseForm(w, r); err != nil {
		s.respondError(w, r, err, formStatus(err))
		return
	}

	expected, err := parseExpectedTypes(r.FormValue("expected_types"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	fh, err := formFile(r, "file")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	path, cleanup, err := spool(fh)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	defer cleanup()

	report, err := s.validator.ValidateFile(r.Context(), path, expected)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	report.FilePath = fh.Filename
	report.Error = strings.ReplaceAll(report.Error, path, fh.Filename)

	id := uuid.New()
	if s.reports != nil {
		if err := s.reports.Save(r.Context(), id, fh.Filename, report); err != nil {
			core.LoggerFromContext(r.Context(), s.logger).Warn("report not stored",
				zap.String("report_id", id.String()),
				zap.Error(err),
			)
		}
	}

	status := http.StatusOK
	if report.Error != "" {
		status = http.StatusUnprocessableEntity
	}
	w.Header().Set(ReportIDHeader, id.String())
	writeJSON(w, status, report)
}

// handleMetadata samples every uploaded file under the "files" field.
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	if err := s.limiter.Acquire(r.Context()); err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	defer s.limiter.Release()

	if err := s.parseForm(w, r); err != nil {
		s.respondError(w, r, err, formStatus(err))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.respondError(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	}

	paths := make([]string, 0, len(headers))
	for _, fh := range headers {
		path, cleanup, err := spool(fh)
		if err != nil {
			s.respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		defer cleanup()
		paths = append(paths, path)
	}

	batch := s.validator.AnalyzeMetadata(r.Context(), paths)
	for i := range batch.Files {
		name := headers[i].Filename
		batch.Files[i].Filename = name
		batch.Files[i].Error = strings.ReplaceAll(batch.Files[i].Error, paths[i], name)
	}

	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.respondError(w, r, errStoreDisabled, http.StatusServiceUnavailable)
		return
	}

	report, err := s.reports.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.respondError(w, r, errStoreDisabled, http.StatusServiceUnavailable)
		return
	}

	summaries, err := s.reports.ListRecent(r.Context(), parseIntParam(r, "limit", 50))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// StatusResponse describes server capacity.
type StatusResponse struct {
	Limiter      LimiterStatus `json:"limiter"`
	StoreEnabled bool          `json:"store_enabled"`
	MaxFileSize  int64         `json:"max_file_size"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Limiter:      s.limiter.Status(),
		StoreEnabled: s.reports != nil,
		MaxFileSize:  s.cfg.Validation.MaxFileSize,
	})
}

// TypeInfo describes one semantic type accepted in expected_types.
type TypeInfo struct {
	Type    core.SemanticType `json:"type"`
	Label   string            `json:"label"`
	Message string            `json:"message,omitempty"`
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	rules := core.Rules()
	out := make([]TypeInfo, 0, len(rules))
	for _, rule := range rules {
		out = append(out, TypeInfo{Type: rule.Type, Label: rule.Label, Message: rule.Message})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseForm bounds the request body and parses the multipart form.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Validation.MaxFileSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return fmt.Errorf("no file provided: %w", err)
	}
	return nil
}

func formStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func formFile(r *http.Request, field string) (*multipart.FileHeader, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, errors.New("no file provided")
	}
	return r.MultipartForm.File[field][0], nil
}

func parseExpectedTypes(raw string) (map[string]core.SemanticType, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var names map[string]string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("invalid expected types: %w", err)
	}
	return core.ParseExpectedTypes(names)
}

// spool copies an uploaded part to a temp file whose name keeps the
// upload's extensions, so loaders can detect compression and format.
func spool(fh *multipart.FileHeader) (string, func(), error) {
	src, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "csvprobe-*"+uploadExt(fh.Filename))
	if err != nil {
		return "", nil, fmt.Errorf("spool upload: %w", err)
	}
	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("spool upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("spool upload: %w", err)
	}
	return tmp.Name(), cleanup, nil
}

// uploadExt returns up to two trailing extensions of name ("data.csv.gz" →
// ".csv.gz"), lower-cased. Extensions with characters other than letters
// and digits end the scan.
func uploadExt(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	parts := strings.Split(strings.ToLower(base), ".")

	var exts []string
	for i := len(parts) - 1; i >= 1 && len(exts) < 2; i-- {
		p := parts[i]
		if p == "" || strings.IndexFunc(p, notAlnum) >= 0 {
			break
		}
		exts = append([]string{p}, exts...)
	}
	if len(exts) == 0 {
		return ""
	}
	return "." + strings.Join(exts, ".")
}

func notAlnum(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
}

// parseIntParam parses a positive integer query parameter with a default.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return defaultVal
	}
	return i
}
