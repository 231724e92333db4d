// Package api exposes the statement pipeline over HTTP.
// This is a capability module that can be enabled via the CLI or used programmatically.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aqlanhadi/mt940kit/extractor"
	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogger replaces the package logger. A nil logger is ignored.
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Processor is the part of the pipeline the API drives.
type Processor interface {
	Process(ctx context.Context, up extractor.Upload) extractor.Result
	Statement(ctx context.Context, id string) (common.Statement, error)
	MT940(ctx context.Context, id string) (string, []byte, error)
	UpdateAccount(ctx context.Context, id, accountNo string) (common.Statement, error)
	DeleteStatement(ctx context.Context, id string) error
}

// Config holds the API server configuration
type Config struct {
	Port string
	// UploadFolder receives multipart uploads. JSON requests name files
	// relative to it.
	UploadFolder      string
	AllowedExtensions []string
	CompanyID         int64
	UserID            int64
	MaxUploadBytes    int64
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:              ":8080",
		UploadFolder:      "uploads",
		AllowedExtensions: []string{"xls", "xlsx", "csv", "txt", "pdf"},
		MaxUploadBytes:    32 << 20,
	}
}

// Server represents the HTTP API server
type Server struct {
	config    Config
	processor Processor
	mux       *http.ServeMux
}

// New creates a new API server with the given configuration
func New(cfg Config, p Processor) *Server {
	s := &Server{
		config:    cfg,
		processor: p,
		mux:       http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up the API endpoints
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /process", s.handleProcess)
	s.mux.HandleFunc("GET /statements/{id}", s.handleGetStatement)
	s.mux.HandleFunc("GET /statements/{id}/mt940", s.handleGetMT940)
	s.mux.HandleFunc("PUT /statements/{id}/account", s.handleUpdateAccount)
	s.mux.HandleFunc("DELETE /statements/{id}", s.handleDeleteStatement)
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	log.WithField("port", s.config.Port).Info("Starting server")
	return http.ListenAndServe(s.config.Port, s.mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps store errors onto HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, extractor.ErrAccountRequired):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ProcessRequest is the JSON form of POST /process.
type ProcessRequest struct {
	Path             string `json:"path"`
	OriginalFilename string `json:"original_filename"`
	CompanyID        int64  `json:"company_id"`
	UserID           int64  `json:"user_id"`
}

// handleProcess accepts either a multipart "file" upload or a JSON body
// naming a file already inside the upload folder.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	log.WithField("remote", r.RemoteAddr).Debug("Received process request")

	var (
		up  extractor.Upload
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		up, err = s.receiveUpload(r)
	} else {
		up, err = s.namedUpload(r)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if up.CompanyID == 0 {
		up.CompanyID = s.config.CompanyID
	}
	if up.UserID == 0 {
		up.UserID = s.config.UserID
	}

	res := s.processor.Process(r.Context(), up)
	status := http.StatusOK
	switch res.Status {
	case common.StatusInvalid, common.StatusUnknown:
		status = http.StatusUnprocessableEntity
	case common.StatusFailed:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}

func (s *Server) namedUpload(r *http.Request) (extractor.Upload, error) {
	var req ProcessRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		return extractor.Upload{}, fmt.Errorf("invalid request body: %w", err)
	}
	if strings.TrimSpace(req.Path) == "" {
		return extractor.Upload{}, errors.New("path is required")
	}
	if err := s.checkExtension(req.Path); err != nil {
		return extractor.Upload{}, err
	}
	// Clean against a rooted path so ".." cannot leave the upload folder.
	path := filepath.Join(s.config.UploadFolder, filepath.Clean("/"+filepath.ToSlash(req.Path)))
	return extractor.Upload{
		Path:             path,
		OriginalFilename: coalesce(req.OriginalFilename, filepath.Base(path)),
		CompanyID:        req.CompanyID,
		UserID:           req.UserID,
	}, nil
}

func (s *Server) receiveUpload(r *http.Request) (extractor.Upload, error) {
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		return extractor.Upload{}, fmt.Errorf("could not parse multipart form: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return extractor.Upload{}, fmt.Errorf("could not get uploaded file: %w", err)
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if err := s.checkExtension(name); err != nil {
		return extractor.Upload{}, err
	}
	companyID, err := formInt(r, "company_id")
	if err != nil {
		return extractor.Upload{}, err
	}
	userID, err := formInt(r, "user_id")
	if err != nil {
		return extractor.Upload{}, err
	}
	if err := os.MkdirAll(s.config.UploadFolder, 0o755); err != nil {
		return extractor.Upload{}, fmt.Errorf("failed to create upload folder: %w", err)
	}
	path := filepath.Join(s.config.UploadFolder, uuid.NewString()+"_"+name)
	out, err := os.Create(path)
	if err != nil {
		return extractor.Upload{}, fmt.Errorf("failed to store upload: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		return extractor.Upload{}, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := out.Close(); err != nil {
		return extractor.Upload{}, fmt.Errorf("failed to store upload: %w", err)
	}

	return extractor.Upload{
		Path:             path,
		OriginalFilename: name,
		CompanyID:        companyID,
		UserID:           userID,
	}, nil
}

// formInt reads an optional integer form value. Blank means 0.
func formInt(r *http.Request, key string) (int64, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

func (s *Server) checkExtension(name string) error {
	if len(s.config.AllowedExtensions) == 0 {
		return nil
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, a := range s.config.AllowedExtensions {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, filepath.Ext(name))
}

func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	stmt, err := s.processor.Statement(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, extractor.CreateFinalOutput(stmt, q.Get("details_only") == "true", q.Get("header_only") == "true"))
}

func (s *Server) handleGetMT940(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.processor.MT940(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AccountNo string `json:"accountno"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	stmt, err := s.processor.UpdateAccount(r.Context(), r.PathValue("id"), body.AccountNo)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         stmt.Status,
		"message":        stmt.Message,
		"mt940_filename": stmt.MT940Filename,
	})
}

func (s *Server) handleDeleteStatement(w http.ResponseWriter, r *http.Request) {
	if err := s.processor.DeleteStatement(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// coalesce returns the first non-empty string
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
