package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/raysh454/clauseguard/internal/app"
	"github.com/raysh454/clauseguard/internal/assessment"
	"github.com/raysh454/clauseguard/internal/language"
	"github.com/raysh454/clauseguard/internal/logging"
	"github.com/raysh454/clauseguard/internal/model"
	"github.com/raysh454/clauseguard/internal/report"
	_ "github.com/raysh454/clauseguard/internal/server/docs" // swagger docs
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var uploadPage = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// Server is the HTTP + WebSocket API surface for clauseguard.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer builds the router around orch. The caller owns orch and closes
// it after the HTTP server has shut down.
func NewServer(cfg Config, orch *app.Orchestrator) (*Server, error) {
	if orch == nil {
		return nil, errors.New("orchestrator is nil")
	}
	def := DefaultConfig()
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = def.AllowedOrigins
	}
	if cfg.Version == "" {
		cfg.Version = def.Version
	}

	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		router:       chi.NewRouter(),
		logger:       logging.Component(cfg.Logger, "server"),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.originAllowed(origin)
		},
	}

	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *app.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/analyses", s.optionsHandler("POST"))
	r.Options("/analyses/compare", s.optionsHandler("POST"))
	r.Options("/jobs", s.optionsHandler("GET"))
	r.Options("/jobs/analyses", s.optionsHandler("POST"))
	r.Options("/jobs/{jobID}", s.optionsHandler("GET, DELETE"))
	r.Options("/jobs/{jobID}/report", s.optionsHandler("GET"))

	r.Get("/health", s.handleHealth)
	r.Get("/categories", s.handleCategories)

	// Synchronous analysis
	r.Post("/analyses", s.handleAnalyze)
	r.Post("/analyses/compare", s.handleCompare)

	// Jobs over REST
	r.Post("/jobs/analyses", s.handleStartAnalysisJob)
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleCancelJob)
	r.Get("/jobs/{jobID}/report", s.handleJobReport)

	// WebSocket for job progress
	r.Get("/ws/jobs/{jobID}", s.handleJobWS)

	// Browser UI
	r.Get("/", s.handleUploadPage)
	r.Post("/ui/analyze", s.handleUIAnalyze)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) originAllowed(origin string) bool {
	return slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slices.Contains(s.cfg.AllowedOrigins, "*") {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin := r.Header.Get("Origin"); origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}
	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}
	// Bodies are contract text; only their size is logged.
	if r.ContentLength > 0 {
		fields = append(fields, logging.Field{Key: "content_length", Value: r.ContentLength})
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, model.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge
	case model.IsInputError(err):
		return http.StatusBadRequest
	case model.IsScoringError(err):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op, logging.Field{Key: "error", Value: err.Error()})
	} else {
		s.logger.Warn(op, logging.Field{Key: "error", Value: err.Error()})
	}
	writeError(w, status, err.Error())
}

// --- Request decoding ---

func badRequest(op, format string, args ...any) error {
	return model.NewInputError(op, fmt.Errorf("%w: "+format, append([]any{model.ErrInvalidInput}, args...)...))
}

func (s *Server) tooLarge() error {
	return model.NewInputError("upload", fmt.Errorf("%w: over %d bytes", model.ErrDocumentTooLarge, s.cfg.MaxUploadBytes))
}

// parseMultipart reads a multipart body under the upload cap.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	if r.ContentLength > s.cfg.MaxUploadBytes {
		return s.tooLarge()
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return s.tooLarge()
		}
		return badRequest("upload", "malformed multipart body: %v", err)
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// formFile reads one uploaded file.
func formFile(r *http.Request, field string) (string, []byte, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, badRequest("upload", "missing %q file", field)
		}
		return "", nil, badRequest("upload", "reading %q: %v", field, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, badRequest("upload", "reading %q: %v", field, err)
	}
	return hdr.Filename, data, nil
}

// formOptions reads the language and explain fields shared by every form.
func formOptions(form *multipart.Form) (string, assessment.ExplainMode, error) {
	get := func(k string) string {
		if v := form.Value[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	lang := strings.ToLower(strings.TrimSpace(get("language")))
	if lang != "" && !language.ValidExplanationLanguage(lang) {
		return "", "", badRequest("language", "unsupported explanation language %q", lang)
	}
	mode, err := assessment.ParseExplainMode(get("explain"))
	if err != nil {
		return "", "", err
	}
	return lang, mode, nil
}

// readInput decodes a single-document request, multipart or JSON.
func (s *Server) readInput(w http.ResponseWriter, r *http.Request) (assessment.Input, error) {
	if isMultipart(r) {
		if err := s.parseMultipart(w, r); err != nil {
			return assessment.Input{}, err
		}
		lang, mode, err := formOptions(r.MultipartForm)
		if err != nil {
			return assessment.Input{}, err
		}
		name, data, err := formFile(r, "file")
		if err != nil {
			return assessment.Input{}, err
		}
		return assessment.Input{Name: name, Data: data, Language: lang, Explain: mode}, nil
	}

	if r.ContentLength > s.cfg.MaxUploadBytes {
		return assessment.Input{}, s.tooLarge()
	}
	var body AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return assessment.Input{}, s.tooLarge()
		}
		return assessment.Input{}, badRequest("request", "invalid JSON")
	}
	mode, err := assessment.ParseExplainMode(body.Explain)
	if err != nil {
		return assessment.Input{}, err
	}
	return assessment.Input{Name: body.Name, Text: body.Text, Language: body.Language, Explain: mode}, nil
}

// writeReport renders res in format f. Rendering is buffered so a failure
// can still be reported as JSON.
func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, res *model.AssessmentResult, f report.Format, attach bool) {
	var buf bytes.Buffer
	if err := s.orchestrator.RenderReport(r.Context(), &buf, res, f); err != nil {
		s.fail(w, "rendering report", err)
		return
	}
	w.Header().Set("Content-Type", report.ContentType(f))
	if attach {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(f, time.Now())))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// --- HTTP handlers ---

// handleHealth godoc
// @Summary Liveness check
// @Tags meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		Version:      s.cfg.Version,
		Explanations: s.orchestrator.ExplanationsAvailable(),
	})
}

// handleCategories godoc
// @Summary List the risk catalog
// @Tags meta
// @Produce json
// @Success 200 {array} model.RiskCategory
// @Router /categories [get]
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orchestrator.Categories())
}

// Analyses

// handleAnalyze godoc
// @Summary Analyze a contract synchronously
// @Description Accepts a multipart upload ("file", "language", "explain") or a JSON body. With ?format= the rendered report is returned instead of JSON.
// @Tags analyses
// @Accept json,mpfd
// @Produce json
// @Param request body AnalyzeRequest false "Text to analyze"
// @Param format query string false "Report format" Enums(text,markdown,json,html,terminal,pdf)
// @Success 200 {object} AnalysisResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /analyses [post]
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var (
		format report.Format
		err    error
	)
	if q := r.URL.Query().Get("format"); q != "" {
		if format, err = report.ParseFormat(q); err != nil {
			s.fail(w, "parsing format", err)
			return
		}
	}

	in, err := s.readInput(w, r)
	if err != nil {
		s.fail(w, "decoding analysis request", err)
		return
	}

	res, err := s.orchestrator.Analyze(r.Context(), in)
	if err != nil {
		s.fail(w, "analyzing document", err)
		return
	}
	s.logger.Info("analyzed document",
		logging.Field{Key: "document", Value: res.DocumentName},
		logging.Field{Key: "score", Value: res.Score})

	if format != "" {
		s.writeReport(w, r, res, format, false)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleCompare godoc
// @Summary Compare two versions of a contract
// @Tags analyses
// @Accept mpfd
// @Produce json
// @Param old formData file true "Previous version"
// @Param new formData file true "Revised version"
// @Success 200 {object} ComparisonResponse
// @Failure 400 {object} ErrorResponse
// @Router /analyses/compare [post]
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		s.fail(w, "decoding compare request", badRequest("request", "multipart form with old and new files required"))
		return
	}
	if err := s.parseMultipart(w, r); err != nil {
		s.fail(w, "decoding compare request", err)
		return
	}
	lang, mode, err := formOptions(r.MultipartForm)
	if err != nil {
		s.fail(w, "decoding compare request", err)
		return
	}
	oldName, oldData, err := formFile(r, "old")
	if err != nil {
		s.fail(w, "decoding compare request", err)
		return
	}
	newName, newData, err := formFile(r, "new")
	if err != nil {
		s.fail(w, "decoding compare request", err)
		return
	}

	cmp, err := s.orchestrator.Compare(r.Context(),
		assessment.Input{Name: oldName, Data: oldData, Language: lang, Explain: mode},
		assessment.Input{Name: newName, Data: newData, Language: lang, Explain: mode})
	if err != nil {
		s.fail(w, "comparing documents", err)
		return
	}
	s.logger.Info("compared documents", logging.Field{Key: "score_delta", Value: cmp.ScoreDelta})
	writeJSON(w, http.StatusOK, cmp)
}

// Jobs (REST)

// handleStartAnalysisJob godoc
// @Summary Start a background analysis
// @Description Same inputs as POST /analyses. Follow progress on /ws/jobs/{id} or poll /jobs/{id}.
// @Tags jobs
// @Accept json,mpfd
// @Produce json
// @Param request body AnalyzeRequest false "Text to analyze"
// @Success 202 {object} app.Job
// @Failure 400 {object} ErrorResponse
// @Router /jobs/analyses [post]
func (s *Server) handleStartAnalysisJob(w http.ResponseWriter, r *http.Request) {
	in, err := s.readInput(w, r)
	if err != nil {
		s.fail(w, "decoding analysis request", err)
		return
	}

	// The job outlives this request.
	job, err := s.orchestrator.StartAnalysisJob(context.Background(), in)
	if err != nil {
		if errors.Is(err, app.ErrClosed) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.fail(w, "starting analysis job", err)
		return
	}
	s.logger.Info("started analysis job", logging.Field{Key: "job_id", Value: job.ID})
	writeJSON(w, http.StatusAccepted, s.orchestrator.GetJob(job.ID))
}

// handleGetJob godoc
// @Summary Get a job and, once done, its result
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} app.Job
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID} [get]
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		s.logger.Warn("getting job: not found", logging.Field{Key: "job_id", Value: jobID})
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelJob godoc
// @Summary Cancel a job
// @Tags jobs
// @Param jobID path string true "Job ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID} [delete]
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if !s.orchestrator.CancelJob(jobID) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.logger.Info("canceled job", logging.Field{Key: "job_id", Value: jobID})
	w.WriteHeader(http.StatusNoContent)
}

// handleListJobs godoc
// @Summary List retained jobs, newest first
// @Tags jobs
// @Produce json
// @Success 200 {array} app.Job
// @Router /jobs [get]
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	s.logger.Debug("listed jobs", logging.Field{Key: "count", Value: len(jobs)})
	writeJSON(w, http.StatusOK, jobs)
}

// handleJobReport godoc
// @Summary Download a finished job's report
// @Tags jobs
// @Produce plain,json,html,octet-stream
// @Param jobID path string true "Job ID"
// @Param format query string false "Report format" Enums(text,markdown,json,html,terminal,pdf)
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /jobs/{jobID}/report [get]
func (s *Server) handleJobReport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.fail(w, "parsing format", err)
		return
	}
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Status != app.JobDone || job.Result == nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("job is %s", job.Status))
		return
	}
	s.writeReport(w, r, job.Result, format, true)
}

// WebSockets

func (s *Server) handleJobWS(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	_ = conn.WriteJSON(job)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			s.orchestrator.CancelJob(job.ID)
			return
		}
	}

	// Final snapshot carries the result.
	if final := s.orchestrator.GetJob(jobID); final != nil {
		_ = conn.WriteJSON(final)
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished"))
}

// Browser UI

type uploadView struct {
	Categories   int
	Explanations bool
	Formats      []report.Format
}

func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := uploadPage.Execute(&buf, uploadView{
		Categories:   len(s.orchestrator.Categories()),
		Explanations: s.orchestrator.ExplanationsAvailable(),
		Formats:      report.Formats(),
	})
	if err != nil {
		s.fail(w, "rendering upload page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleUIAnalyze(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		s.fail(w, "decoding upload", badRequest("upload", "multipart form required"))
		return
	}
	in, err := s.readInput(w, r)
	if err != nil {
		s.fail(w, "decoding upload", err)
		return
	}
	format := report.FormatHTML
	if v := r.FormValue("format"); v != "" {
		if format, err = report.ParseFormat(v); err != nil {
			s.fail(w, "parsing format", err)
			return
		}
	}

	res, err := s.orchestrator.Analyze(r.Context(), in)
	if err != nil {
		s.fail(w, "analyzing upload", err)
		return
	}
	s.writeReport(w, r, res, format, format != report.FormatHTML)
}
