package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/AaronDeluna/new-york-times/internal/model"
	"github.com/AaronDeluna/new-york-times/internal/service"

	"github.com/cespare/xxhash/v2"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

// Articles is the article API the HTTP layer serves.
type Articles interface {
	Create(ctx context.Context, article model.Article) (model.Article, error)
	Read(ctx context.Context, number int) (model.Article, error)
	ReadText(ctx context.Context, number int) (string, error)
	ReadAuthor(ctx context.Context, number int) (string, error)
	Update(ctx context.Context, article model.Article) error
	Delete(ctx context.Context, number int) (bool, error)
	ListPage(ctx context.Context, pageIndex int) (model.Page, error)
}

// Importer creates an article from a web page.
type Importer interface {
	Import(ctx context.Context, url string) (model.Article, error)
}

type Option func(*Server)

// WithImporter enables POST /news/import.
func WithImporter(im Importer) Option {
	return func(s *Server) { s.importer = im }
}

// WithGatherer enables GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

type Server struct {
	articles Articles
	importer Importer
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	router   *mux.Router
	server   *http.Server
}

func NewServer(articles Articles, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		articles: articles,
		logger:   logger,
		router:   mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.withRequestID, s.withLogging)

	s.router.HandleFunc("/news", s.handleList).Methods(http.MethodGet)
	s.router.HandleFunc("/news", s.handleCreate).Methods(http.MethodPost)
	s.router.HandleFunc("/news", s.handleUpdate).Methods(http.MethodPut)
	s.router.HandleFunc("/news/{id:[0-9]+}", s.handleRead).Methods(http.MethodGet)
	s.router.HandleFunc("/news/{id:[0-9]+}/text", s.handleReadText).Methods(http.MethodGet)
	s.router.HandleFunc("/news/{id:[0-9]+}/author", s.handleReadAuthor).Methods(http.MethodGet)
	s.router.HandleFunc("/news/{id:[0-9]+}", s.handlePatch).Methods(http.MethodPatch)
	s.router.HandleFunc("/news/{id:[0-9]+}", s.handleDelete).Methods(http.MethodDelete)

	if s.importer != nil {
		s.router.HandleFunc("/news/import", s.handleImport).Methods(http.MethodPost)
	}
	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start launches the HTTP server
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("Web server listening", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		s.writeError(w, r, fmt.Errorf("%w: page is required", service.ErrInvalidArgument))
		return
	}
	pageIndex, err := strconv.Atoi(raw)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: page must be an integer", service.ErrInvalidArgument))
		return
	}

	page, err := s.articles.ListPage(r.Context(), pageIndex)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, page)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var article model.Article
	if err := decodeBody(w, r, &article); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.articles.Create(r.Context(), article)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/news/%d", created.Number))
	s.writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var article model.Article
	if err := decodeBody(w, r, &article); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.update(w, r, article)
}

// handlePatch takes the number from the path; a number in the body is ignored.
func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	number, err := pathNumber(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var article model.Article
	if err := decodeBody(w, r, &article); err != nil {
		s.writeError(w, r, err)
		return
	}
	article.Number = number
	s.update(w, r, article)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, article model.Article) {
	if err := s.articles.Update(r.Context(), article); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	number, err := pathNumber(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	article, err := s.articles.Read(r.Context(), number)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, article)
}

func (s *Server) handleReadText(w http.ResponseWriter, r *http.Request) {
	s.readField(w, r, s.articles.ReadText)
}

func (s *Server) handleReadAuthor(w http.ResponseWriter, r *http.Request) {
	s.readField(w, r, s.articles.ReadAuthor)
}

func (s *Server) readField(w http.ResponseWriter, r *http.Request, read func(context.Context, int) (string, error)) {
	number, err := pathNumber(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	value, err := read(r.Context(), number)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeBody(w, r, http.StatusOK, "text/plain; charset=utf-8", []byte(value))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	number, err := pathNumber(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	deleted, err := s.articles.Delete(r.Context(), number)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, deleted)
}

type importRequest struct {
	URL string `json:"url"`
}

func (req importRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.URL, validation.Required, is.URL),
	)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", service.ErrInvalidArgument, err))
		return
	}

	created, err := s.importer.Import(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			s.writeError(w, r, err)
			return
		}
		s.logger.Warn("Import failed", zap.String("url", req.URL), zap.Error(err))
		s.writeStatus(w, r, http.StatusBadGateway, "import failed")
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/news/%d", created.Number))
	s.writeJSON(w, r, http.StatusCreated, created)
}

func pathNumber(r *http.Request) (int, error) {
	number, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid article number", service.ErrInvalidArgument)
	}
	return number, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", service.ErrInvalidArgument, err)
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		s.writeStatus(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidArgument):
		s.writeStatus(w, r, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("Request failed",
			zap.String("request_id", requestID(r)),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		s.writeStatus(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, r, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writeBody(w, r, status, "application/json", body)
}

// writeBody tags successful GET responses with an ETag and answers a
// matching If-None-Match with 304.
func (s *Server) writeBody(w http.ResponseWriter, r *http.Request, status int, contentType string, body []byte) {
	if r.Method == http.MethodGet && status == http.StatusOK {
		etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("Failed to write response", zap.Error(err))
	}
}
