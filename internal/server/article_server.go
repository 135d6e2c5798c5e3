// Package server is the HTTP presentation adapter: it decodes requests,
// hands them to the content core with the caller identity the guard
// resolved, and maps results and typed failures onto wire responses.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"content-api/internal/auth"
	"content-api/internal/model"
)

// ArticleService is the surface the adapter needs from the core.
type ArticleService interface {
	List(ctx context.Context, filter model.ListFilter) ([]*model.Article, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Article, error)
	Create(ctx context.Context, caller uuid.UUID, fields model.NewArticle) (*model.Article, error)
	Update(ctx context.Context, id, caller uuid.UUID, patch model.ArticlePatch) (*model.Article, error)
	Delete(ctx context.Context, id, caller uuid.UUID) error
	ToggleLike(ctx context.Context, id, caller uuid.UUID) (*model.LikeResult, error)
	AddComment(ctx context.Context, id, caller uuid.UUID, text string) (*model.Comment, error)
}

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

type Server struct {
	svc    ArticleService
	guard  *auth.Guard
	logger *zap.SugaredLogger
	health map[string]HealthCheck
}

func New(svc ArticleService, guard *auth.Guard, logger *zap.SugaredLogger, health map[string]HealthCheck) *Server {
	return &Server{
		svc:    svc,
		guard:  guard,
		logger: logger,
		health: health,
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/healthz", s.Healthz)

	r.Route("/articles", func(r chi.Router) {
		r.With(s.guard.OptionalAuth).Get("/", s.ListArticles)
		r.With(s.guard.RequireAuth).Post("/", s.CreateArticle)

		r.Route("/{articleID}", func(r chi.Router) {
			r.With(s.guard.OptionalAuth).Get("/", s.GetArticle)

			r.Group(func(r chi.Router) {
				r.Use(s.guard.RequireAuth)
				r.Put("/", s.UpdateArticle)
				r.Delete("/", s.DeleteArticle)
				r.Post("/like", s.ToggleLike)
				r.Post("/comment", s.AddComment)
			})
		})
	})

	return r
}

// articleID parses the path parameter. An unparseable id cannot reference
// any article, so it reads as not found.
func articleID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "articleID"))
	return id, err == nil
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrServiceError(err).(*ErrResponse)
	if resp.HTTPStatusCode == http.StatusInternalServerError {
		s.logger.Errorw("request failed", "path", r.URL.Path, "error", err)
	}
	if err := render.Render(w, r, resp); err != nil {
		s.logger.Errorw("render failed", "error", err)
	}
}

// ListArticles handles GET /articles?tag=&author=&published=.
// published defaults to true; anything but the literal "true" reads false.
func (s *Server) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	published := "true"
	if v := q.Get("published"); v != "" {
		published = v
	}
	filter := model.ListFilter{
		Tag:       q.Get("tag"),
		Published: published == "true",
	}
	if v := q.Get("author"); v != "" {
		authorID, err := uuid.Parse(v)
		if err != nil {
			_ = render.Render(w, r, ErrInvalidRequest(err))
			return
		}
		filter.Author = &authorID
	}

	articles, err := s.svc.List(r.Context(), filter)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if articles == nil {
		articles = []*model.Article{}
	}
	render.Respond(w, r, articles)
}

func (s *Server) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		_ = render.Render(w, r, ErrNotFoundResponse)
		return
	}

	article, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.Respond(w, r, article)
}

// CreateArticleRequest is the body for POST /articles.
type CreateArticleRequest struct {
	Title     string   `json:"title"`
	Subtitle  string   `json:"subtitle"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Published bool     `json:"published"`
}

func (req *CreateArticleRequest) Bind(r *http.Request) error {
	return nil
}

func (s *Server) CreateArticle(w http.ResponseWriter, r *http.Request) {
	req := &CreateArticleRequest{}
	if err := render.Bind(r, req); err != nil {
		_ = render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	article, err := s.svc.Create(r.Context(), auth.CallerID(r.Context()), model.NewArticle{
		Title:     req.Title,
		Subtitle:  req.Subtitle,
		Content:   req.Content,
		Tags:      req.Tags,
		Published: req.Published,
	})
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.Respond(w, r, article)
}

// UpdateArticleRequest is the body for PUT /articles/{id}. Pointer fields
// keep omitted and explicitly-empty values distinguishable.
type UpdateArticleRequest struct {
	Title     *string  `json:"title"`
	Subtitle  *string  `json:"subtitle"`
	Content   *string  `json:"content"`
	Tags      []string `json:"tags"`
	Published *bool    `json:"published"`
}

func (req *UpdateArticleRequest) Bind(r *http.Request) error {
	return nil
}

func (s *Server) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		_ = render.Render(w, r, ErrNotFoundResponse)
		return
	}

	req := &UpdateArticleRequest{}
	if err := render.Bind(r, req); err != nil {
		_ = render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	article, err := s.svc.Update(r.Context(), id, auth.CallerID(r.Context()), model.ArticlePatch{
		Title:     req.Title,
		Subtitle:  req.Subtitle,
		Content:   req.Content,
		Tags:      req.Tags,
		Published: req.Published,
	})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.Respond(w, r, article)
}

func (s *Server) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		_ = render.Render(w, r, ErrNotFoundResponse)
		return
	}

	if err := s.svc.Delete(r.Context(), id, auth.CallerID(r.Context())); err != nil {
		s.renderError(w, r, err)
		return
	}
	render.Respond(w, r, render.M{"message": "Article deleted successfully"})
}

func (s *Server) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		_ = render.Render(w, r, ErrNotFoundResponse)
		return
	}

	result, err := s.svc.ToggleLike(r.Context(), id, auth.CallerID(r.Context()))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.Respond(w, r, result)
}

// CommentRequest is the body for POST /articles/{id}/comment.
type CommentRequest struct {
	Text string `json:"text"`
}

func (req *CommentRequest) Bind(r *http.Request) error {
	return nil
}

func (s *Server) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		_ = render.Render(w, r, ErrNotFoundResponse)
		return
	}

	req := &CommentRequest{}
	if err := render.Bind(r, req); err != nil {
		_ = render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	comment, err := s.svc.AddComment(r.Context(), id, auth.CallerID(r.Context()), req.Text)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.Respond(w, r, comment)
}

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	for name, check := range s.health {
		if err := check(r.Context()); err != nil {
			s.logger.Errorw("health check failed", "dependency", name, "error", err)
			render.Status(r, http.StatusServiceUnavailable)
			render.Respond(w, r, render.M{"status": "unavailable", "dependency": name})
			return
		}
	}
	render.Respond(w, r, render.M{"status": "ok"})
}
