package server

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"furnistor/storefront/internal/admin"
	"furnistor/storefront/internal/client"
	"furnistor/storefront/internal/config"
	"furnistor/storefront/internal/service"
)

const (
	flashCookie     = "furnistor_flash"
	shutdownTimeout = 10 * time.Second
)

// AdminRoute mounts an admin controller at Path.
type AdminRoute struct {
	Path       string
	Controller *admin.Controller
}

// Server is the HTTP surface: storefront pages, admin forms and health.
type Server struct {
	echo     *echo.Echo
	cfg      config.ServerConfig
	client   client.BackendClient
	theme    *service.Theme
	renderer *service.Renderer
}

func New(cfg *config.Config, backend client.BackendClient, theme *service.Theme, renderer *service.Renderer, routes ...AdminRoute) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second

	s := &Server{
		echo:     e,
		cfg:      cfg.Server,
		client:   backend,
		theme:    theme,
		renderer: renderer,
	}

	s.registerMiddlewares(cfg.Admin)
	s.registerRoutes(cfg.Theme, routes)
	return s
}

func (s *Server) registerMiddlewares(adminCfg config.AdminConfig) {
	s.echo.Use(middleware.Logger())
	s.echo.Use(middleware.Recover())
	if adminCfg.MaxUploadMB > 0 {
		s.echo.Use(middleware.BodyLimit(fmt.Sprintf("%dM", adminCfg.MaxUploadMB)))
	}
}

func (s *Server) registerRoutes(theme config.ThemeConfig, routes []AdminRoute) {
	s.echo.GET("/healthz", s.health)

	for _, r := range routes {
		s.echo.GET(r.Path, s.showForm(r))
		s.echo.POST(r.Path, s.submitForm(r))
	}

	if theme.AssetsDir != "" {
		s.echo.Static("/assets", theme.AssetsDir)
	}
	s.echo.GET("/*", s.page)
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("🚀 Listening on %s", s.cfg.Addr())
		errCh <- s.echo.Start(s.cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server...")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

func (s *Server) health(c echo.Context) error {
	if err := s.client.Health(c.Request().Context()); err != nil {
		log.Warnf("⚠️ backend health: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"backend": s.client.BaseURL(),
			"error":   err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.client.BaseURL(),
	})
}

// page serves a storefront template, patched with backend data.
func (s *Server) page(c echo.Context) error {
	req := c.Request()

	template, err := s.theme.Load(req.URL.Path)
	if errors.Is(err, service.ErrTemplateNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "page not found")
	}
	if err != nil {
		return err
	}

	pageURL, err := url.Parse(c.Scheme() + "://" + req.Host + req.RequestURI)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request url")
	}

	out, err := s.renderer.Render(req.Context(), pageURL, template)
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, out)
}

func (s *Server) showForm(r AdminRoute) echo.HandlerFunc {
	return func(c echo.Context) error {
		var flashID string
		if cookie, err := c.Cookie(flashCookie); err == nil {
			flashID = cookie.Value
			c.SetCookie(&http.Cookie{Name: flashCookie, Path: r.Path, MaxAge: -1, HttpOnly: true})
		}

		page, err := r.Controller.Show(c.Request().Context(), flashID)
		if err != nil {
			return err
		}
		return c.HTMLBlob(http.StatusOK, page)
	}
}

func (s *Server) submitForm(r AdminRoute) echo.HandlerFunc {
	return func(c echo.Context) error {
		values, files, err := formInput(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		outcome, err := r.Controller.Submit(c.Request().Context(), values, files)
		if err != nil {
			return err
		}

		if outcome.Redirect {
			c.SetCookie(&http.Cookie{
				Name:     flashCookie,
				Value:    outcome.FlashID,
				Path:     r.Path,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			return c.Redirect(http.StatusSeeOther, r.Path)
		}
		return c.HTMLBlob(outcome.Status, outcome.Page)
	}
}

// formInput reads a multipart post, or a urlencoded one without files.
func formInput(c echo.Context) (url.Values, []*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err == nil {
		return url.Values(form.Value), form.File[admin.ImagesField], nil
	}
	if !errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, fmt.Errorf("failed to read form: %w", err)
	}

	values, err := c.FormParams()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read form: %w", err)
	}
	return values, nil, nil
}
