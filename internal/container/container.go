package container

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"furnistor/storefront/internal/admin"
	"furnistor/storefront/internal/client"
	"furnistor/storefront/internal/config"
	"furnistor/storefront/internal/server"
	"furnistor/storefront/internal/service"
	"furnistor/storefront/internal/state"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config   *config.Config
	Client   client.BackendClient
	Theme    *service.Theme
	Renderer *service.Renderer
	Flash    state.FlashStore
	Server   *server.Server

	redis *redis.Client
}

// New creates a new container with all dependencies initialized. baseURL is
// the backend the storefront talks to.
func New(cfg *config.Config, baseURL string) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	backendClient := client.NewBackendClient(cfg.Backend, baseURL)
	container.Client = backendClient
	log.Infof("Backend API: %s", baseURL)

	flashTTL := time.Duration(cfg.Redis.FlashTTL) * time.Second
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		// Test connection
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			rdb.Close()
			backendClient.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		container.redis = rdb
		container.Flash = state.NewRedisFlashStore(rdb, flashTTL)
	} else {
		container.Flash = state.NewMemoryFlashStore(flashTTL)
	}

	container.Theme = service.NewTheme(cfg.Theme)
	container.Renderer = service.NewRenderer(backendClient, cfg.Theme)

	rule := admin.NewFileRule(cfg.Admin)
	categories := admin.NewCategoryController(backendClient, filepath.Join(cfg.Theme.Dir, cfg.Admin.CategoryTemplate), rule, container.Flash)
	subcategories := admin.NewSubcategoryController(backendClient, filepath.Join(cfg.Theme.Dir, cfg.Admin.SubcategoryTemplate), rule, container.Flash)

	container.Server = server.New(cfg, backendClient, container.Theme, container.Renderer,
		server.AdminRoute{Path: "/admin/categories", Controller: categories},
		server.AdminRoute{Path: "/admin/subcategories", Controller: subcategories},
	)

	return container, nil
}

// Run serves HTTP until ctx is done. A one-off backend probe runs alongside
// and only logs its result.
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Server.Run(ctx)
	})

	g.Go(func() error {
		if err := c.Client.Health(ctx); err != nil {
			log.Warnf("⚠️ Backend %s is not healthy: %v", c.Client.BaseURL(), err)
			return nil
		}
		log.Infof("✅ Backend %s is healthy", c.Client.BaseURL())
		return nil
	})

	return g.Wait()
}

// RenderPage renders the storefront page at rawURL without serving it.
func (c *Container) RenderPage(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %q: %w", rawURL, err)
	}

	template, err := c.Theme.Load(u.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load template for %s: %w", u.Path, err)
	}
	return c.Renderer.Render(ctx, u, template)
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if err := c.Client.Close(); err != nil {
		log.Warnf("⚠️ closing backend client: %v", err)
	}
	if c.redis != nil {
		c.redis.Close()
	}

	log.Info("Container shut down successfully")
	return nil
}
