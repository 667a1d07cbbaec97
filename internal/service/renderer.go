package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"furnistor/storefront/internal/client"
	"furnistor/storefront/internal/config"
	"furnistor/storefront/internal/domain"
	"furnistor/storefront/internal/locator"
	"furnistor/storefront/internal/view"

	log "github.com/sirupsen/logrus"
)

// section is one independent part of page initialization. fetch runs
// concurrently with the other sections; apply runs afterwards, in order.
type section interface {
	name() string
	fetch(ctx context.Context) error
	apply(b *view.Binding) error
}

// Renderer fills a page template with product, category and explore data.
type Renderer struct {
	client      client.BackendClient
	siteName    string
	stagingHost string
	exploreMax  int
	settleDelay time.Duration
}

func NewRenderer(client client.BackendClient, theme config.ThemeConfig) *Renderer {
	return &Renderer{
		client:      client,
		siteName:    theme.SiteName,
		stagingHost: theme.StagingHost,
		exploreMax:  theme.ExploreLimit,
		settleDelay: theme.SettleDelayDuration(),
	}
}

// Render patches templateHTML for the page at requestURL and returns the
// resulting document. Section failures are logged and leave the template's
// static content in place; only template parsing and context cancellation
// fail the render.
func (r *Renderer) Render(ctx context.Context, requestURL *url.URL, templateHTML []byte) ([]byte, error) {
	b, err := view.ParseBytes(templateHTML)
	if err != nil {
		return nil, err
	}

	if err := r.Apply(ctx, requestURL, b); err != nil {
		return nil, err
	}

	out, err := b.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	return []byte(out), nil
}

// Apply runs the product, category and explore sections against an already
// bound document. Sections that already ran on b are skipped.
func (r *Renderer) Apply(ctx context.Context, requestURL *url.URL, b *view.Binding) error {
	if r.settleDelay > 0 {
		select {
		case <-time.After(r.settleDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	candidates := []section{
		&productSection{client: r.client, url: requestURL, siteName: r.siteName, wantFAQ: b.Has(view.ProductFAQ)},
		&categorySection{client: r.client, url: requestURL, siteName: r.siteName, enabled: b.Has(view.CategoryTitle) || b.Has(view.CategoryDescription)},
		&exploreSection{client: r.client, limit: r.exploreMax, enabled: view.HasExploreGrid(b)},
	}

	sections := make([]section, 0, len(candidates))
	for _, s := range candidates {
		if b.MarkInitialized(s.name()) {
			sections = append(sections, s)
		}
	}

	ok := make([]bool, len(sections))
	g := new(errgroup.Group)
	for i, s := range sections {
		i, s := i, s
		g.Go(func() error {
			if err := s.fetch(ctx); err != nil {
				log.Errorf("❌ %s section: %v", s.name(), err)
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	for i, s := range sections {
		if !ok[i] {
			continue
		}
		if err := s.apply(b); err != nil {
			log.Errorf("❌ %s section: %v", s.name(), err)
		}
	}

	if n := view.RewriteStagingLinks(b.Document(), r.stagingHost); n > 0 {
		log.Debugf("rewrote %d staging links on %s", n, requestURL.Path)
	}
	return nil
}

func origin(u *url.URL) string {
	scheme := u.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + u.Host
}

type productSection struct {
	client   client.BackendClient
	url      *url.URL
	siteName string
	wantFAQ  bool

	product *domain.Product
}

func (s *productSection) name() string { return "product" }

func (s *productSection) fetch(ctx context.Context) error {
	id, ok := locator.ResolveProductIdentifier(s.url)
	if !ok {
		log.Debugf("no product identifier in %s", s.url)
		return nil
	}

	product, err := s.client.Product(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", id, err)
	}

	if s.wantFAQ && len(product.FAQs) == 0 {
		faqs, err := s.productFAQ(ctx, product)
		if err != nil {
			log.Warnf("⚠️ faq for %s: %v", id, err)
		} else {
			product.FAQs = faqs
		}
	}

	s.product = product
	return nil
}

func (s *productSection) productFAQ(ctx context.Context, p *domain.Product) ([]domain.FAQ, error) {
	if p.Slug != "" {
		return s.client.ProductFAQBySlug(ctx, p.Slug)
	}
	return s.client.ProductFAQByID(ctx, p.ID)
}

func (s *productSection) apply(b *view.Binding) error {
	if s.product == nil {
		return nil
	}
	view.ApplyProduct(b, s.product, s.siteName)
	log.Debugf("applied product %q", s.product.Name)
	return nil
}

type categorySection struct {
	client   client.BackendClient
	url      *url.URL
	siteName string
	enabled  bool

	slug     string
	category *domain.Category
	products []domain.Product
	listed   bool
}

func (s *categorySection) name() string { return "category" }

func (s *categorySection) fetch(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	slug, ok := locator.ResolveSectionSlug(s.url)
	if !ok {
		log.Debugf("no category slug in %s", s.url)
		return nil
	}
	s.slug = slug

	category, err := s.client.CategoryBySlug(ctx, slug)
	if err != nil {
		log.Debugf("%q is not a category (%v), trying subcategory", slug, err)

		category, err = s.client.SubcategoryBySlug(ctx, slug)
		if err != nil {
			return fmt.Errorf("%q is neither a category nor a subcategory: %w", slug, err)
		}
	}
	s.category = category

	listSlug, _ := locator.ResolveCategorySlug(s.url)
	products, err := s.client.Products(ctx, listSlug)
	if err != nil {
		log.Errorf("❌ products for %q: %v", listSlug, err)
		return nil
	}
	s.products = products
	s.listed = true
	return nil
}

func (s *categorySection) apply(b *view.Binding) error {
	if s.category == nil {
		return nil
	}
	if s.listed {
		view.RenderCategoryProducts(b, s.products)
	}
	return view.ApplyCategory(b, s.category, s.slug, origin(s.url), s.siteName)
}

type exploreSection struct {
	client  client.BackendClient
	limit   int
	enabled bool

	products []domain.Product
	fetched  bool
}

func (s *exploreSection) name() string { return "explore" }

func (s *exploreSection) fetch(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	products, err := s.client.Products(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to fetch explore products: %w", err)
	}
	s.products = products
	s.fetched = true
	return nil
}

func (s *exploreSection) apply(b *view.Binding) error {
	if !s.fetched {
		return nil
	}
	view.RenderExploreGrid(b, s.products, s.limit)
	return nil
}
