package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furnistor/storefront/internal/client"
	"furnistor/storefront/internal/config"
	"furnistor/storefront/internal/domain"
	"furnistor/storefront/internal/view"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	products      map[string]*domain.Product
	categories    map[string]*domain.Category
	subcategories map[string]*domain.Category
	listing       []domain.Product
	listingErr    error
	faqs          []domain.FAQ
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls:         make(map[string]int),
		products:      make(map[string]*domain.Product),
		categories:    make(map[string]*domain.Category),
		subcategories: make(map[string]*domain.Category),
	}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[call]++
}

func (f *fakeBackend) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[call]
}

func notFound(op string) error {
	return &client.FetchFailure{Op: op, Status: http.StatusNotFound}
}

func (f *fakeBackend) Product(ctx context.Context, id domain.ResourceIdentifier) (*domain.Product, error) {
	f.record("product:" + id.String())
	if p, ok := f.products[id.String()]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, notFound("product")
}

func (f *fakeBackend) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	return f.Product(ctx, domain.ResourceIdentifier{Kind: domain.ProductByID, Value: id})
}

func (f *fakeBackend) ProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return f.Product(ctx, domain.ResourceIdentifier{Kind: domain.ProductBySlug, Value: slug})
}

func (f *fakeBackend) ProductByArticle(ctx context.Context, articleNumber string) (*domain.Product, error) {
	return f.Product(ctx, domain.ResourceIdentifier{Kind: domain.ProductByArticle, Value: articleNumber})
}

func (f *fakeBackend) Products(ctx context.Context, category string) ([]domain.Product, error) {
	f.record("products:" + category)
	if f.listingErr != nil {
		return nil, f.listingErr
	}
	return f.listing, nil
}

func (f *fakeBackend) ProductFAQByID(ctx context.Context, id string) ([]domain.FAQ, error) {
	f.record("faq-id:" + id)
	return f.faqs, nil
}

func (f *fakeBackend) ProductFAQBySlug(ctx context.Context, slug string) ([]domain.FAQ, error) {
	f.record("faq-slug:" + slug)
	return f.faqs, nil
}

func (f *fakeBackend) Categories(ctx context.Context, query client.CategoryQuery) ([]domain.Category, error) {
	f.record("categories")
	return nil, nil
}

func (f *fakeBackend) CategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	f.record("category:" + slug)
	if c, ok := f.categories[slug]; ok {
		return c, nil
	}
	return nil, notFound("category")
}

func (f *fakeBackend) SubcategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	f.record("subcategory:" + slug)
	if c, ok := f.subcategories[slug]; ok {
		return c, nil
	}
	return nil, notFound("subcategory")
}

func (f *fakeBackend) CreateCategory(ctx context.Context, sub *client.Submission) (*client.CreateResult, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBackend) CreateSubcategory(ctx context.Context, sub *client.Submission) (*client.CreateResult, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBackend) Health(ctx context.Context) error { return nil }
func (f *fakeBackend) BaseURL() string                  { return "http://backend.test/api" }
func (f *fakeBackend) Close() error                     { return nil }

const page = `<html><head><title>t</title></head><body>
<h1 id="dynamic-product-name">static name</h1>
<p id="dynamic-product-price"></p>
<section id="dynamic-product-faq"></section>
<h1 id="dynamic-category-title">static title</h1>
<div id="dynamic-category-description"><p>static</p></div>
<ul id="dynamic-product-grid"></ul>
<ul id="explore-products-grid"></ul>
<a id="staging" href="https://sites.kaliumtheme.com/product-category/lamps/">Lamps</a>
</body></html>`

func testTheme() config.ThemeConfig {
	return config.ThemeConfig{SiteName: "Furnistør", StagingHost: "sites.kaliumtheme.com", ExploreLimit: 12}
}

func render(t *testing.T, r *Renderer, rawURL string) *goquery.Document {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)

	out, err := r.Render(context.Background(), u, []byte(page))
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(out)))
	require.NoError(t, err)
	return doc
}

func TestRenderProductPage(t *testing.T) {
	backend := newFakeBackend()
	backend.products["product-by-slug:oslo"] = &domain.Product{Name: "Oslo", Slug: "oslo", Price: decimal.NewFromInt(10)}
	backend.faqs = []domain.FAQ{{Question: "Q", Answer: "A"}}
	backend.listing = []domain.Product{{Name: "Oslo", Slug: "oslo", Price: decimal.NewFromInt(10)}}

	doc := render(t, NewRenderer(backend, testTheme()), "http://shop.test/product/oslo?id=99")

	assert.Equal(t, "Oslo", doc.Find("#dynamic-product-name").Text())
	assert.Equal(t, "Oslo – Furnistør", doc.Find("title").Text())
	assert.Equal(t, "Q", doc.Find("#dynamic-product-faq dt").Text())
	assert.Equal(t, 0, backend.count("product:product-by-id:99"), "path wins over ?id")
	assert.Equal(t, 1, backend.count("faq-slug:oslo"))
	assert.Equal(t, 1, doc.Find("#explore-products-grid li").Length())
	assert.Equal(t, "/index_decor/category/lamps", doc.Find("#staging").AttrOr("href", ""))
}

func TestRenderCategoryFallsBackToSubcategoryOnce(t *testing.T) {
	backend := newFakeBackend()
	backend.subcategories["round-mirrors"] = &domain.Category{Name: "Round mirrors", Slug: "round-mirrors", H1Tag: "Round"}
	backend.listing = []domain.Product{{Name: "Halo", Slug: "halo", Price: decimal.NewFromInt(50)}}

	doc := render(t, NewRenderer(backend, testTheme()), "http://shop.test/index_decor/category/round-mirrors")

	assert.Equal(t, 1, backend.count("category:round-mirrors"))
	assert.Equal(t, 1, backend.count("subcategory:round-mirrors"))
	assert.Equal(t, "Round", doc.Find("#dynamic-category-title").Text())
	assert.Equal(t, "Round mirrors – Furnistør", doc.Find("title").Text())
	assert.Equal(t, 1, backend.count("products:round-mirrors"))
	assert.Equal(t, "/product/halo", doc.Find("#dynamic-product-grid a").AttrOr("href", ""))
}

func TestRenderCategoryBothFail(t *testing.T) {
	backend := newFakeBackend()
	backend.listing = []domain.Product{{Name: "Halo", Slug: "halo", Price: decimal.NewFromInt(50)}}

	doc := render(t, NewRenderer(backend, testTheme()), "http://shop.test/category/ghost")

	assert.Equal(t, 1, backend.count("category:ghost"))
	assert.Equal(t, 1, backend.count("subcategory:ghost"))
	assert.Equal(t, 0, backend.count("products:ghost"), "aborted section does not list products")
	assert.Equal(t, "static title", doc.Find("#dynamic-category-title").Text())
	assert.Equal(t, 1, doc.Find("#explore-products-grid li").Length(), "other sections still render")
}

func TestRenderSubcategoryParamOverridesSlug(t *testing.T) {
	backend := newFakeBackend()
	backend.categories["mirrors"] = &domain.Category{Name: "Mirrors", Slug: "mirrors"}
	backend.categories["round"] = &domain.Category{Name: "Round", Slug: "round"}

	render(t, NewRenderer(backend, testTheme()), "http://shop.test/category/mirrors?subcategory=round")

	assert.Equal(t, 1, backend.count("category:round"))
	assert.Equal(t, 0, backend.count("category:mirrors"))
	assert.Equal(t, 1, backend.count("products:mirrors"), "listing keeps the category slug")
}

func TestRenderExploreFailureKeepsTemplate(t *testing.T) {
	backend := newFakeBackend()
	backend.listingErr = errors.New("backend down")

	doc := render(t, NewRenderer(backend, testTheme()), "http://shop.test/")

	assert.Equal(t, 0, doc.Find("#explore-products-grid li").Length())
	assert.Equal(t, "static name", doc.Find("#dynamic-product-name").Text())
}

func TestApplyRunsEachSectionOnce(t *testing.T) {
	backend := newFakeBackend()
	backend.products["product-by-slug:oslo"] = &domain.Product{Name: "Oslo", Slug: "oslo"}

	b, err := view.ParseBytes([]byte(page))
	require.NoError(t, err)
	u, _ := url.Parse("http://shop.test/product/oslo")

	r := NewRenderer(backend, testTheme())
	require.NoError(t, r.Apply(context.Background(), u, b))
	require.NoError(t, r.Apply(context.Background(), u, b))

	assert.Equal(t, 1, backend.count("product:product-by-slug:oslo"))
	assert.Equal(t, 1, backend.count("products:"))
}

func TestApplyHonoursCancellation(t *testing.T) {
	backend := newFakeBackend()
	cfg := testTheme()
	cfg.SettleDelay = 1000

	b, err := view.ParseBytes([]byte(page))
	require.NoError(t, err)
	u, _ := url.Parse("http://shop.test/product/oslo")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = NewRenderer(backend, cfg).Apply(ctx, u, b)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, backend.count("product:product-by-slug:oslo"))
}

func TestThemeResolve(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"index.html", "product.html", "index_decor.html", "index_tact.html", "about.html"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("<html></html>"), 0o644))
	}
	theme := NewTheme(config.ThemeConfig{
		Dir:              dir,
		IndexTemplate:    "index.html",
		ProductTemplate:  "product.html",
		CategoryTemplate: "index_decor.html",
	})

	tests := []struct {
		path string
		want string
	}{
		{"/", "index.html"},
		{"/about.html", "about.html"},
		{"/index_tact.html", "index_tact.html"},
		{"/index_oslo-chair.html", "product.html"},
		{"/product/oslo-chair", "product.html"},
		{"/category/rugs", "index_decor.html"},
		{"/index_decor/category/rugs/", "index_decor.html"},
		{"/index_decor.html/living", "index_decor.html"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := theme.Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.want), got)
		})
	}

	for _, missing := range []string{"/shop/lighting", "/../etc/passwd", "/missing.css"} {
		_, err := theme.Resolve(missing)
		assert.ErrorIs(t, err, ErrTemplateNotFound, missing)
	}

	data, err := theme.Load("/product/x")
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}
