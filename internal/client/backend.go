package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"furnistor/storefront/internal/config"
	"furnistor/storefront/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// BackendClient talks to the catalog REST API. Each fetch is one request;
// failures come back as *FetchFailure.
type BackendClient interface {
	Product(ctx context.Context, id domain.ResourceIdentifier) (*domain.Product, error)
	ProductByID(ctx context.Context, id string) (*domain.Product, error)
	ProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ProductByArticle(ctx context.Context, articleNumber string) (*domain.Product, error)
	Products(ctx context.Context, category string) ([]domain.Product, error)
	ProductFAQByID(ctx context.Context, id string) ([]domain.FAQ, error)
	ProductFAQBySlug(ctx context.Context, slug string) ([]domain.FAQ, error)

	Categories(ctx context.Context, query CategoryQuery) ([]domain.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	SubcategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)

	CreateCategory(ctx context.Context, sub *Submission) (*CreateResult, error)
	CreateSubcategory(ctx context.Context, sub *Submission) (*CreateResult, error)

	Health(ctx context.Context) error
	BaseURL() string
	Close() error
}

// CategoryQuery filters GET /categories. Zero values are left out of the URL.
type CategoryQuery struct {
	IsActive *bool
	Search   string
	Sort     string
}

func (q CategoryQuery) values() url.Values {
	v := url.Values{}
	if q.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*q.IsActive))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

type backendClient struct {
	rl         ratelimit.Limiter
	baseURL    string
	httpClient *resty.Client
}

// NewBackendClient builds a client for the REST backend at baseURL. The base
// URL is fixed for the client's lifetime.
func NewBackendClient(cfg config.BackendConfig, baseURL string) BackendClient {
	httpClient := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &backendClient{
		rl:         rl,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *backendClient) BaseURL() string {
	return c.baseURL
}

func (c *backendClient) Close() error {
	return c.httpClient.Close()
}

// Product dispatches on the identifier kind.
func (c *backendClient) Product(ctx context.Context, id domain.ResourceIdentifier) (*domain.Product, error) {
	switch id.Kind {
	case domain.ProductByID:
		return c.ProductByID(ctx, id.Value)
	case domain.ProductBySlug:
		return c.ProductBySlug(ctx, id.Value)
	case domain.ProductByArticle:
		return c.ProductByArticle(ctx, id.Value)
	default:
		return nil, fmt.Errorf("identifier %s does not address a product", id)
	}
}

func (c *backendClient) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	return c.getProduct(ctx, "product by id", c.baseURL+"/products/"+url.PathEscape(id))
}

func (c *backendClient) ProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return c.getProduct(ctx, "product by slug", c.baseURL+"/products/slug/"+url.PathEscape(slug))
}

func (c *backendClient) ProductByArticle(ctx context.Context, articleNumber string) (*domain.Product, error) {
	return c.getProduct(ctx, "product by article", c.baseURL+"/products/article/"+url.PathEscape(articleNumber))
}

func (c *backendClient) getProduct(ctx context.Context, op, endpoint string) (*domain.Product, error) {
	body, err := c.get(ctx, op, endpoint)
	if err != nil {
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal(unwrapObject(body, "product", "data"), &product); err != nil {
		return nil, &FetchFailure{Op: op, URL: endpoint, Err: fmt.Errorf("failed to decode product: %w", err)}
	}
	return &product, nil
}

func (c *backendClient) Products(ctx context.Context, category string) ([]domain.Product, error) {
	query := url.Values{}
	query.Set("isActive", "true")
	if category != "" {
		query.Set("category", category)
	}
	endpoint := c.baseURL + "/products?" + query.Encode()

	body, err := c.get(ctx, "products", endpoint)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := json.Unmarshal(unwrapList(body, "data", "products"), &products); err != nil {
		return nil, &FetchFailure{Op: "products", URL: endpoint, Err: fmt.Errorf("failed to decode products: %w", err)}
	}
	return products, nil
}

func (c *backendClient) ProductFAQByID(ctx context.Context, id string) ([]domain.FAQ, error) {
	return c.getFAQ(ctx, "product faq by id", c.baseURL+"/products/"+url.PathEscape(id)+"/faq")
}

func (c *backendClient) ProductFAQBySlug(ctx context.Context, slug string) ([]domain.FAQ, error) {
	return c.getFAQ(ctx, "product faq by slug", c.baseURL+"/products/slug/"+url.PathEscape(slug)+"/faq")
}

func (c *backendClient) getFAQ(ctx context.Context, op, endpoint string) ([]domain.FAQ, error) {
	body, err := c.get(ctx, op, endpoint)
	if err != nil {
		return nil, err
	}

	var faqs []domain.FAQ
	if err := json.Unmarshal(unwrapList(body, "data", "faqs", "faq"), &faqs); err != nil {
		return nil, &FetchFailure{Op: op, URL: endpoint, Err: fmt.Errorf("failed to decode faq: %w", err)}
	}
	return faqs, nil
}

func (c *backendClient) Categories(ctx context.Context, query CategoryQuery) ([]domain.Category, error) {
	endpoint := c.baseURL + "/categories"
	if v := query.values(); len(v) > 0 {
		endpoint += "?" + v.Encode()
	}

	body, err := c.get(ctx, "categories", endpoint)
	if err != nil {
		return nil, err
	}

	var categories []domain.Category
	if err := json.Unmarshal(unwrapList(body, "data", "categories"), &categories); err != nil {
		return nil, &FetchFailure{Op: "categories", URL: endpoint, Err: fmt.Errorf("failed to decode categories: %w", err)}
	}
	return categories, nil
}

func (c *backendClient) CategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return c.getCategory(ctx, "category", c.baseURL+"/categories/"+url.PathEscape(slug), "category")
}

func (c *backendClient) SubcategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return c.getCategory(ctx, "subcategory", c.baseURL+"/subcategories/"+url.PathEscape(slug), "subcategory")
}

func (c *backendClient) getCategory(ctx context.Context, op, endpoint, key string) (*domain.Category, error) {
	body, err := c.get(ctx, op, endpoint)
	if err != nil {
		return nil, err
	}

	var category domain.Category
	if err := json.Unmarshal(unwrapObject(body, key, "data"), &category); err != nil {
		return nil, &FetchFailure{Op: op, URL: endpoint, Err: fmt.Errorf("failed to decode %s: %w", op, err)}
	}
	return &category, nil
}

func (c *backendClient) CreateCategory(ctx context.Context, sub *Submission) (*CreateResult, error) {
	return c.create(ctx, "create category", c.baseURL+"/categories", sub)
}

func (c *backendClient) CreateSubcategory(ctx context.Context, sub *Submission) (*CreateResult, error) {
	return c.create(ctx, "create subcategory", c.baseURL+"/subcategories", sub)
}

func (c *backendClient) create(ctx context.Context, op, endpoint string, sub *Submission) (*CreateResult, error) {
	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetMultipartFields(sub.multipartFields()...).
		Post(endpoint)
	if err != nil {
		return nil, &FetchFailure{Op: op, URL: endpoint, Err: err}
	}

	body := resp.Bytes()
	if !resp.IsSuccess() {
		return nil, &FetchFailure{Op: op, URL: endpoint, Status: resp.StatusCode(), Message: serverMessage(body)}
	}

	result := &CreateResult{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			log.Warnf("%s: response is not JSON: %v", op, err)
		}
	}
	log.Infof("✅ %s: %s", op, result.Message)
	return result, nil
}

func (c *backendClient) Health(ctx context.Context) error {
	_, err := c.get(ctx, "health", c.baseURL+"/health")
	return err
}

// get performs exactly one GET and returns the body of a 2xx response.
func (c *backendClient) get(ctx context.Context, op, endpoint string) ([]byte, error) {
	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return nil, &FetchFailure{Op: op, URL: endpoint, Err: err}
	}

	if !resp.IsSuccess() {
		failure := &FetchFailure{Op: op, URL: endpoint, Status: resp.StatusCode(), Message: serverMessage(resp.Bytes())}
		log.Debugf("%v", failure)
		return nil, failure
	}

	log.Debugf("GET %s -> %d", endpoint, resp.StatusCode())
	return resp.Bytes(), nil
}
