package locator

import (
	"net/url"

	"furnistor/storefront/internal/domain"
)

// Matcher derives a resource identifier from a page URL. Matchers are pure and
// are tried in order; the first one that reports true wins.
type Matcher func(u *url.URL) (domain.ResourceIdentifier, bool)

// Resolve runs matchers in order and returns the first match.
func Resolve(u *url.URL, matchers []Matcher) (domain.ResourceIdentifier, bool) {
	if u == nil {
		return domain.ResourceIdentifier{}, false
	}
	for _, match := range matchers {
		if id, ok := match(u); ok {
			return id, true
		}
	}
	return domain.ResourceIdentifier{}, false
}

// CategoryMatchers is the slug precedence for category pages.
var CategoryMatchers = []Matcher{
	categoryFromQuery,
	categoryFromCategoryPath,
	categoryFromIndexPath,
	categoryFromLastSegment,
	categoryFromIndexFilename,
}

// ProductMatchers is the identifier precedence for product pages. The legacy
// table may answer with a category identifier, which ends the search without a
// product.
var ProductMatchers = []Matcher{
	productFromPath,
	productFromQuery("article", domain.ProductByArticle),
	productFromQuery("slug", domain.ProductBySlug),
	productFromQuery("id", domain.ProductByID),
	productFromLegacyTable,
	productFromIndexFilename,
}

// ResolveCategorySlug returns the category slug a page URL points at.
func ResolveCategorySlug(u *url.URL) (string, bool) {
	id, ok := Resolve(u, CategoryMatchers)
	if !ok {
		return "", false
	}
	return id.Value, true
}

// ResolveSectionSlug is the slug used by the category section: an explicit
// ?subcategory= takes over from the category slug.
func ResolveSectionSlug(u *url.URL) (string, bool) {
	if u != nil {
		if sub := u.Query().Get("subcategory"); sub != "" {
			return sub, true
		}
	}
	return ResolveCategorySlug(u)
}

// ResolveProductIdentifier returns how the product of a page URL has to be
// fetched. false means the page is not a product page and nothing is fetched.
func ResolveProductIdentifier(u *url.URL) (domain.ResourceIdentifier, bool) {
	id, ok := Resolve(u, ProductMatchers)
	if !ok || !id.IsProduct() {
		return domain.ResourceIdentifier{}, false
	}
	return id, true
}
