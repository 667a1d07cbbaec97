package view

import (
	"html"
	"strings"

	"furnistor/storefront/internal/domain"
)

const DefaultExploreLimit = 12

const exploreStyleID = "explore-products-styles"

const exploreItemClass = "product type-product status-publish instock has-post-thumbnail featured shipping-taxable purchasable product-type-simple"

const exploreStyle = `
.product .lb-element-woocommerce-product-row-53a2a62b8b { height: 100%; background-color: var(--k-color-7); }
.product .lb-element-woocommerce-product-images-496bcb030c { margin-bottom: 1.5rem; }
.product .lb-element-woocommerce-product-images-496bcb030c .image-set__navigation-button { border-radius: 50%; }
.product .lb-element-woocommerce-product-images-496bcb030c img { aspect-ratio: 8/9; }
.product .lb-element-woocommerce-product-title-6e814bb413 { margin-bottom: 0.25em; }
.product .lb-element-woocommerce-product-swap-on-hover-9084dc5655 { font-size: 0.875em; }
.product .lb-element-woocommerce-product-add-to-cart-7b2c999c7c .add-to-cart { color: var(--k-color-3); }
.product .lb-element-woocommerce-product-add-to-cart-7b2c999c7c .add-to-cart:hover { color: var(--k-color-2); }
.product .lb-element-woocommerce-product-wishlist-ad1269863e { top: 1em; right: 1.25em; }
.product .lb-element-woocommerce-product-wishlist-ad1269863e .add-to-wishlist { color: var(--k-color-3); }
.product .lb-element-woocommerce-product-wishlist-ad1269863e .add-to-wishlist:hover { color: var(--k-color-4); }
`

// exploreTemplate is the theme's product card. Placeholders are filled by
// exploreItemHTML.
const exploreTemplate = `<div class="lb-element lb-element-woocommerce-product-row lb-element-woocommerce-product-row-53a2a62b8b visible-always visible-md-always visible-xl-always row">
<div class="lb-element lb-element-woocommerce-product-column lb-element-woocommerce-product-column-fb57d1a6ea visible-always visible-md-always visible-xl-always col col-auto-grow col-md-auto-grow col-xl-auto-grow">
<div class="lb-element lb-element-woocommerce-product-images lb-element-woocommerce-product-images-496bcb030c visible-always visible-md-always visible-xl-always">
<div class="image-set image-set--hover-transition-fade">
<div class="image-set__entry image-set__entry--hover-invisible">
<a href="{{productLink}}" aria-label="{{productName}}"><span class="image-placeholder loop-product-image" style="--k-ratio:0.666667"><img loading="lazy" decoding="async" width="800" height="1200" src="{{imageSrc1}}" class="attachment-woocommerce_thumbnail size-woocommerce_thumbnail" alt="{{productName}}" /></span></a>
</div>
<div class="image-set__entry image-set__entry--overlay image-set__entry--hover-visible">
<a href="{{productLink}}" aria-label="{{productName}}"><span class="image-placeholder loop-product-image" style="--k-ratio:0.666667"><img loading="lazy" decoding="async" width="800" height="1200" src="{{imageSrc2}}" class="attachment-woocommerce_thumbnail size-woocommerce_thumbnail" alt="{{productName}}" /></span></a>
</div>
</div>
</div>
<div class="lb-element lb-element-woocommerce-product-row lb-element-woocommerce-product-row-3068b4958c visible-always visible-md-always visible-xl-always row">
<div class="lb-element lb-element-woocommerce-product-column lb-element-woocommerce-product-column-a715305e66 visible-always visible-md-always visible-xl-always col col-10 col-md-10 col-xl-10">
<h3 class="lb-element lb-element-woocommerce-product-title lb-element-woocommerce-product-title-6e814bb413 visible-always visible-md-always visible-xl-always link-plain"><a href="{{productLink}}" class="woocommerce-LoopProduct-link woocommerce-loop-product__link">{{productName}}</a></h3>
<div class="lb-element lb-element-woocommerce-product-swap-on-hover lb-element-woocommerce-product-swap-on-hover-9084dc5655 visible-always visible-md-always visible-xl-always swap-on-hover" data-hover-attach="product-hover">
<div class="lb-element lb-element-woocommerce-product-price lb-element-woocommerce-product-price-485f9e8dfb visible-always visible-md-always visible-xl-always">
<span class="price"><span class="woocommerce-Price-amount amount"><bdi><span class="woocommerce-Price-currencySymbol">{{currencySymbol}}</span>{{price}}</bdi></span></span>
</div>
<div class="lb-element lb-element-woocommerce-product-add-to-cart lb-element-woocommerce-product-add-to-cart-7b2c999c7c visible-always visible-md-hover visible-xl-hover visible-hover--animate visible-hover--animate-fast visible-hover--fade">
<a href="{{productLink}}" class="add-to-cart link-button product_type_simple" aria-label="View details for {{productName}}"><span class="link-button__content link-button__content--icon"><span class="button-icon"><i class="kalium-icon-plus"></i></span><span class="link-button__loading"></span></span><span class="link-button__content link-button__content--text">View Details</span></a>
</div>
</div>
</div>
<div class="lb-element lb-element-woocommerce-product-column lb-element-woocommerce-product-column-71d730a90d d-flex justify-content-end justify-content-md-end justify-content-xl-end visible-always visible-md-always visible-xl-always col col-auto-grow col-md-auto-grow col-xl-auto-grow">
<div class="lb-element lb-element-woocommerce-product-wishlist lb-element-woocommerce-product-wishlist-ad1269863e visible-hover visible-md-hover visible-xl-hover visible-hover--animate visible-hover--animate-fast visible-hover--fade">
<a href="#" class="add-to-wishlist link-button" rel="nofollow" data-tooltip="Add to wishlist" data-tooltip-placement="top"><span class="link-button__content link-button__content--icon"><span class="button-icon"><i class="kalium-icon-add-to-wishlist"></i></span></span></a>
</div>
</div>
</div>
</div>
</div>`

// HasExploreGrid reports whether the page wants the explore grid at all.
func HasExploreGrid(b *Binding) bool {
	return b.Has(ExploreGrid)
}

// RenderExploreGrid fills #explore-products-grid with the first limit products
// and injects the card styles once.
func RenderExploreGrid(b *Binding, products []domain.Product, limit int) {
	grid, ok := b.Get(ExploreGrid)
	if !ok {
		return
	}

	ensureExploreStyle(b)

	if limit <= 0 {
		limit = DefaultExploreLimit
	}
	if len(products) > limit {
		products = products[:limit]
	}

	var sb strings.Builder
	for i := range products {
		sb.WriteString(`<li class="` + exploreItemClass + `">`)
		sb.WriteString(exploreItemHTML(&products[i]))
		sb.WriteString(`</li>`)
	}
	grid.SetHtml(sb.String())
}

// ensureExploreStyle adds the card styles unless the page already has them.
func ensureExploreStyle(b *Binding) {
	if b.doc.Find("#"+exploreStyleID).Length() > 0 {
		return
	}
	head, ok := b.Get(DocumentHead)
	if !ok {
		return
	}
	head.AppendHtml(`<style id="` + exploreStyleID + `">` + exploreStyle + `</style>`)
}

func exploreItemHTML(p *domain.Product) string {
	var first, second string
	if image, ok := p.ImageAt(0); ok {
		first = image.Src
		second = image.Src
	}
	if image, ok := p.ImageAt(1); ok {
		second = image.Src
	}

	r := strings.NewReplacer(
		"{{productLink}}", html.EscapeString("/product/"+p.Slug),
		"{{productName}}", html.EscapeString(p.Name),
		"{{imageSrc1}}", html.EscapeString(first),
		"{{imageSrc2}}", html.EscapeString(second),
		"{{currencySymbol}}", html.EscapeString(p.Currency()),
		"{{price}}", html.EscapeString(p.PriceText()),
	)
	return r.Replace(exploreTemplate)
}
