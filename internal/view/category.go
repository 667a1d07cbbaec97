package view

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"furnistor/storefront/internal/domain"
)

type breadcrumbItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

type breadcrumbList struct {
	Context string           `json:"@context"`
	Type    string           `json:"@type"`
	Items   []breadcrumbItem `json:"itemListElement"`
}

// BreadcrumbJSON is the schema.org BreadcrumbList for a category page.
func BreadcrumbJSON(name, slug, origin string) (string, error) {
	origin = strings.TrimSuffix(origin, "/")
	list := breadcrumbList{
		Context: "https://schema.org",
		Type:    "BreadcrumbList",
		Items: []breadcrumbItem{
			{Type: "ListItem", Position: 1, Name: "Home", Item: origin},
			{Type: "ListItem", Position: 2, Name: name, Item: origin + "/index_decor/category/" + slug},
		},
	}

	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to encode breadcrumb: %w", err)
	}
	return string(data), nil
}

// ApplyCategory writes a category or subcategory into the category anchors.
// slug is the slug the page was resolved with, origin the public site origin.
func ApplyCategory(b *Binding, c *domain.Category, slug, origin, siteName string) error {
	displayTitle := c.DisplayTitle()

	if sel, ok := b.Get(CategoryTitle); ok && displayTitle != "" {
		sel.SetText(displayTitle)
	}

	if displayTitle != "" && slug != "" {
		if err := replaceBreadcrumb(b, displayTitle, slug, origin); err != nil {
			return err
		}
	}

	b.setTitle(c.PageTitle() + " – " + siteName)

	preferred := c.PreferredDescription()
	if sel, ok := b.Get(CategoryDescription); ok && preferred != "" {
		switch {
		case goquery.NodeName(sel) == "p":
			sel.SetText(preferred)
		case sel.Find("p").Length() > 0:
			sel.Find("p").First().SetText(preferred)
		default:
			sel.SetText(preferred)
		}
	}

	if c.MetaDescription != "" {
		b.setAttr(MetaDesc, "content", c.MetaDescription)
	}
	if desc := firstNonEmpty(c.MetaDescription, preferred); desc != "" {
		b.setAttr(OGDescription, "content", desc)
	}
	if title := firstNonEmpty(c.MetaTitle, displayTitle); title != "" {
		b.setAttr(OGTitle, "content", title)
	}
	return nil
}

func replaceBreadcrumb(b *Binding, name, slug, origin string) error {
	data, err := BreadcrumbJSON(name, slug, origin)
	if err != nil {
		return err
	}

	b.doc.Find("#breadcrumb-schema").Remove()

	head, ok := b.Get(DocumentHead)
	if !ok {
		return nil
	}
	// Script content is raw text: it must go in as markup, not through SetText.
	// json.Marshal escapes <, > and & so the data cannot close the element.
	head.AppendHtml(`<script type="application/ld+json" id="breadcrumb-schema">` + data + `</script>`)
	return nil
}

// RenderCategoryProducts fills the category product grid.
func RenderCategoryProducts(b *Binding, products []domain.Product) {
	grid, ok := b.Get(CategoryGrid)
	if !ok {
		return
	}

	if len(products) == 0 {
		grid.SetHtml("<p>No products found in this category.</p>")
		return
	}

	var sb strings.Builder
	for i := range products {
		p := &products[i]
		link := html.EscapeString("/product/" + p.Slug)

		sb.WriteString(`<li class="product">`)
		fmt.Fprintf(&sb, `<a href="%s" class="woocommerce-LoopProduct-link woocommerce-loop-product__link">`, link)
		if image, ok := p.ImageAt(0); ok {
			alt := firstNonEmpty(image.Alt, p.Name)
			fmt.Fprintf(&sb, `<img width="300" height="300" src="%s" class="attachment-woocommerce_thumbnail size-woocommerce_thumbnail" alt="%s" />`,
				html.EscapeString(image.Src), html.EscapeString(alt))
		}
		fmt.Fprintf(&sb, `<h2 class="woocommerce-loop-product__title">%s</h2>`, html.EscapeString(p.Name))
		sb.WriteString(`<span class="price">`)
		sb.WriteString(amountHTML(html.EscapeString(p.Currency()), html.EscapeString(p.PriceText())))
		sb.WriteString(`</span></a></li>`)
	}
	grid.SetHtml(sb.String())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
