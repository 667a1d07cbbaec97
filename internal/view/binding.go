package view

import (
	"bytes"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// Field is the logical name of a page anchor.
type Field string

const (
	DocumentHead  Field = "document.head"
	DocumentTitle Field = "document.title"
	MetaDesc      Field = "meta.description"
	OGTitle       Field = "meta.og:title"
	OGDescription Field = "meta.og:description"
	OGImage       Field = "meta.og:image"
	ItemImage     Field = "meta.itemprop-image"

	ProductName         Field = "product.name"
	ProductFeatures     Field = "product.features"
	ProductPrice        Field = "product.price"
	ProductDesigner     Field = "product.designer"
	ProductOrigin       Field = "product.origin"
	ProductImporter     Field = "product.importer"
	ProductArticle      Field = "product.article"
	ProductDescription  Field = "product.description"
	ProductDimensions   Field = "product.dimensions"
	ProductMaterials    Field = "product.materials"
	ProductFinish       Field = "product.finish"
	ProductGallery      Field = "product.gallery"
	ProductReviews      Field = "product.reviews"
	ProductReviewRating Field = "product.review-summary"
	ProductFAQ          Field = "product.faq"

	CategoryTitle       Field = "category.title"
	CategoryDescription Field = "category.description"
	CategoryGrid        Field = "category.grid"

	ExploreGrid Field = "explore.grid"
)

// selectors maps every field to the element(s) the theme templates use for it.
var selectors = map[Field]string{
	DocumentHead:  "head",
	DocumentTitle: "head > title",
	MetaDesc:      `meta[name="description"]`,
	OGTitle:       `meta[property="og:title"]`,
	OGDescription: `meta[property="og:description"]`,
	OGImage:       `meta[property="og:image"]`,
	ItemImage:     `link[itemprop="image"]`,

	ProductName:         "#dynamic-product-name",
	ProductFeatures:     "#dynamic-product-features",
	ProductPrice:        "#dynamic-product-price",
	ProductDesigner:     "#dynamic-designer-name",
	ProductOrigin:       "#dynamic-country-origin",
	ProductImporter:     "#dynamic-importer-packer",
	ProductArticle:      "#dynamic-article-number",
	ProductDescription:  "#dynamic-product-description",
	ProductDimensions:   "#dynamic-dimensions",
	ProductMaterials:    "#dynamic-materials",
	ProductFinish:       "#dynamic-finish",
	ProductGallery:      "#dynamic-product-gallery .dynamic-product-image",
	ProductReviews:      "#comments .commentlist",
	ProductReviewRating: ".woocommerce-review-rating-summary",
	ProductFAQ:          "#dynamic-product-faq",

	CategoryTitle:       "#dynamic-category-title",
	CategoryDescription: "#dynamic-category-description",
	CategoryGrid:        "#dynamic-product-grid",

	ExploreGrid: "#explore-products-grid",
}

// Binding resolves every known anchor of a document once. Anchors missing from
// the template are simply absent from the binding.
type Binding struct {
	doc         *goquery.Document
	fields      map[Field]*goquery.Selection
	initialized map[string]bool
}

func Bind(doc *goquery.Document) *Binding {
	b := &Binding{
		doc:         doc,
		fields:      make(map[Field]*goquery.Selection, len(selectors)),
		initialized: make(map[string]bool),
	}
	for field, selector := range selectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			b.fields[field] = sel
		}
	}
	return b
}

// Parse reads an HTML document and binds it.
func Parse(r io.Reader) (*Binding, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return Bind(doc), nil
}

// ParseBytes is Parse over an in-memory template.
func ParseBytes(html []byte) (*Binding, error) {
	return Parse(bytes.NewReader(html))
}

// Get returns the first element bound to field.
func (b *Binding) Get(field Field) (*goquery.Selection, bool) {
	sel, ok := b.fields[field]
	if !ok {
		return nil, false
	}
	return sel.First(), true
}

// All returns every element bound to field.
func (b *Binding) All(field Field) (*goquery.Selection, bool) {
	sel, ok := b.fields[field]
	return sel, ok
}

func (b *Binding) Has(field Field) bool {
	_, ok := b.fields[field]
	return ok
}

// MarkInitialized records that the named section has run on this document.
// It returns false when the section had already run.
func (b *Binding) MarkInitialized(section string) bool {
	if b.initialized[section] {
		return false
	}
	b.initialized[section] = true
	return true
}

func (b *Binding) Document() *goquery.Document {
	return b.doc
}

// HTML renders the whole patched document.
func (b *Binding) HTML() (string, error) {
	return goquery.OuterHtml(b.doc.Selection)
}

// setTitle sets the document title, adding a <title> to <head> when the
// template has none.
func (b *Binding) setTitle(title string) {
	if sel, ok := b.Get(DocumentTitle); ok {
		sel.SetText(title)
		return
	}

	head, ok := b.Get(DocumentHead)
	if !ok {
		return
	}
	head.AppendHtml("<title></title>")
	created := head.ChildrenFiltered("title").Last()
	created.SetText(title)
	b.fields[DocumentTitle] = created
}

func (b *Binding) setAttr(field Field, attr, value string) {
	if sel, ok := b.Get(field); ok {
		sel.SetAttr(attr, value)
	}
}
