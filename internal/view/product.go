package view

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"furnistor/storefront/internal/domain"
)

// ApplyProduct writes a product into every product anchor the page has.
func ApplyProduct(b *Binding, p *domain.Product, siteName string) {
	if sel, ok := b.Get(ProductName); ok {
		sel.SetText(p.Name)
	}

	b.setTitle(p.Name + " – " + siteName)
	b.setAttr(OGTitle, "content", p.Name)
	b.setAttr(OGDescription, "content", p.Features)

	if sel, ok := b.Get(ProductFeatures); ok {
		setParagraph(sel, p.Features)
	}

	if sel, ok := b.Get(ProductPrice); ok {
		sel.SetHtml(PriceHTML(p))
	}

	setOptionalParagraph(b, ProductDesigner, p.Designer)
	setOptionalParagraph(b, ProductOrigin, p.CountryOfOrigin)
	setOptionalParagraph(b, ProductImporter, p.ImporterPackerMarketer)
	setOptionalParagraph(b, ProductArticle, p.ArticleNumber)

	if sel, ok := b.Get(ProductDescription); ok && p.Description != "" {
		if inner := sel.Find("p").First(); inner.Length() > 0 {
			inner.SetText(p.Description)
		} else {
			sel.SetText(p.Description)
		}
	}

	setOptionalParagraph(b, ProductDimensions, p.Dimensions)
	setOptionalParagraph(b, ProductMaterials, p.Materials)
	setOptionalParagraph(b, ProductFinish, p.Finish)

	applyGallery(b, p)

	if len(p.Reviews) > 0 {
		ApplyReviews(b, p.Reviews)
	}
	if len(p.FAQs) > 0 {
		RenderFAQ(b, p.FAQs)
	}
}

// setParagraph replaces the text of the anchor's first <p>, or makes the
// anchor hold a single <p> with the value. A <p> anchor takes the text itself
// since paragraphs cannot nest.
func setParagraph(sel *goquery.Selection, value string) {
	if goquery.NodeName(sel) == "p" {
		sel.SetText(value)
		return
	}
	if inner := sel.Find("p").First(); inner.Length() > 0 {
		inner.SetText(value)
		return
	}
	sel.SetHtml("<p>" + html.EscapeString(value) + "</p>")
}

func setOptionalParagraph(b *Binding, field Field, value string) {
	if value == "" {
		return
	}
	if sel, ok := b.Get(field); ok {
		setParagraph(sel, value)
	}
}

func applyGallery(b *Binding, p *domain.Product) {
	if len(p.Images) == 0 {
		return
	}

	if slots, ok := b.All(ProductGallery); ok {
		slots.Each(func(i int, img *goquery.Selection) {
			image, ok := p.ImageAt(i)
			if !ok {
				return
			}

			alt := image.Alt
			if alt == "" {
				alt = p.Name
			}

			img.SetAttr("src", image.Src)
			img.SetAttr("alt", alt)
			img.SetAttr("title", alt)
			if image.Thumb != "" {
				img.SetAttr("data-thumb-image", image.Thumb)
			}
			if image.Src != "" {
				img.SetAttr("data-full-image", image.Src)
			}
			if width, ok := img.Attr("width"); ok && width != "" && width != "0" {
				img.SetAttr("srcset", image.Src+" "+strings.TrimSpace(width)+"w")
			}
		})
	}

	first := p.Images[0]
	b.setAttr(OGImage, "content", first.Src)
	b.setAttr(ItemImage, "href", first.Src)
}

// PriceHTML renders the WooCommerce price block. A product with an original
// price gets the struck-through/inserted pair with screen-reader text.
func PriceHTML(p *domain.Product) string {
	symbol := html.EscapeString(p.Currency())
	price := html.EscapeString(p.PriceText())

	if !p.OnSale() {
		return amountHTML(symbol, price)
	}

	original := html.EscapeString(p.OriginalPriceText())

	var sb strings.Builder
	sb.WriteString(`<del aria-hidden="true">`)
	sb.WriteString(amountHTML(symbol, original))
	sb.WriteString(`</del> <span class="screen-reader-text">Original price was: `)
	sb.WriteString(symbol + original)
	sb.WriteString(`.</span><ins aria-hidden="true">`)
	sb.WriteString(amountHTML(symbol, price))
	sb.WriteString(`</ins><span class="screen-reader-text">Current price is: `)
	sb.WriteString(symbol + price)
	sb.WriteString(`.</span>`)
	return sb.String()
}

func amountHTML(symbol, amount string) string {
	return `<span class="woocommerce-Price-amount amount"><bdi><span class="woocommerce-Price-currencySymbol">` +
		symbol + `</span>` + amount + `</bdi></span>`
}

// RenderFAQ fills #dynamic-product-faq with a definition list.
func RenderFAQ(b *Binding, faqs []domain.FAQ) {
	sel, ok := b.Get(ProductFAQ)
	if !ok || len(faqs) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(`<dl class="product-faq">`)
	for _, faq := range faqs {
		sb.WriteString(`<dt class="product-faq__question">`)
		sb.WriteString(html.EscapeString(faq.Question))
		sb.WriteString(`</dt><dd class="product-faq__answer">`)
		sb.WriteString(html.EscapeString(faq.Answer))
		sb.WriteString(`</dd>`)
	}
	sb.WriteString(`</dl>`)
	sel.SetHtml(sb.String())
}
