package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type Image struct {
	Src   string `json:"src"`
	Thumb string `json:"thumb,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

type Review struct {
	Rating  float64 `json:"rating"` // 1..5
	Author  string  `json:"author"`
	Date    string  `json:"date"`
	Comment string  `json:"comment"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Product is the storefront view of a backend product.
type Product struct {
	ID                     string           `json:"_id,omitempty"`
	Name                   string           `json:"name"`
	Slug                   string           `json:"slug"`
	ArticleNumber          string           `json:"articleNumber,omitempty"`
	Price                  decimal.Decimal  `json:"price"`
	OriginalPrice          *decimal.Decimal `json:"originalPrice,omitempty"`
	CurrencySymbol         string           `json:"currencySymbol,omitempty"`
	Designer               string           `json:"designer,omitempty"`
	CountryOfOrigin        string           `json:"countryOfOrigin,omitempty"`
	ImporterPackerMarketer string           `json:"importerPackerMarketer,omitempty"`
	Dimensions             string           `json:"dimensions,omitempty"`
	Materials              string           `json:"materials,omitempty"`
	Finish                 string           `json:"finish,omitempty"`
	Description            string           `json:"description,omitempty"`
	Features               string           `json:"features,omitempty"`
	Images                 []Image          `json:"images,omitempty"`
	Reviews                []Review         `json:"reviews,omitempty"`
	FAQs                   []FAQ            `json:"faqs,omitempty"`

	// price texts as sent, when the backend sent strings
	priceText         string
	originalPriceText string
}

// UnmarshalJSON decodes a product and remembers string prices verbatim, so
// "1299.50" is displayed with its trailing zero.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	if err := json.Unmarshal(data, (*plain)(p)); err != nil {
		return fmt.Errorf("failed to decode product: %w", err)
	}

	var raw struct {
		Price         json.RawMessage `json:"price"`
		OriginalPrice json.RawMessage `json:"originalPrice"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode product prices: %w", err)
	}
	p.priceText = quotedText(raw.Price)
	p.originalPriceText = quotedText(raw.OriginalPrice)
	return nil
}

func quotedText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// PriceText is the price as displayed.
func (p *Product) PriceText() string {
	if p.priceText != "" {
		return p.priceText
	}
	return p.Price.String()
}

// OriginalPriceText is the original price as displayed, empty when absent.
func (p *Product) OriginalPriceText() string {
	if p.OriginalPrice == nil {
		return ""
	}
	if p.originalPriceText != "" {
		return p.originalPriceText
	}
	return p.OriginalPrice.String()
}

const DefaultCurrencySymbol = "$"

// Currency returns the product currency symbol, "$" when the backend sent none.
func (p *Product) Currency() string {
	if p.CurrencySymbol == "" {
		return DefaultCurrencySymbol
	}
	return p.CurrencySymbol
}

// OnSale reports whether a struck-through original price has to be shown.
// A zero original price counts as absent.
func (p *Product) OnSale() bool {
	return p.OriginalPrice != nil && !p.OriginalPrice.IsZero()
}

// ImageAt returns the image at index i and whether it exists.
func (p *Product) ImageAt(i int) (Image, bool) {
	if i < 0 || i >= len(p.Images) {
		return Image{}, false
	}
	return p.Images[i], true
}
