package view

import (
	"fmt"
	"html"
	"strings"
	"time"

	"furnistor/storefront/internal/domain"
)

var reviewDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseReviewDate accepts the date shapes the backend emits.
func parseReviewDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range reviewDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ApplyReviews replaces the review list and the rating summary.
func ApplyReviews(b *Binding, reviews []domain.Review) {
	list, ok := b.Get(ProductReviews)
	if !ok {
		return
	}

	list.SetHtml(ReviewsHTML(reviews))

	if summary, ok := b.Get(ProductReviewRating); ok {
		summary.SetHtml(SummaryHTML(domain.Summarize(reviews)))
	}
}

// ReviewsHTML renders one <li> per review, alternating even/odd from the first.
func ReviewsHTML(reviews []domain.Review) string {
	var sb strings.Builder
	for i, review := range reviews {
		parity := "even"
		if i%2 == 1 {
			parity = "odd"
		}
		n := i + 1
		rating := domain.FormatNumber(review.Rating)

		fmt.Fprintf(&sb, `<li class="review %s thread-%s depth-1" id="li-comment-%d">`, parity, parity, n)
		fmt.Fprintf(&sb, `<div id="comment-%d" class="comment_container"><div class="comment-text">`, n)
		fmt.Fprintf(&sb, `<div class="star-rating" role="img" aria-label="Rated %s out of 5">`, rating)
		fmt.Fprintf(&sb, `<span style="width:%s%%">Rated <strong class="rating">%s</strong> out of 5</span></div>`,
			domain.FormatNumber(domain.StarWidth(review.Rating)), rating)
		sb.WriteString(`<p class="meta">`)
		fmt.Fprintf(&sb, `<strong class="woocommerce-review__author">%s</strong>`, html.EscapeString(review.Author))
		sb.WriteString(`<span class="woocommerce-review__dash">–</span>`)
		sb.WriteString(reviewTimeHTML(review.Date))
		sb.WriteString(`</p>`)
		fmt.Fprintf(&sb, `<div class="description"><p>%s</p></div>`, html.EscapeString(review.Comment))
		sb.WriteString(`</div></div></li>`)
	}
	return sb.String()
}

// reviewTimeHTML shows the long en-US date with an ISO datetime attribute.
// Unparseable dates are shown as sent, without the attribute.
func reviewTimeHTML(raw string) string {
	t, ok := parseReviewDate(raw)
	if !ok {
		return `<time class="woocommerce-review__published-date">` + html.EscapeString(raw) + `</time>`
	}
	return fmt.Sprintf(`<time class="woocommerce-review__published-date" datetime="%s">%s</time>`,
		t.Format("2006-01-02T15:04:05.000Z"), t.Format("January 2, 2006"))
}

// SummaryHTML renders the average rating block.
func SummaryHTML(s domain.ReviewSummary) string {
	plural := "s"
	if s.Count == 1 {
		plural = ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<div class="star-rating" role="img" aria-label="Rated %s out of 5" style="font-size: 1.2em;">`, s.Display())
	fmt.Fprintf(&sb, `<span style="width:%s%%">Rated <strong class="rating">%s</strong> out of 5</span></div>`,
		domain.FormatNumber(s.StarWidth()), s.Display())
	fmt.Fprintf(&sb, `<p style="margin-top: 0.5em; color: #646360;">Based on %d review%s</p>`, s.Count, plural)
	return sb.String()
}
