package view

import (
	"github.com/PuerkitoBio/goquery"

	"furnistor/storefront/internal/locator"
)

// RewriteStagingLinks points every anchor aimed at the staging host to its
// local mirror and drops any click handler on it, so the browser navigates to
// the local page directly. It returns the number of anchors rewritten.
func RewriteStagingLinks(doc *goquery.Document, stagingHost string) int {
	if stagingHost == "" {
		return 0
	}

	rewritten := 0
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		target, ok := locator.RewriteStagingURL(href, stagingHost)
		if !ok {
			return
		}
		a.SetAttr("href", target)
		a.RemoveAttr("onclick")
		a.RemoveAttr("target")
		rewritten++
	})
	return rewritten
}
