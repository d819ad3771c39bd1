package aliexpress

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"reviewking/internal/domain"
)

// Reviews recovered from raw markup are capped: DOM scraping is a
// degraded mode, not a pagination source.
const domParseCap = 20

const minDOMTextLen = 5

// parseReviewDOM scrapes review cards out of the product page markup.
// Selectors match on class-name fragments because the upstream
// obfuscates full class names per build.
func parseReviewDOM(page []byte, productID string) ([]domain.Review, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse product page markup: %w", err)
	}

	today := time.Now().Format("2006-01-02")
	var reviews []domain.Review
	doc.Find(`[class*="list"][class*="itemWrap"]`).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= domParseCap {
			return false
		}

		text := strings.TrimSpace(card.Find(`[class*="itemReview"]`).First().Text())
		if utf8.RuneCountInString(text) < minDOMTextLen {
			return true
		}

		name := "Customer"
		if info := strings.TrimSpace(card.Find(`[class*="itemInfo"]`).First().Text()); info != "" {
			// The info block packs "name | date | sku" into one string.
			name = strings.TrimSpace(strings.SplitN(info, "|", 2)[0])
			if name == "" {
				name = "Customer"
			}
		}

		rating := 100
		if stars := card.Find(`[class*="starreviewfilled"]`).Length(); stars > 0 {
			rating = stars * 20
		}

		var images []string
		card.Find("img").Each(func(_ int, img *goquery.Selection) {
			src, ok := img.Attr("src")
			if !ok || src == "" {
				src, _ = img.Attr("data-src")
			}
			if strings.Contains(src, "aliexpress") && strings.Contains(src, "/kf/") {
				images = append(images, src)
			}
		})
		if images == nil {
			images = []string{}
		}

		reviews = append(reviews, domain.Review{
			ID:           fmt.Sprintf("dom_%s_%d", productID, i),
			Platform:     domain.PlatformAliExpress,
			ProductID:    productID,
			ReviewerName: name,
			Text:         text,
			Rating:       rating,
			Date:         today,
			Country:      "Unknown",
			Verified:     true,
			Images:       images,
			HelpfulCount: 0,
			Position:     i + 1,
		})
		return true
	})
	return reviews, nil
}
