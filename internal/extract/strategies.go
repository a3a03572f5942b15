package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// priceLikeRe matches price-shaped text such as "12,99 €", "EUR 1.234,56"
// or "1,234.56". Used by the fallback strategies to find prices outside
// dedicated price elements.
var priceLikeRe = regexp.MustCompile(`(?:EUR\s*)?\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?\s*(?:€|EUR)|(?:€|EUR)\s*\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?`)

// imageAttrs is the ordered list of attributes checked for a thumbnail:
// direct source first, then lazy-load variants.
var imageAttrs = []string{"src", "data-src", "data-lazy-src"}

// firstImageAttr returns the first non-empty image attribute on the first
// matched element, following the configured attribute order.
func firstImageAttr(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	for _, attr := range imageAttrs {
		if v, ok := sel.First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// elementTitle prefers the title attribute over text content, the same way
// listing pages often carry the full title only in the attribute.
func elementTitle(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	if attr, ok := sel.First().Attr("title"); ok && strings.TrimSpace(attr) != "" {
		return strings.TrimSpace(attr)
	}
	return strings.TrimSpace(sel.First().Text())
}

// ItemContainerStrategy extracts from semantic item containers using a
// fixed selector set. This is the primary strategy: it is the most precise
// and the first to break when the site's markup drifts.
type ItemContainerStrategy struct {
	Selectors ContainerSelectors
}

// NewItemContainerStrategy returns the container strategy for the default
// marketplace search-result layout.
func NewItemContainerStrategy() *ItemContainerStrategy {
	return &ItemContainerStrategy{
		Selectors: ContainerSelectors{
			Item:  "li.s-item",
			Title: ".s-item__title",
			Price: ".s-item__price",
			Link:  "a.s-item__link",
			Image: ".s-item__image-wrapper img, .s-item__image img",
		},
	}
}

func (s *ItemContainerStrategy) Name() string { return "item-container" }

func (s *ItemContainerStrategy) Extract(doc *goquery.Document) []Candidate {
	var candidates []Candidate
	doc.Find(s.Selectors.Item).Each(func(_ int, item *goquery.Selection) {
		link, _ := item.Find(s.Selectors.Link).First().Attr("href")
		candidates = append(candidates, Candidate{
			Link:      strings.TrimSpace(link),
			Title:     elementTitle(item.Find(s.Selectors.Title)),
			PriceText: strings.TrimSpace(item.Find(s.Selectors.Price).First().Text()),
			ImageURL:  firstImageAttr(item.Find(s.Selectors.Image)),
		})
	})
	return candidates
}

// LinkPatternStrategy falls back to any anchor whose href matches an
// item-URL pattern, recovering the price from price-shaped text in the
// anchor's ancestor chain.
type LinkPatternStrategy struct {
	Pattern   *regexp.Regexp
	MaxClimbs int
}

// NewLinkPatternStrategy returns the link-pattern fallback for item detail
// URLs ("/itm/...").
func NewLinkPatternStrategy() *LinkPatternStrategy {
	return &LinkPatternStrategy{
		Pattern:   regexp.MustCompile(`/itm/`),
		MaxClimbs: 4,
	}
}

func (s *LinkPatternStrategy) Name() string { return "link-pattern" }

func (s *LinkPatternStrategy) Extract(doc *goquery.Document) []Candidate {
	var candidates []Candidate
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || !s.Pattern.MatchString(href) {
			return
		}

		title := elementTitle(a)
		container, priceText := s.climbForPrice(a)
		var image string
		if container != nil {
			image = firstImageAttr(container.Find("img"))
		}

		candidates = append(candidates, Candidate{
			Link:      href,
			Title:     title,
			PriceText: priceText,
			ImageURL:  image,
		})
	})
	return candidates
}

// climbForPrice walks up the ancestor chain looking for price-shaped text,
// returning the ancestor it stopped at and the matched text.
func (s *LinkPatternStrategy) climbForPrice(a *goquery.Selection) (*goquery.Selection, string) {
	node := a
	for i := 0; i < s.MaxClimbs; i++ {
		node = node.Parent()
		if node.Length() == 0 {
			return nil, ""
		}
		if match := priceLikeRe.FindString(node.Text()); match != "" {
			return node, match
		}
	}
	return node, ""
}

// PriceProximityStrategy is the last resort: scan for price-shaped text
// anywhere in the page and pair each occurrence with a product link in the
// same container.
type PriceProximityStrategy struct {
	LinkPattern *regexp.Regexp
	MaxClimbs   int
}

// NewPriceProximityStrategy returns the price-proximity fallback.
func NewPriceProximityStrategy() *PriceProximityStrategy {
	return &PriceProximityStrategy{
		LinkPattern: regexp.MustCompile(`/itm/|/p/`),
		MaxClimbs:   4,
	}
}

func (s *PriceProximityStrategy) Name() string { return "price-proximity" }

func (s *PriceProximityStrategy) Extract(doc *goquery.Document) []Candidate {
	var candidates []Candidate
	doc.Find("span, div, p").Each(func(_ int, el *goquery.Selection) {
		own := strings.TrimSpace(el.Clone().Children().Remove().End().Text())
		if own == "" || !priceLikeRe.MatchString(own) {
			return
		}

		node := el
		for i := 0; i < s.MaxClimbs; i++ {
			node = node.Parent()
			if node.Length() == 0 {
				return
			}
			link := node.Find("a[href]").FilterFunction(func(_ int, a *goquery.Selection) bool {
				href, _ := a.Attr("href")
				return s.LinkPattern.MatchString(href)
			}).First()
			if link.Length() == 0 {
				continue
			}

			href, _ := link.Attr("href")
			// Links found this deep are often generic ("zum Angebot");
			// prefer a container heading when present.
			title := strings.TrimSpace(node.Find("h3, h2").First().Text())
			if title == "" {
				title = elementTitle(link)
			}
			candidates = append(candidates, Candidate{
				Link:      strings.TrimSpace(href),
				Title:     title,
				PriceText: priceLikeRe.FindString(own),
				ImageURL:  firstImageAttr(node.Find("img")),
			})
			return
		}
	})
	return candidates
}

// DefaultStrategies returns the built-in strategies in priority order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		NewItemContainerStrategy(),
		NewLinkPatternStrategy(),
		NewPriceProximityStrategy(),
	}
}
