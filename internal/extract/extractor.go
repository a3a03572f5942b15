// Package extract turns raw marketplace search-page markup into filtered,
// deduplicated listings. The source markup is not under our control and
// drifts over time, so extraction runs an ordered list of strategies and
// degrades to cruder ones instead of breaking on a single dead selector.
package extract

import (
	"io"
	"net/url"
	"strings"

	"resalescout/internal/price"
	"resalescout/logger"

	"github.com/PuerkitoBio/goquery"
)

// Options configures an Extractor
type Options struct {
	// Strategies in priority order; DefaultStrategies() when empty
	Strategies []Strategy

	// BaseURL resolves relative listing links
	BaseURL string

	// MaxPrice is the purchase-price ceiling; listings above it are dropped
	MaxPrice float64

	// MaxCount caps the number of listings per pass to bound oracle cost
	MaxCount int

	// TitleDenylist replaces the default boilerplate/accessory denylist
	TitleDenylist []string
}

// defaultTitleDenylist drops navigation boilerplate, placeholder rows and
// accessory/part noise that would waste an oracle call.
var defaultTitleDenylist = []string{
	"shop on ebay",
	"ergebnisse",
	"results matching",
	"weiter zur seite",
	"next page",
	"feedback",
	"anzeige",
	"case",
	"hülle",
	"cable",
	"kabel",
	"manual",
	"anleitung",
	"for parts",
	"defekt",
	"ersatzteil",
}

// Extractor applies extraction strategies in priority order and runs the
// shared noise filters over whichever strategy produced results.
type Extractor struct {
	strategies []Strategy
	baseURL    *url.URL
	maxPrice   float64
	maxCount   int
	denylist   []string
	log        *logger.Logger
}

// New creates an Extractor from options
func New(opts Options) *Extractor {
	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	denylist := opts.TitleDenylist
	if len(denylist) == 0 {
		denylist = defaultTitleDenylist
	}
	var base *url.URL
	if opts.BaseURL != "" {
		base, _ = url.Parse(opts.BaseURL)
	}
	return &Extractor{
		strategies: strategies,
		baseURL:    base,
		maxPrice:   opts.MaxPrice,
		maxCount:   opts.MaxCount,
		denylist:   denylist,
		log:        logger.ForCycle(),
	}
}

// Extract parses markup and returns filtered listings. Strategies run in
// priority order; the first one whose candidates survive filtering decides
// the pass. Markup with no matches at all yields an empty slice, never an
// error.
func (e *Extractor) Extract(markup io.Reader) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(markup)
	if err != nil {
		return nil, err
	}
	return e.ExtractDocument(doc), nil
}

// ExtractDocument is Extract for an already parsed document
func (e *Extractor) ExtractDocument(doc *goquery.Document) []Listing {
	for _, strategy := range e.strategies {
		candidates := strategy.Extract(doc)
		if len(candidates) == 0 {
			continue
		}

		listings := e.filter(candidates)
		if len(listings) == 0 {
			// Everything this strategy found was noise; let a cruder
			// strategy try the page.
			continue
		}

		e.log.Debug().
			Str("strategy", strategy.Name()).
			Int("candidates", len(candidates)).
			Int("listings", len(listings)).
			Msg("Extraction strategy matched")
		return listings
	}
	return nil
}

// filter applies the shared noise filters in order: identifier resolution
// and dedup, title denylist, price parse and ceiling, cap enforcement.
// Image resolution already happened per strategy and is best-effort.
func (e *Extractor) filter(candidates []Candidate) []Listing {
	seen := make(map[string]struct{}, len(candidates))
	var listings []Listing

	for _, c := range candidates {
		if e.maxCount > 0 && len(listings) >= e.maxCount {
			break
		}

		if c.Link == "" {
			continue
		}
		identifier, err := CanonicalURL(c.Link, e.baseURL)
		if err != nil || identifier == "" {
			continue
		}
		if _, dup := seen[identifier]; dup {
			continue
		}

		if !e.acceptTitle(c.Title) {
			continue
		}

		amount, err := price.Parse(c.PriceText)
		if err != nil {
			continue
		}
		if e.maxPrice > 0 && amount > e.maxPrice {
			continue
		}

		seen[identifier] = struct{}{}
		listings = append(listings, Listing{
			Identifier: identifier,
			Title:      strings.TrimSpace(c.Title),
			Price:      amount,
			ImageURL:   c.ImageURL,
		})
	}
	return listings
}

func (e *Extractor) acceptTitle(title string) bool {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return false
	}
	for _, blocked := range e.denylist {
		if strings.Contains(title, blocked) {
			return false
		}
	}
	return true
}
