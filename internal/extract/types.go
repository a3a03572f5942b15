package extract

import "github.com/PuerkitoBio/goquery"

// Listing represents one candidate item surviving extraction and filtering
type Listing struct {
	Identifier string  `json:"identifier"`
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	ImageURL   string  `json:"image_url,omitempty"`
}

// Candidate is a raw extraction result before normalization and filtering
type Candidate struct {
	Link      string
	Title     string
	PriceText string
	ImageURL  string
}

// Strategy locates candidate listings in a page. Strategies are applied in
// priority order; the first one whose candidates survive filtering wins.
type Strategy interface {
	// Name returns the strategy's name for logging
	Name() string

	// Extract scans the document and returns raw candidates
	Extract(doc *goquery.Document) []Candidate
}

// ContainerSelectors describes the markup of one item container layout
type ContainerSelectors struct {
	Item  string
	Title string
	Price string
	Link  string
	Image string
}
