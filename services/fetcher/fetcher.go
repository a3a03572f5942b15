// Package fetcher retrieves raw search-result markup for a query term.
// It owns the search-URL construction (price ceiling and page size are
// embedded as query parameters) and a per-term cooldown so a rate-limited
// term is not hammered again before the block expires.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"resalescout/helpers"
	"resalescout/logger"
	pkgerrors "resalescout/pkg/errors"
	"resalescout/services/cache"
)

// Fetcher is the boundary the orchestrator depends on
type Fetcher interface {
	Fetch(ctx context.Context, term string) (io.Reader, error)
}

// Options configures a PageFetcher
type Options struct {
	SearchURL string
	MaxPrice  float64
	PageSize  int
	Cache     cache.CacheService
	BlockTime time.Duration
}

// PageFetcher fetches marketplace search pages over HTTP
type PageFetcher struct {
	searchURL string
	maxPrice  float64
	pageSize  int
	cache     cache.CacheService
	blockTime time.Duration
	log       *logger.Logger
}

// New creates a PageFetcher
func New(opts Options) *PageFetcher {
	if opts.PageSize <= 0 {
		opts.PageSize = 60
	}
	return &PageFetcher{
		searchURL: opts.SearchURL,
		maxPrice:  opts.MaxPrice,
		pageSize:  opts.PageSize,
		cache:     opts.Cache,
		blockTime: opts.BlockTime,
		log:       logger.ForFetcher(),
	}
}

// BuildSearchURL renders the search URL for a term: newest buy-it-now
// listings below the price ceiling, one page worth of results.
func (f *PageFetcher) BuildSearchURL(term string) (string, error) {
	u, err := url.Parse(f.searchURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("_nkw", term)
	q.Set("_sop", "10")
	q.Set("LH_BIN", "1")
	q.Set("_udhi", strconv.FormatFloat(f.maxPrice, 'f', -1, 64))
	q.Set("_ipg", strconv.Itoa(f.pageSize))
	q.Set("rt", "nc")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch returns the raw markup for one term's search page. A term still
// in cooldown is skipped with a non-retryable error; a fresh rate-limit
// response sets the cooldown before propagating.
func (f *PageFetcher) Fetch(_ context.Context, term string) (io.Reader, error) {
	cooldownKey := "cooldown:" + term

	if f.cache != nil {
		if _, err := f.cache.Get(cooldownKey); err == nil {
			return nil, pkgerrors.New(pkgerrors.ErrorTypeValidation, "fetch",
				fmt.Sprintf("term %q in cooldown for %ds", term, int(f.blockTime/time.Second)), nil)
		}
	}

	searchURL, err := f.BuildSearchURL(term)
	if err != nil {
		return nil, pkgerrors.NewConfiguration("invalid search URL", err)
	}

	body, err := helpers.FetchWithRandomHeaders(searchURL)
	if err != nil {
		var se *pkgerrors.ScoutError
		if errors.As(err, &se) && se.Type == pkgerrors.ErrorTypeRateLimit && f.cache != nil {
			if cacheErr := f.cache.Set(cooldownKey, []byte("1"), f.blockTime); cacheErr != nil {
				f.log.Warn().Err(cacheErr).Str("term", term).Msg("Failed to set fetch cooldown")
			}
		}
		return nil, err
	}
	return body, nil
}
