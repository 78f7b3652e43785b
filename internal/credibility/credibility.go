// Package credibility scores and ranks web sources before they are
// allowed to feed the writing stage. A source earns points for being
// live, for sitting on an .edu/.gov domain, and for carrying author,
// date, and reference signals; the score maps onto coarse tiers.
package credibility

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonkmatsumo/deck-forge/internal/deck"
)

// DefaultTimeout bounds each page probe. Timeouts are treated like any
// other transport failure: the source is dead, never an error.
const DefaultTimeout = 5 * time.Second

// DefaultUserAgent mimics a desktop browser; plenty of sites answer
// bots with 403.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultWorkers bounds concurrent page probes per ranking batch.
const DefaultWorkers = 4

// Score weights. Base is awarded for any live page; each signal adds on
// top, capped at 100.
const (
	scoreLive       = 20
	scoreDomain     = 20
	scoreAuthor     = 20
	scoreDate       = 20
	scoreReferences = 20
	scoreCap        = 100
)

// Tier cutoffs over the numeric score for live pages.
const (
	tierSMin = 80
	tierAMin = 50
)

var referenceKeywords = []string{"references", "bibliography", "works cited", "sources"}

// Options configures a Validator.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Workers   int
}

// DefaultOptions returns the standard probe configuration.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Workers:   DefaultWorkers,
	}
}

// Validator fetches and scores source URLs.
type Validator struct {
	client    *http.Client
	userAgent string
	workers   int
	log       *zap.Logger
}

// NewValidator creates a validator with the given options. A nil opts
// uses DefaultOptions.
func NewValidator(opts *Options, log *zap.Logger) *Validator {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		workers:   opts.Workers,
		log:       log,
	}
}

// NormalizeURL strips the query string and fragment, keeping only
// scheme, host, and path. Tracking parameters never distinguish
// sources. Normalizing an already-normalized URL is a no-op.
func NormalizeURL(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	clean := url.URL{Scheme: parsed.Scheme, Host: parsed.Host, Path: parsed.Path}
	return clean.String(), nil
}

// Validate performs the full health check and scoring for one URL.
// It never returns an error: any transport or parse failure marks the
// source dead with a zero score.
func (v *Validator) Validate(ctx context.Context, rawURL string) deck.ValidationResult {
	result := deck.ValidationResult{
		URL:    rawURL,
		Status: deck.StatusDead,
		Score:  0,
		Tier:   deck.TierC,
	}

	clean, err := NormalizeURL(rawURL)
	if err != nil {
		v.log.Debug("unparseable source url", zap.String("url", rawURL), zap.Error(err))
		return result
	}
	result.URL = clean

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, clean, nil)
	if err != nil {
		return result
	}
	req.Header.Set("User-Agent", v.userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Debug("source fetch failed", zap.String("url", clean), zap.Error(err))
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		v.log.Debug("source not live",
			zap.String("url", clean), zap.Int("status", resp.StatusCode))
		return result
	}

	result.Status = deck.StatusLive

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		// Live but unreadable: score it on domain signal alone.
		doc = nil
	}
	if doc != nil {
		result.Meta = extractMeta(doc)
	}

	result.Score = score(hostOf(clean), result.Meta)
	result.Tier = tierFor(result.Score)
	return result
}

// Rank scores every hit and returns the batch stable-sorted by score
// descending; equal scores keep their input order, so output is
// deterministic regardless of fetch completion order. Probes run on a
// bounded worker pool.
func (v *Validator) Rank(ctx context.Context, hits []deck.SearchHit) []deck.RankedHit {
	ranked := make([]deck.RankedHit, len(hits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for i, hit := range hits {
		g.Go(func() error {
			ranked[i] = deck.RankedHit{
				SearchHit:  hit,
				Validation: v.Validate(gctx, hit.URL),
			}
			return nil
		})
	}
	_ = g.Wait() // probes never return errors

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Validation.Score > ranked[j].Validation.Score
	})
	return ranked
}

// FilterCredible keeps only tier S and A hits. An empty result is a
// valid outcome meaning no credible source was found.
func FilterCredible(ranked []deck.RankedHit) []deck.RankedHit {
	var kept []deck.RankedHit
	for _, r := range ranked {
		if r.Validation.Tier == deck.TierS || r.Validation.Tier == deck.TierA {
			kept = append(kept, r)
		}
	}
	return kept
}

// extractMeta pulls author, date, and reference signals out of a page.
func extractMeta(doc *goquery.Document) deck.SourceMeta {
	var meta deck.SourceMeta

	if author, ok := doc.Find(`meta[name="author"]`).Attr("content"); ok {
		meta.Author = strings.TrimSpace(author)
	} else if author, ok := doc.Find(`meta[property="article:author"]`).Attr("content"); ok {
		meta.Author = strings.TrimSpace(author)
	}

	if date, ok := doc.Find(`meta[name="date"]`).Attr("content"); ok {
		meta.Date = strings.TrimSpace(date)
	} else if date, ok := doc.Find(`meta[property="article:published_time"]`).Attr("content"); ok {
		meta.Date = strings.TrimSpace(date)
	} else if sel := doc.Find("time").First(); sel.Length() > 0 {
		if dt, ok := sel.Attr("datetime"); ok {
			meta.Date = strings.TrimSpace(dt)
		} else {
			meta.Date = strings.TrimSpace(sel.Text())
		}
	}

	doc.Find("h1, h2, h3, h4").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		heading := strings.ToLower(sel.Text())
		for _, kw := range referenceKeywords {
			if strings.Contains(heading, kw) {
				meta.HasReferences = true
				return false
			}
		}
		return true
	})

	return meta
}

// score computes the credibility score for a live page.
func score(host string, meta deck.SourceMeta) int {
	s := scoreLive
	if strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".gov") {
		s += scoreDomain
	}
	if meta.Author != "" {
		s += scoreAuthor
	}
	if meta.Date != "" {
		s += scoreDate
	}
	if meta.HasReferences {
		s += scoreReferences
	}
	if s > scoreCap {
		s = scoreCap
	}
	return s
}

// tierFor maps a live page's score onto its tier. Dead sources never
// reach this point; they are tier C regardless of score.
func tierFor(score int) deck.Tier {
	switch {
	case score >= tierSMin:
		return deck.TierS
	case score >= tierAMin:
		return deck.TierA
	default:
		return deck.TierB
	}
}

// hostOf extracts the hostname, ignoring any port.
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
