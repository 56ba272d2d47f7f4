// Package pipeline orchestrates bulk-archive ingestion: discovering archives
// on the grant data site, fetching and unpacking them, running extraction,
// and persisting the results.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/openipdata/grantfeed/internal/config"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/pkg/errors"
)

// Archive is one discovered bulk file.
type Archive struct {
	// URL is the absolute download URL.
	URL string

	// Year is the listing page the archive appeared under.
	Year string

	// Name is the file name portion of the URL.
	Name string
}

// Discovery walks the per-year listing pages of the bulk data site and
// collects the weekly archive links.
type Discovery struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     logging.Logger
}

// NewDiscovery builds a Discovery against the configured source.
func NewDiscovery(cfg config.SourceConfig, logger logging.Logger) *Discovery {
	return &Discovery{
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		logger:     logger.Named("discovery"),
	}
}

// archiveLink reports whether href names a weekly grant archive.  All three
// generations share the .zip suffix; the prefix identifies the dialect era.
func archiveLink(href string) bool {
	name := strings.ToLower(path.Base(href))
	if !strings.HasSuffix(name, ".zip") {
		return false
	}
	return strings.HasPrefix(name, "ipg") ||
		strings.HasPrefix(name, "pg") ||
		strings.HasPrefix(name, "pftaps")
}

// ListYear fetches one year's listing page and returns its archives sorted by
// file name, which for every dialect era sorts chronologically.
func (d *Discovery) ListYear(ctx context.Context, year string) ([]Archive, error) {
	pageURL := fmt.Sprintf("%s/%s/", d.baseURL, year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDiscoveryFailed, "failed to build listing request")
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDiscoveryFailed, "failed to fetch listing page").WithDetail(pageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeDiscoveryFailed,
			fmt.Sprintf("listing page returned status %d", resp.StatusCode)).WithDetail(pageURL)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDiscoveryFailed, "invalid listing url")
	}

	archives, err := parseListing(base, year, resp.Body)
	if err != nil {
		return nil, err
	}

	d.logger.Info("year listing discovered",
		logging.String("year", year),
		logging.Int("archives", len(archives)),
	)
	return archives, nil
}

// parseListing extracts archive links from a listing page.  Relative hrefs
// are resolved against base; duplicates (listing pages often link each file
// twice) are collapsed.
func parseListing(base *url.URL, year string, body io.Reader) ([]Archive, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDiscoveryFailed, "failed to parse listing page")
	}

	seen := make(map[string]struct{})
	var archives []Archive

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" || !archiveLink(attr.Val) {
					continue
				}
				ref, err := url.Parse(attr.Val)
				if err != nil {
					continue
				}
				abs := base.ResolveReference(ref).String()
				if _, dup := seen[abs]; dup {
					continue
				}
				seen[abs] = struct{}{}
				archives = append(archives, Archive{
					URL:  abs,
					Year: year,
					Name: path.Base(abs),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	sort.Slice(archives, func(i, j int) bool { return archives[i].Name < archives[j].Name })
	return archives, nil
}
