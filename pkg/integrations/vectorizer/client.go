package vectorizer

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/codegraph/pkg/buildinfo"
	"github.com/matzehuels/codegraph/pkg/cache"
	cgerrors "github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/integrations"
)

// Graph views served by the backend.
const (
	ViewFunctions  = "functions"
	ViewComponents = "components"
)

// Query defaults.
const (
	DefaultThreshold = 0.5
	DefaultLimit     = 200
	MaxLimit         = 5000
)

// Query holds the parameters of one graph fetch.
type Query struct {
	Project   string
	View      string
	Threshold float64  // similarity cutoff in [0, 1]
	Limit     int      // max node count; 0 means DefaultLimit
	Languages []string // optional filter
}

// WithDefaults returns q with empty fields defaulted.
func (q Query) WithDefaults() Query {
	if q.View == "" {
		q.View = ViewFunctions
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	return q
}

// Validate checks q after defaults have been applied.
func (q Query) Validate() error {
	if err := cgerrors.ValidateProjectID(q.Project); err != nil {
		return err
	}
	if q.View != ViewFunctions && q.View != ViewComponents {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "unknown view %q (want %s or %s)", q.View, ViewFunctions, ViewComponents)
	}
	if q.Threshold < 0 || q.Threshold > 1 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "threshold %g out of range [0, 1]", q.Threshold)
	}
	if q.Limit < 1 || q.Limit > MaxLimit {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "limit %d out of range [1, %d]", q.Limit, MaxLimit)
	}
	for _, l := range q.Languages {
		if err := cgerrors.ValidateLanguage(l); err != nil {
			return err
		}
	}
	return nil
}

// Client fetches graphs from one backend.
type Client struct {
	*integrations.Client
	base  string
	keyer cache.Keyer
}

// Options configures [NewClient].
type Options struct {
	BaseURL  string
	Token    string        // optional bearer token
	Cache    cache.Cache   // nil disables caching
	CacheTTL time.Duration // 0 keeps entries until cleared
}

// NewClient returns a client for the backend at opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	if err := cgerrors.ValidateURL(opts.BaseURL); err != nil {
		return nil, err
	}
	base := strings.TrimRight(opts.BaseURL, "/")

	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": buildinfo.UserAgent(),
	}
	if opts.Token != "" {
		headers["Authorization"] = "Bearer " + opts.Token
	}

	return &Client{
		Client: integrations.NewClient(opts.Cache, "", opts.CacheTTL, headers),
		base:   base,
		keyer:  cache.NewScopedKeyer(cache.NewDefaultKeyer(), base+"|"),
	}, nil
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.base }

// URL returns the request URL for q.
func (c *Client) URL(q Query) string {
	v := url.Values{}
	v.Set("threshold", strconv.FormatFloat(q.Threshold, 'f', -1, 64))
	v.Set("limit", strconv.Itoa(q.Limit))
	if len(q.Languages) > 0 {
		v.Set("languages", strings.Join(q.Languages, ","))
	}
	return fmt.Sprintf("%s/api/projects/%s/graph/%s?%s",
		c.base, url.PathEscape(q.Project), url.PathEscape(q.View), v.Encode())
}

// FetchGraph returns the graph for q, from cache unless refresh is set.
func (c *Client) FetchGraph(ctx context.Context, q Query, refresh bool) (graph.RawGraph, error) {
	q = q.WithDefaults()
	if err := q.Validate(); err != nil {
		return graph.RawGraph{}, err
	}

	key := c.keyer.FetchKey(q.Project, q.View, cache.FetchKeyOpts{
		Threshold: q.Threshold,
		Limit:     q.Limit,
		Languages: q.Languages,
	})
	reqURL := c.URL(q)
	headers := map[string]string{"X-Request-ID": uuid.NewString()}

	validate := func(b []byte) error {
		_, err := graph.UnmarshalRaw(b)
		return err
	}
	data, err := c.Cached(ctx, key, refresh, validate, func() ([]byte, error) {
		return c.GetBytes(ctx, reqURL, headers)
	})
	if err != nil {
		return graph.RawGraph{}, err
	}
	return graph.UnmarshalRaw(data)
}
