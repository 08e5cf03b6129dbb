package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"

	"tweetsweep/internal/domain"
)

const maxScriptBytes = 16 << 20

// Result is whatever discovery accumulated. Completeness is the caller's
// responsibility to check: an empty bearer or a missing operation means the
// corresponding command stays disabled, never that Discover failed. Page is
// the fetched base document, kept so callers can also resolve in-page state
// (the handle fallback) without a second fetch.
type Result struct {
	Bearer    string
	Endpoints *domain.Registry
	Page      []byte
}

func (r Result) Complete(requiredOps []string) bool {
	return r.Bearer != "" && r.Endpoints.HasAll(requiredOps...)
}

// Missing names what keeps the result incomplete, for status messages.
func (r Result) Missing(requiredOps []string) []string {
	var missing []string
	if r.Bearer == "" {
		missing = append(missing, "bearer credential")
	}
	for _, op := range requiredOps {
		if !r.Endpoints.Has(op) {
			missing = append(missing, "operation "+op)
		}
	}
	return missing
}

// Resolver locates the platform's private API surface inside the client code
// the platform itself delivers: the bearer credential and the table of named
// GraphQL operations.
type Resolver struct {
	client       *http.Client
	baseURL      string
	cookieHeader string
	requiredOps  []string
	logger       *log.Logger
}

func NewResolver(client *http.Client, baseURL string, cookieHeader string, requiredOps []string, logger *log.Logger) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Resolver{
		client:       client,
		baseURL:      strings.TrimRight(baseURL, "/"),
		cookieHeader: cookieHeader,
		requiredOps:  requiredOps,
		logger:       logger,
	}
}

// Discover fetches the base document, scans its inline scripts, then fetches
// and scans external script sources one at a time. It never returns an error:
// any sub-step failure leaves the corresponding field empty.
//
// External sources are ordered so the platform's main application bundle is
// scanned first; discovery data is empirically concentrated there, though this
// is a heuristic, not a structural guarantee. Scanning stops as soon as the
// bearer and every required operation have been found, so later sources are
// never fetched at all.
func (r *Resolver) Discover(ctx context.Context) Result {
	state := newScanState()

	page, err := r.fetchText(ctx, r.baseURL+"/")
	if err != nil {
		r.logger.Debug("base document fetch failed", "err", err)
		return Result{Bearer: state.bearer, Endpoints: state.registry}
	}

	inline, external := collectScripts(page, r.baseURL)
	for _, text := range inline {
		state.scanText(text)
	}

	orderMainBundleFirst(external)

	for _, src := range external {
		if state.complete(r.requiredOps) {
			break
		}

		text, err := r.fetchText(ctx, src)
		if err != nil {
			r.logger.Debug("script source skipped", "url", src, "err", err)
			continue
		}
		state.scanText(string(text))
	}

	return Result{Bearer: state.bearer, Endpoints: state.registry, Page: page}
}

func (r *Resolver) fetchText(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if r.cookieHeader != "" {
		req.Header.Set("Cookie", r.cookieHeader)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScriptBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

// collectScripts walks the document and partitions script elements into inline
// text (available without further I/O) and external source URLs, resolved
// against the base URL.
func collectScripts(page []byte, baseURL string) (inline []string, external []string) {
	base, baseErr := url.Parse(baseURL)

	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return nil, nil
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			src := ""
			for _, attr := range n.Attr {
				if attr.Key == "src" {
					src = attr.Val
					break
				}
			}

			if src == "" {
				var text strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						text.WriteString(c.Data)
					}
				}
				if text.Len() > 0 {
					inline = append(inline, text.String())
				}
			} else if baseErr == nil {
				if ref, err := url.Parse(src); err == nil {
					external = append(external, base.ResolveReference(ref).String())
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return inline, external
}

func orderMainBundleFirst(srcs []string) {
	sort.SliceStable(srcs, func(i, j int) bool {
		return strings.Contains(srcs[i], "main.") && !strings.Contains(srcs[j], "main.")
	})
}
