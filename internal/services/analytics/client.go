package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"TraderExplorer/internal/viewmodel"
	"TraderExplorer/pkg/config"
	xhttp "TraderExplorer/pkg/http"
)

// Client reads snapshots from the analytics service.
// It performs plain GETs with no body, auth or custom headers, and never retries.
type Client struct {
	baseURL string
	client  *xhttp.Client
	strict  bool
}

// NewClient builds a client from config. A zero upstream timeout means none.
func NewClient(cfg *config.Config) *Client {
	return New(cfg.Upstream.BaseURL, cfg.Upstream.StrictDecode, xhttp.WithTimeout(cfg.Upstream.Timeout))
}

// New builds a client for baseURL. With strict set, decoded payloads are also
// checked against their validate tags.
func New(baseURL string, strict bool, opts ...xhttp.ClientOption) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  xhttp.NewClient(opts...),
		strict:  strict,
	}
}

// BaseURL returns the service root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Fetch implements viewmodel.Fetcher. Errors are always *viewmodel.FetchError.
func (c *Client) Fetch(ctx context.Context, req viewmodel.Request, dest any) error {
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + req.Path,
		QueryParams: req.Query,
	}, dest)
	if err != nil {
		return classify(err)
	}

	if c.strict {
		if err := xhttp.ValidateStruct(ctx, dest); err != nil {
			return &viewmodel.FetchError{Kind: viewmodel.KindDecode, Err: fmt.Errorf("invalid payload: %s", describe(err))}
		}
	}
	return nil
}

// describe flattens validation failures into one line, e.g. "Label is required; Count must be ...".
func describe(err error) string {
	verrs := xhttp.ValidationErrors(err)
	msgs := make([]string, 0, len(verrs))
	for _, v := range verrs {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

func classify(err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return &viewmodel.FetchError{Kind: viewmodel.KindHTTP, Status: se.Status, Err: err}
	}
	var de *xhttp.DecodeError
	if errors.As(err, &de) {
		return &viewmodel.FetchError{Kind: viewmodel.KindDecode, Err: de.Err}
	}
	return &viewmodel.FetchError{Kind: viewmodel.KindNetwork, Err: err}
}

var _ viewmodel.Fetcher = (*Client)(nil)
