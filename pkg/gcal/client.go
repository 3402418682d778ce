package gcal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/dmitrymomot/briefly/pkg/googleauth"
	"github.com/dmitrymomot/briefly/pkg/ratelimit"
	"github.com/dmitrymomot/briefly/pkg/resilience"
)

// Calendar is the subset of Google calendar-list metadata the product
// needs to let an owner pick which calendar to watch.
type Calendar struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	TimeZone string `json:"time_zone,omitempty"`
	Primary  bool   `json:"primary"`
}

// Client lists calendar metadata on behalf of a connected owner. Every
// call goes through the per-owner pacer and the retrying invoker, so
// quota pushback from Google surfaces as a classified error instead of
// a raw transport failure.
type Client struct {
	tokens  TokenProvider
	pacer   *ratelimit.Bucket
	log     *slog.Logger
	httpc   *http.Client
	retry   []resilience.Option
	apiOpts []option.ClientOption
}

// Option configures a Client.
type Option func(*Client)

// WithPacer replaces the default outbound token bucket.
func WithPacer(pacer *ratelimit.Bucket) Option {
	return func(c *Client) {
		if pacer != nil {
			c.pacer = pacer
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRetryOptions overrides the invoker defaults for Google API calls.
func WithRetryOptions(opts ...resilience.Option) Option {
	return func(c *Client) { c.retry = opts }
}

// WithHTTPClient replaces the HTTP client for non-discovery endpoints
// like userinfo. Tests inject an intercepting transport here.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpc = client
		}
	}
}

// WithClientOptions appends google-api client options, e.g. an endpoint
// override in tests.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(c *Client) { c.apiOpts = append(c.apiOpts, opts...) }
}

// New creates a calendar metadata client on top of the token provider.
func New(tokens TokenProvider, opts ...Option) *Client {
	c := &Client{
		tokens: tokens,
		// Calendar API user quota is ~10 qps; stay comfortably under it.
		pacer: ratelimit.NewBucket(5, 10),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) httpClient() *http.Client {
	if c.httpc != nil {
		return c.httpc
	}
	return http.DefaultClient
}

// withReauth runs call and, when the provider rejects the access token,
// forces one refresh and retries the call once. Google can revoke an
// access token server-side well before its recorded expiry, so the local
// expiry check inside EnsureAccessToken cannot catch this case. A second
// rejection means the whole grant is gone and the owner must reconnect.
func withReauth[T any](ctx context.Context, c *Client, ownerID string, call func(context.Context) (T, error)) (T, error) {
	out, err := call(ctx)
	if err == nil || resilience.Classify(err).Class != resilience.ClassUnauthorized {
		return out, err
	}

	var zero T
	if _, refreshErr := c.tokens.RefreshAccessToken(ctx, ownerID); refreshErr != nil {
		return zero, refreshErr
	}

	out, err = call(ctx)
	if err != nil && resilience.Classify(err).Class == resilience.ClassUnauthorized {
		return zero, resilience.Permanent(errors.Join(googleauth.ErrReauthorizationRequired, err))
	}
	return out, err
}

func (c *Client) service(ctx context.Context, ownerID string) (*calendar.Service, error) {
	ts := &ownerTokenSource{ctx: ctx, tokens: c.tokens, ownerID: ownerID}
	apiOpts := append([]option.ClientOption{option.WithTokenSource(ts)}, c.apiOpts...)
	return calendar.NewService(ctx, apiOpts...)
}

// ListCalendars returns the owner's calendar list, following pagination.
func (c *Client) ListCalendars(ctx context.Context, ownerID string) ([]Calendar, error) {
	if err := c.pacer.Wait(ctx, ownerID); err != nil {
		return nil, err
	}

	svc, err := c.service(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return withReauth(ctx, c, ownerID, func(ctx context.Context) ([]Calendar, error) {
		return resilience.Do(ctx, func(ctx context.Context) ([]Calendar, error) {
			var out []Calendar
			pageToken := ""
			for {
				call := svc.CalendarList.List().Context(ctx).MaxResults(100)
				if pageToken != "" {
					call = call.PageToken(pageToken)
				}
				page, err := call.Do()
				if err != nil {
					return nil, err
				}
				for _, item := range page.Items {
					out = append(out, Calendar{
						ID:       item.Id,
						Summary:  item.Summary,
						TimeZone: item.TimeZone,
						Primary:  item.Primary,
					})
				}
				if page.NextPageToken == "" {
					c.log.DebugContext(ctx, "calendar list fetched",
						slog.String("owner_id", ownerID), slog.Int("count", len(out)))
					return out, nil
				}
				pageToken = page.NextPageToken
			}
		}, c.retry...)
	})
}
