package games

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	maxRetries       = 3
	httpBackoffBase  = 500 * time.Millisecond
	netBackoffBase   = 300 * time.Millisecond
	maxResponseBytes = 8 * 1024 * 1024
)

// upstreamClient issues authenticated query-language POSTs to the game
// database. Transient failures (429, 5xx, transport errors) are retried
// with exponential backoff; everything else fails immediately. A single
// admission permit covers the whole retry sequence of one logical call.
type upstreamClient struct {
	http      *retryablehttp.Client
	baseURL   string
	clientID  string
	tokens    *tokenManager
	admission *admission
}

func newUpstreamClient(baseURL, clientID string, tokens *tokenManager, adm *admission, httpBase, netBase time.Duration, inner *http.Client) *upstreamClient {
	if httpBase <= 0 {
		httpBase = httpBackoffBase
	}
	if netBase <= 0 {
		netBase = netBackoffBase
	}

	rc := retryablehttp.NewClient()
	if inner != nil {
		rc.HTTPClient = inner
	} else {
		rc.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	rc.RetryMax = maxRetries
	rc.Logger = nil
	rc.CheckRetry = checkRetry
	rc.Backoff = newBackoff(httpBase, netBase)
	// Hand back the final response after retry exhaustion so the real
	// upstream status reaches the caller.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &upstreamClient{
		http:      rc,
		baseURL:   baseURL,
		clientID:  clientID,
		tokens:    tokens,
		admission: adm,
	}
}

// checkRetry retries transport failures, 429s, and 5xx responses. Any
// other non-2xx status is terminal on the first attempt.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return true, nil
	}
	return false, nil
}

// newBackoff returns the retry wait policy: a Retry-After header on a
// 429 wins; otherwise base * 2^attempt, where the base depends on
// whether a response was received at all.
func newBackoff(httpBase, netBase time.Duration) retryablehttp.Backoff {
	return func(minWait, maxWait time.Duration, attemptNum int, resp *http.Response) time.Duration {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil && secs >= 0 {
					return time.Duration(secs) * time.Second
				}
			}
		}

		base := netBase
		if resp != nil {
			base = httpBase
		}
		return base << attemptNum
	}
}

// Send POSTs a raw query body to the given upstream resource and returns
// the response body. The call is gated by the admission controller; the
// in-flight slot is released when the retry sequence finishes, by
// success or by final failure.
func (c *upstreamClient) Send(ctx context.Context, resource, query string) ([]byte, error) {
	if err := c.admission.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.admission.Release()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+resource, []byte(query))
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
