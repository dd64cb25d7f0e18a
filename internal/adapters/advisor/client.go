// Package advisor talks to a retrieval-augmented-generation endpoint that
// answers guest questions from the hotel knowledge base.
package advisor

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stayfinder/internal/adapters/observability"
	"stayfinder/internal/domain"
)

const maxAttempts = 4

var (
	ErrUnauthorized = errors.New("advisor: unauthorized")
	ErrBadRequest   = errors.New("advisor: bad request")
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("advisor base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 30 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- wire format ----

type generateRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
}

type generateResponse struct {
	Output struct {
		Text string `json:"text"`
	} `json:"output"`
	Citations []struct {
		RetrievedReferences []struct {
			Content struct {
				Text string `json:"text"`
			} `json:"content"`
			Location struct {
				S3Location struct {
					URI string `json:"uri"`
				} `json:"s3Location"`
				WebLocation struct {
					URL string `json:"url"`
				} `json:"webLocation"`
			} `json:"location"`
		} `json:"retrievedReferences"`
	} `json:"citations"`
}

// Ask sends the question and flattens the returned references into citations.
func (c *Client) Ask(ctx context.Context, query string) (adv domain.Advice, err error) {
	start := time.Now()
	defer func() { observability.ObserveExternal("advisor", "retrieve_and_generate", err, time.Since(start)) }()

	var req generateRequest
	req.Input.Text = query
	body, err := json.Marshal(req)
	if err != nil {
		return domain.Advice{}, err
	}

	var resp generateResponse
	if err := c.post(ctx, c.base+"/retrieve-and-generate", body, &resp); err != nil {
		return domain.Advice{}, err
	}

	adv.Answer = resp.Output.Text
	adv.Citations = []domain.Citation{}
	for _, cit := range resp.Citations {
		for _, ref := range cit.RetrievedReferences {
			uri := ref.Location.S3Location.URI
			if uri == "" {
				uri = ref.Location.WebLocation.URL
			}
			adv.Citations = append(adv.Citations, domain.Citation{Text: ref.Content.Text, SourceURI: uri})
		}
	}
	return adv, nil
}

// post performs a JSON POST with client-side rate limiting and retries.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) post(ctx context.Context, url string, body []byte, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		// fresh request (and body reader) each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		if c.key != "" {
			req.Header.Set("X-API-Key", c.key)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "stayfinder/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("%w: %s", ErrBadRequest, strings.TrimSpace(string(b)))

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("advisor: remote %d", resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("advisor: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

// sleepCtx waits for d or returns false early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
