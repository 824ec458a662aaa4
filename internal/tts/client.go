// Package tts fetches synthesized speech audio from an HTTP endpoint.
package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"yomiage/pkg/retrylimit"
)

// DefaultEndpoint is the Google Translate speech endpoint.
const DefaultEndpoint = "http://translate.google.com/translate_tts"

// Client requests speech audio for utterances in a fixed target language.
type Client struct {
	httpClient *http.Client
	endpoint   string
	lang       string
	limiter    *retrylimit.AdaptiveLimiter
}

// New creates a client for the given endpoint and language code.
// An empty endpoint falls back to DefaultEndpoint.
func New(endpoint, lang string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		endpoint:   endpoint,
		lang:       lang,
		// The public endpoint tolerates only gentle traffic.
		limiter: retrylimit.NewAdaptiveLimiter(2, 1, 5, 1, 0.5),
	}
}

// SpeechURL builds the synthesis URL for the given utterance.
func (c *Client) SpeechURL(text string) string {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", text)
	q.Set("tl", c.lang)
	q.Set("client", "tw-ob")
	return c.endpoint + "?" + q.Encode()
}

// Open fetches the audio for an utterance and returns the response body.
// The caller owns the returned reader and must close it.
func (c *Client) Open(ctx context.Context, text string) (io.ReadCloser, error) {
	var body io.ReadCloser

	err := retrylimit.Do(ctx, c.limiter, 3, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SpeechURL(text), nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("tts endpoint returned %s", resp.Status)
		}
		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch speech audio: %w", err)
	}
	return body, nil
}
