// Package fetch provides HTTP retrieval with bounded rate-limit retries.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// maxAttempts bounds retries on rate-limited responses.
const maxAttempts = 3

// backoffStep is the linear backoff unit between rate-limited attempts.
var backoffStep = 5 * time.Second

// NewClient returns the HTTP client used for all pipeline fetches.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
	}
}

// Get retrieves a URL, retrying with linear backoff when the server answers
// 429. Any other non-200 status is an error.
func Get(client *http.Client, url string) ([]byte, error) {
	var lastStatus int

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := client.Get(url)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			lastStatus = resp.StatusCode

			if attempt < maxAttempts {
				wait := time.Duration(attempt) * backoffStep
				log.Warn().
					Str("url", url).
					Int("attempt", attempt).
					Dur("wait", wait).
					Msg("Rate limited, backing off")
				time.Sleep(wait)
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, err
		}
		return body, nil
	}

	return nil, fmt.Errorf("status %d after %d attempts", lastStatus, maxAttempts)
}
