// Package translate machine-translates page content through DeepL, with a
// pluggable cache so already-translated chunks are never re-sent.
package translate

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// DefaultAPIURL is the DeepL free-tier endpoint.
const DefaultAPIURL = "https://api-free.deepl.com/v2/translate"

// Cache stores translated chunks keyed by content hash. The in-memory
// implementation below is the default; a persistent backend can be plugged
// in by the caller.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// MemoryCache is a run-scoped cache over patrickmn/go-cache.
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache returns an empty cache that never expires within a run.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{c: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

func (m *MemoryCache) Get(key string) (string, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (m *MemoryCache) Set(key, value string) {
	m.c.Set(key, value, gocache.NoExpiration)
}

// Client translates text chunk by chunk.
type Client struct {
	HTTP       *http.Client
	APIURL     string
	AuthKey    string
	TargetLang string
	Cache      Cache
}

// NewClient returns a translation client with an in-memory cache.
func NewClient(httpClient *http.Client, apiURL, authKey, targetLang string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		HTTP:       httpClient,
		APIURL:     apiURL,
		AuthKey:    authKey,
		TargetLang: targetLang,
		Cache:      NewMemoryCache(),
	}
}

// Translate translates text paragraph by paragraph. A paragraph that fails
// to translate is returned unchanged, so one bad chunk never loses content.
func (c *Client) Translate(text string) string {
	paragraphs := strings.Split(text, "\n\n")
	out := make([]string, len(paragraphs))

	for i, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			out[i] = p
			continue
		}
		out[i] = c.translateChunk(p)
	}

	return strings.Join(out, "\n\n")
}

func (c *Client) translateChunk(chunk string) string {
	key := fmt.Sprintf("%s:%x", c.TargetLang, sha1.Sum([]byte(chunk)))
	if cached, ok := c.Cache.Get(key); ok {
		return cached
	}

	translated, err := c.request(chunk)
	if err != nil {
		log.Warn().Err(err).Msg("Translation chunk failed, keeping original text")
		return chunk
	}

	c.Cache.Set(key, translated)
	return translated
}

type deeplResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

func (c *Client) request(chunk string) (string, error) {
	form := url.Values{}
	form.Set("auth_key", c.AuthKey)
	form.Set("text", chunk)
	form.Set("target_lang", c.TargetLang)

	resp, err := c.HTTP.PostForm(c.APIURL, form)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var body deeplResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if len(body.Translations) == 0 {
		return "", fmt.Errorf("empty translation response")
	}

	return body.Translations[0].Text, nil
}
