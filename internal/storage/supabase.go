package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

/*
Supabase talks to the Supabase Storage REST API.

A legacy service_role JWT needs both `apikey` and `Authorization: Bearer <token>`;
a secret API key (sb_secret_...) accepts the same pair, so both are always sent.
*/
type Supabase struct {
	baseURL string // e.g. https://<project>.supabase.co
	apiKey  string
	bucket  string
	client  *http.Client
}

func NewSupabase(baseURL, apiKey, bucket string) *Supabase {
	return &Supabase{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		bucket:  bucket,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *Supabase) objectURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, key)
}

func (s *Supabase) do(ctx context.Context, method, url string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	return s.client.Do(req)
}

// Put uploads a new object: POST /storage/v1/object/{bucket}/{key}
func (s *Supabase) Put(ctx context.Context, key string, r io.Reader, contentType string, _ int64) error {
	res, err := s.do(ctx, http.MethodPost, s.objectURL(key), r, contentType)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("supabase upload error: %s | %s", res.Status, string(b))
	}
	return nil
}

// SignedURL creates a short-lived signed URL:
// POST /storage/v1/object/sign/{bucket}/{key}  body: {"expiresIn": <seconds>}
func (s *Supabase) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.baseURL, s.bucket, key)
	body, _ := json.Marshal(map[string]int{"expiresIn": int(ttl.Seconds())})

	res, err := s.do(ctx, http.MethodPost, url, bytes.NewReader(body), "application/json")
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return "", ErrObjectNotFound
	}
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("supabase sign error: %s | %s", res.Status, string(b))
	}

	var out struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.SignedURL == "" {
		return "", fmt.Errorf("empty signedURL in response")
	}

	// API returns a relative path
	return s.baseURL + "/storage/v1" + out.SignedURL, nil
}

// Delete removes an object. A 404 counts as already deleted.
func (s *Supabase) Delete(ctx context.Context, key string) error {
	res, err := s.do(ctx, http.MethodDelete, s.objectURL(key), nil, "")
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("supabase delete error: %s | %s", res.Status, string(b))
	}
	return nil
}
