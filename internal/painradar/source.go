package painradar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

const userAgent = "PASEKA_CRM_PainRadar/1.0"

// Source searches one external platform.
type Source interface {
	Platform() dom.Platform
	Search(ctx context.Context, keyword string, limit int) ([]Post, error)
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 20 * time.Second}
}

// get performs a GET and returns the body. Rate limiting and server errors
// are retryable, other non-2xx answers are not.
func get(ctx context.Context, client *http.Client, p dom.Platform, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, SourceError(p, false, err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, SourceError(p, true, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, SourceError(p, true, err)
	}
	if resp.StatusCode/100 != 2 {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, SourceError(p, retryable, fmt.Errorf("status %d", resp.StatusCode))
	}
	return body, nil
}

func getJSON(ctx context.Context, client *http.Client, p dom.Platform, url string, header http.Header, dst any) error {
	body, err := get(ctx, client, p, url, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return SourceError(p, false, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func clampLimit(limit, max int) int {
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}
