package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// pageEnvelope is the paging envelope the backend wraps list payloads in.
type pageEnvelope struct {
	Items json.RawMessage `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type apiEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

// fetchList performs an authenticated GET against a list endpoint and
// decodes the paged items into out (a pointer to a slice).
func fetchList(ctx context.Context, token, path string, page, limit int, out interface{}) (int64, error) {
	u, err := url.Parse(baseURL() + path)
	if err != nil {
		return 0, err
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return 0, fmt.Errorf("decoding backend response: %w", err)
	}
	if envelope.Status != "success" {
		if envelope.Error != "" {
			return 0, fmt.Errorf("backend refused the request: %s", envelope.Error)
		}
		return 0, fmt.Errorf("backend refused the request: HTTP %d", resp.StatusCode)
	}

	var pageData pageEnvelope
	if err := json.Unmarshal(envelope.Data, &pageData); err != nil {
		return 0, fmt.Errorf("decoding page envelope: %w", err)
	}
	if err := json.Unmarshal(pageData.Items, out); err != nil {
		return 0, fmt.Errorf("decoding items: %w", err)
	}
	return pageData.Total, nil
}
