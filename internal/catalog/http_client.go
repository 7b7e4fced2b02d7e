package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/homelink-services/service-bookings/pkg/domain"
)

// HTTPClient resolves service snapshots against the catalog service's REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a catalog client for the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Get fetches a service snapshot from GET /internal/v1/services/{id}.
func (c *HTTPClient) Get(ctx context.Context, serviceID uuid.UUID) (*ServiceSnapshot, error) {
	url := fmt.Sprintf("%s/internal/v1/services/%s", c.baseURL, serviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NewInternalError("failed to build catalog request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewInternalError("catalog service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewInternalError("failed to read catalog response", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.NewNotFoundError("Service", serviceID.String())
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, domain.NewInternalError(
			fmt.Sprintf("catalog service error: status=%d", resp.StatusCode), nil)
	}

	var snapshot ServiceSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, domain.NewInternalError("failed to decode catalog response", err)
	}
	return &snapshot, nil
}
