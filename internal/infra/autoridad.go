package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ratolibre1/fungus-backend/internal/apierror"
	"github.com/ratolibre1/fungus-backend/internal/dto"
)

// AutoridadClient talks to the remote totals authority — the service whose
// computation is canonical for purchase previews. The preview synchronizer
// consumes it through the circuit breaker and falls back to the local money
// engine when it is unreachable; both paths are required to produce identical
// numbers for the same input.
type AutoridadClient struct {
	baseURL    string
	cb         *CircuitBreaker
	httpClient *http.Client
}

func NewAutoridadClient(baseURL string, cb *CircuitBreaker) *AutoridadClient {
	return &AutoridadClient{
		baseURL:    baseURL,
		cb:         cb,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Preview posts the draft to the authority and returns its totals.
// Transport and non-200 failures surface as ErrAutoridadNoDisponible; the
// caller decides whether that degrades silently (preview) or is retryable
// (persistence).
func (c *AutoridadClient) Preview(ctx context.Context, req dto.PreviewCompraRequest) (*dto.PreviewCompraResponse, error) {
	var resp dto.PreviewCompraResponse
	err := c.cb.Execute(func() error {
		return c.post(ctx, "/v1/compras/preview", req, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierror.ErrAutoridadNoDisponible, err)
	}
	return &resp, nil
}

func (c *AutoridadClient) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("autoridad: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("autoridad: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("autoridad: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("autoridad: returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("autoridad: decode response: %w", err)
	}
	return nil
}
