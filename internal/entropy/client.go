package entropy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/cardsagainstentropy/internal/model"
)

// Client talks to a provider over HTTP
type Client struct {
	baseURL    string
	chain      string
	httpClient *http.Client
}

var _ Provider = (*Client)(nil)

// NewClient creates a provider client. A nil httpClient gets a 10s timeout default.
func NewClient(baseURL, chain string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		chain:      chain,
		httpClient: httpClient,
	}
}

// Request registers a commitment with the provider
func (c *Client) Request(ctx context.Context, commitment model.Bytes32, fee uint64) (Receipt, error) {
	data, err := json.Marshal(RequestBody{Commitment: commitment, Fee: fee})
	if err != nil {
		return Receipt{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chains/%s/requests", c.baseURL, c.chain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return Receipt{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("entropy request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Receipt{}, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out RequestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrMalformedRevelation, err)
	}
	return Receipt{SequenceNumber: out.SequenceNumber, ProviderCommitment: out.ProviderCommitment}, nil
}

// Revelation fetches the provider value for a sequence number. A 404 means
// the provider has not caught up yet and maps to ErrRevealNotReady.
func (c *Client) Revelation(ctx context.Context, seq model.SequenceNumber) (model.Bytes32, error) {
	url := fmt.Sprintf("%s/v1/chains/%s/revelations/%d", c.baseURL, c.chain, seq)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Bytes32{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Bytes32{}, fmt.Errorf("fetch revelation: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return model.Bytes32{}, ErrRevealNotReady
	case resp.StatusCode >= 500:
		return model.Bytes32{}, fmt.Errorf("provider returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return model.Bytes32{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var out RevelationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.Bytes32{}, fmt.Errorf("%w: %v", ErrMalformedRevelation, err)
	}
	value, err := model.ParseBytes32(out.Value.Data)
	if err != nil {
		return model.Bytes32{}, fmt.Errorf("%w: %v", ErrMalformedRevelation, err)
	}
	return value, nil
}
