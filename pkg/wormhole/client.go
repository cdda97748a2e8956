// Package wormhole fetches signed bridge messages (VAAs) from a guardian RPC.
package wormhole

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/internal/metrics"
	"github.com/propellerswap/propeller/pkg/config"
)

// ErrNotFound is returned when the guardians have not signed the message yet
// and the retry budget is exhausted.
var ErrNotFound = errors.New("signed vaa not found")

// Client queries the guardian REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	interval   time.Duration
	maxRetries uint64
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a guardian client from configuration
func NewClient(cfg *config.WormholeConfig, logger *zap.Logger, opts ...Option) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("wormhole.rpc_url is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.RPCURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		interval:   cfg.RetryInterval,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type signedVAAResponse struct {
	VAABytes string `json:"vaaBytes"`
}

// SignedVAA fetches the signed message emitted by emitter on chain with the
// given sequence, retrying at a constant interval while it is not yet available.
func (c *Client) SignedVAA(ctx context.Context, chain uint16, emitter string, sequence uint64) ([]byte, error) {
	url := fmt.Sprintf("%s/v1/signed_vaa/%d/%s/%d", c.baseURL, chain, emitter, sequence)

	var vaa []byte
	attempt := 0
	op := func() error {
		attempt++
		b, err := c.fetch(ctx, url)
		if err != nil {
			return err
		}
		vaa = b
		return nil
	}
	notify := func(err error, next time.Duration) {
		c.logger.Debug("Signed VAA not available yet",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", next),
			zap.Error(err))
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.interval), c.maxRetries),
		ctx,
	)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		metrics.VAARequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("get signed vaa chain=%d emitter=%s sequence=%d: %w", chain, emitter, sequence, err)
	}

	metrics.VAARequests.WithLabelValues("success").Inc()
	c.logger.Info("Fetched signed VAA",
		zap.Uint16("chain", chain),
		zap.String("emitter", emitter),
		zap.Uint64("sequence", sequence),
		zap.Int("attempts", attempt))
	return vaa, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("guardian rpc returned %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("guardian rpc returned %s", resp.Status))
	}

	var body signedVAAResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	vaa, err := base64.StdEncoding.DecodeString(body.VAABytes)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode vaa bytes: %w", err))
	}
	return vaa, nil
}
