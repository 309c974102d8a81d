package gate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPEvaluator calls a balance/ownership endpoint. One POST per check;
// the endpoint is expected to answer {"has_access": bool, "balance": n}.
type HTTPEvaluator struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

func NewHTTPEvaluator(endpoint string, rps float64) *HTTPEvaluator {
	if rps <= 0 {
		rps = 5
	}
	return &HTTPEvaluator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}
}

type checkRequest struct {
	Identity   string `json:"identity"`
	Kind       string `json:"kind"`
	Mint       string `json:"mint,omitempty"`
	MinAmount  uint64 `json:"min_amount,omitempty"`
	Collection string `json:"collection,omitempty"`
}

type checkResponse struct {
	HasAccess bool    `json:"has_access"`
	Balance   *uint64 `json:"balance"`
}

func (e *HTTPEvaluator) Evaluate(ctx context.Context, identity string, rule Rule) (Decision, error) {
	if !IsGated(rule) {
		return Decision{HasAccess: true}, nil
	}

	req := checkRequest{Identity: identity, Kind: rule.Kind()}
	switch r := rule.(type) {
	case TokenGate:
		req.Mint = r.Mint
		req.MinAmount = r.MinAmount
	case NFTGate:
		req.Collection = r.Collection
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}

	body, _ := json.Marshal(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Decision{}, fmt.Errorf("%w: status %d", ErrCheckFailed, resp.StatusCode)
	}

	var out checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}

	return Decision{HasAccess: out.HasAccess, Balance: out.Balance}, nil
}
