package gate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestEvaluateUngatedShortCircuits(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	e := NewHTTPEvaluator(srv.URL, 100)
	dec, err := e.Evaluate(context.Background(), "wallet-1", None{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.HasAccess {
		t.Error("ungated content must always grant access")
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("ungated rule must not hit the backend")
	}
}

func TestEvaluateTokenGateGranted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req checkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Identity != "wallet-1" || req.Kind != "token" || req.Mint != "MINTX" || req.MinAmount != 10 {
			t.Errorf("unexpected request: %+v", req)
		}
		balance := uint64(25)
		json.NewEncoder(w).Encode(checkResponse{HasAccess: true, Balance: &balance})
	}))
	defer srv.Close()

	e := NewHTTPEvaluator(srv.URL, 100)
	dec, err := e.Evaluate(context.Background(), "wallet-1", TokenGate{Mint: "MINTX", MinAmount: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.HasAccess || dec.Balance == nil || *dec.Balance != 25 {
		t.Errorf("expected access with balance 25, got %+v", dec)
	}
}

func TestEvaluateDenialIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		balance := uint64(3)
		json.NewEncoder(w).Encode(checkResponse{HasAccess: false, Balance: &balance})
	}))
	defer srv.Close()

	e := NewHTTPEvaluator(srv.URL, 100)
	dec, err := e.Evaluate(context.Background(), "wallet-1", TokenGate{Mint: "MINTX", MinAmount: 10})
	if err != nil {
		t.Fatalf("a denial must come back as a decision, got error: %v", err)
	}
	if dec.HasAccess {
		t.Error("expected denial")
	}
	if dec.Balance == nil || *dec.Balance != 3 {
		t.Errorf("expected balance 3, got %+v", dec.Balance)
	}
}

func TestEvaluateServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewHTTPEvaluator(srv.URL, 100)
	_, err := e.Evaluate(context.Background(), "wallet-1", NFTGate{Collection: "COLL"})
	if !errors.Is(err, ErrCheckFailed) {
		t.Errorf("expected ErrCheckFailed, got %v", err)
	}
}

func TestEvaluateContextTimeoutIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	e := NewHTTPEvaluator(srv.URL, 100)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := e.Evaluate(ctx, "wallet-1", TokenGate{Mint: "MINTX", MinAmount: 1})
	if !errors.Is(err, ErrCheckFailed) {
		t.Errorf("expected ErrCheckFailed on timeout, got %v", err)
	}
}
