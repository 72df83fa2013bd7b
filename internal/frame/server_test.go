package frame

import (
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"coinFrame/internal/model"
	"coinFrame/internal/resolver"
)

type fakeResolver struct {
	stats   map[string]model.CoinStats
	failure map[string]error
	calls   []string
}

func (f *fakeResolver) Resolve(_ context.Context, symbol string) (model.CoinStats, error) {
	f.calls = append(f.calls, symbol)
	if err, ok := f.failure[symbol]; ok {
		return model.CoinStats{}, err
	}
	if stats, ok := f.stats[symbol]; ok {
		return stats, nil
	}
	return model.CoinStats{}, &resolver.ResolutionError{Kind: resolver.SymbolNotFound, Symbol: symbol}
}

func testStats() model.CoinStats {
	return model.CoinStats{
		Symbol:      "DEGEN",
		Address:     "0x4ed4e862860bed51a9570b96d89af5e1b0efefed",
		Pool:        "0xc9034c3e7f58003e6ae0c8438e7c8f4598d5acaa",
		Price:       decimal.RequireFromString("0.0000123"),
		Volume24h:   decimal.RequireFromString("120.5"),
		Liquidity:   decimal.RequireFromString("1205"),
		MarketCap:   decimal.RequireFromString("450000"),
		HolderCount: 81234,
	}
}

func newTestServer(t *testing.T, res Resolver) (*Server, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	srv, err := NewServer(res, Options{
		BaseURL:  "https://frame.example",
		Registry: registry,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, registry
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		stats: map[string]model.CoinStats{"DEGEN": testStats()},
		failure: map[string]error{
			"NOPOOL": &resolver.ResolutionError{Kind: resolver.PoolNotFound, Symbol: "NOPOOL"},
			"BROKEN": &resolver.ResolutionError{
				Kind:   resolver.UpstreamError,
				Symbol: "BROKEN",
				Err:    errors.New("dial tcp 10.0.0.1:443: connection refused"),
			},
			"RPC": &resolver.ResolutionError{Kind: resolver.ChainReadError, Symbol: "RPC", Err: errors.New("eth_call timeout")},
		},
	}
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServerRequiresResolver(t *testing.T) {
	if _, err := NewServer(nil, Options{}); err == nil {
		t.Fatalf("expected error for nil resolver")
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, newFakeResolver())
	rec := do(t, srv.Handler(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestStatsSuccess(t *testing.T) {
	res := newFakeResolver()
	srv, _ := newTestServer(t, res)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/stats/degen", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(res.calls) != 1 || res.calls[0] != "DEGEN" {
		t.Fatalf("expected normalised symbol DEGEN, got %v", res.calls)
	}

	var got struct {
		Symbol      string `json:"symbol"`
		Price       string `json:"price"`
		HolderCount uint64 `json:"holder_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Symbol != "DEGEN" || got.Price != "0.0000123" || got.HolderCount != 81234 {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestStatsErrorStatus(t *testing.T) {
	srv, _ := newTestServer(t, newFakeResolver())

	cases := map[string]struct {
		status int
		kind   string
	}{
		"MISSING": {http.StatusNotFound, "symbol_not_found"},
		"NOPOOL":  {http.StatusNotFound, "pool_not_found"},
		"RPC":     {http.StatusBadGateway, "chain_read_error"},
		"BROKEN":  {http.StatusBadGateway, "upstream_error"},
	}
	for symbol, want := range cases {
		rec := do(t, srv.Handler(), http.MethodGet, "/api/stats/"+symbol, nil)
		if rec.Code != want.status {
			t.Fatalf("%s: expected %d, got %d", symbol, want.status, rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode body: %v", symbol, err)
		}
		if body.Kind != want.kind {
			t.Fatalf("%s: expected kind %s, got %s", symbol, want.kind, body.Kind)
		}
	}
}

func TestStatsDoesNotLeakUpstreamDetail(t *testing.T) {
	srv, _ := newTestServer(t, newFakeResolver())
	rec := do(t, srv.Handler(), http.MethodGet, "/api/stats/broken", nil)
	if strings.Contains(rec.Body.String(), "10.0.0.1") || strings.Contains(rec.Body.String(), "refused") {
		t.Fatalf("response leaks transport detail: %s", rec.Body.String())
	}
}

func TestIndexDocument(t *testing.T) {
	srv, _ := newTestServer(t, newFakeResolver())
	rec := do(t, srv.Handler(), http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`<meta property="fc:frame" content="vNext">`,
		`<meta property="fc:frame:image" content="https://frame.example/image">`,
		`<meta property="fc:frame:post_url" content="https://frame.example/frame">`,
		`<meta property="fc:frame:button:1" content="Get stats">`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("document missing %q:\n%s", want, body)
		}
	}
}

func TestIndexDerivesBaseURLFromRequest(t *testing.T) {
	srv, err := NewServer(newFakeResolver(), Options{Registry: prometheus.NewRegistry()})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "frames.local"
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `content="https://frames.local/frame"`) {
		t.Fatalf("expected derived post url, got:\n%s", rec.Body.String())
	}
}

func TestIndexIgnoresUnknownForwardedProto(t *testing.T) {
	srv, err := NewServer(newFakeResolver(), Options{Registry: prometheus.NewRegistry()})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "frames.local"
	req.Header.Set("X-Forwarded-Proto", "javascript:alert(1)//")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if strings.Contains(body, "javascript") {
		t.Fatalf("forwarded proto leaked into document:\n%s", body)
	}
	if !strings.Contains(body, `content="http://frames.local/frame"`) {
		t.Fatalf("expected http fallback, got:\n%s", body)
	}
}

func TestFramePostBuildsImageURL(t *testing.T) {
	res := newFakeResolver()
	srv, _ := newTestServer(t, res)

	payload := `{"untrustedData":{"fid":42,"buttonIndex":1,"inputText":" degen "}}`
	rec := do(t, srv.Handler(), http.MethodPost, "/frame", strings.NewReader(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "https://frame.example/image?symbol=DEGEN&amp;t=") {
		t.Fatalf("expected image url for DEGEN, got:\n%s", rec.Body.String())
	}
	if len(res.calls) != 0 {
		t.Fatalf("frame post should not resolve, got calls %v", res.calls)
	}
}

func TestFramePostEmptyInputReturnsPrompt(t *testing.T) {
	srv, _ := newTestServer(t, newFakeResolver())
	rec := do(t, srv.Handler(), http.MethodPost, "/frame", strings.NewReader(`{"untrustedData":{"inputText":""}}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `content="https://frame.example/image"`) {
		t.Fatalf("expected prompt image, got:\n%s", rec.Body.String())
	}
}

func TestFramePostMalformed(t *testing.T) {
	srv, _ := newTestServer(t, newFakeResolver())
	rec := do(t, srv.Handler(), http.MethodPost, "/frame", strings.NewReader(`{"untrustedData":`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImageRendersPNG(t *testing.T) {
	for _, target := range []string{"/image?symbol=degen", "/image?symbol=missing", "/image?symbol=broken", "/image"} {
		srv, _ := newTestServer(t, newFakeResolver())
		rec := do(t, srv.Handler(), http.MethodGet, target, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Fatalf("%s: unexpected content type %q", target, ct)
		}
		if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
			t.Fatalf("%s: expected no-store, got %q", target, cc)
		}
		cfg, err := png.DecodeConfig(rec.Body)
		if err != nil {
			t.Fatalf("%s: decode png: %v", target, err)
		}
		if cfg.Width != ImageWidth || cfg.Height != ImageHeight {
			t.Fatalf("%s: expected %dx%d, got %dx%d", target, ImageWidth, ImageHeight, cfg.Width, cfg.Height)
		}
	}
}

func TestImageWithoutSymbolDoesNotResolve(t *testing.T) {
	res := newFakeResolver()
	srv, _ := newTestServer(t, res)
	do(t, srv.Handler(), http.MethodGet, "/image", nil)
	if len(res.calls) != 0 {
		t.Fatalf("expected no resolve calls, got %v", res.calls)
	}
}

func TestMetricsCountOutcomes(t *testing.T) {
	srv, registry := newTestServer(t, newFakeResolver())
	do(t, srv.Handler(), http.MethodGet, "/api/stats/degen", nil)
	do(t, srv.Handler(), http.MethodGet, "/api/stats/missing", nil)
	do(t, srv.Handler(), http.MethodGet, "/api/stats/missing", nil)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	counts := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "coinframe_resolutions_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" {
					counts[label.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}
	if counts["ok"] != 1 || counts["symbol_not_found"] != 2 {
		t.Fatalf("unexpected outcome counts: %v", counts)
	}

	rec := do(t, srv.Handler(), http.MethodGet, "/metrics", nil)
	if !strings.Contains(rec.Body.String(), "coinframe_resolve_duration_seconds") {
		t.Fatalf("metrics endpoint missing duration histogram")
	}
}
