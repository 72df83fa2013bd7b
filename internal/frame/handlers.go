package frame

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"coinFrame/internal/model"
	"coinFrame/internal/resolver"
)

const (
	maxFramePayloadBytes = 64 << 10
	maxSymbolLength      = 32

	promptTitle   = "Coin stats"
	promptMessage = "Enter a coin symbol below"
)

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writeDocument(w, r, Document{
		Title:            promptTitle,
		ImageURL:         s.absoluteURL(r, "/image", nil),
		PostURL:          s.absoluteURL(r, "/frame", nil),
		Button:           "Get stats",
		InputPlaceholder: "Enter a coin symbol",
	})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	var payload framePayload
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFramePayloadBytes))
	if err != nil {
		http.Error(w, "read frame payload", http.StatusBadRequest)
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			http.Error(w, "invalid frame payload", http.StatusBadRequest)
			return
		}
	}

	symbol := payload.UntrustedData.InputText
	if symbol == "" {
		symbol = r.URL.Query().Get("symbol")
	}
	symbol = cleanSymbol(symbol)
	if symbol == "" {
		s.handleIndex(w, r)
		return
	}

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("t", strconv.FormatInt(time.Now().Unix(), 10))

	s.writeDocument(w, r, Document{
		Title:            symbol + " stats",
		ImageURL:         s.absoluteURL(r, "/image", query),
		PostURL:          s.absoluteURL(r, "/frame", nil),
		Button:           "Check another",
		InputPlaceholder: "Enter a coin symbol",
	})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	symbol := cleanSymbol(r.URL.Query().Get("symbol"))

	var c card
	if symbol == "" {
		c = messageCard(promptTitle, promptMessage, false)
	} else {
		stats, err := s.resolve(r.Context(), symbol)
		if err != nil {
			c = messageCard("$"+symbol, resolver.KindOf(err).Message(), true)
		} else {
			c = statsCard(stats, s.referenceSymbol)
		}
	}

	var buf bytes.Buffer
	if err := c.WritePNG(&buf); err != nil {
		s.logger.Error("render image", zap.String("symbol", symbol), zap.Error(err))
		http.Error(w, "render image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	symbol := cleanSymbol(mux.Vars(r)["symbol"])

	stats, err := s.resolve(r.Context(), symbol)
	if err != nil {
		kind := resolver.KindOf(err)
		writeJSON(w, statusFor(kind), errorResponse{Error: kind.Message(), Kind: kind.String()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) resolve(ctx context.Context, symbol string) (model.CoinStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	start := time.Now()
	stats, err := s.resolver.Resolve(ctx, symbol)
	elapsed := time.Since(start)
	if err != nil {
		kind := resolver.KindOf(err)
		s.metrics.observe(kind.String(), elapsed)
		switch kind {
		case resolver.SymbolNotFound, resolver.PoolNotFound:
			s.logger.Info("resolve miss", zap.String("symbol", symbol), zap.Stringer("kind", kind))
		default:
			s.logger.Warn("resolve failed", zap.String("symbol", symbol), zap.Stringer("kind", kind), zap.Error(err))
		}
		return model.CoinStats{}, err
	}

	s.metrics.observe("ok", elapsed)
	s.logger.Info("resolved",
		zap.String("symbol", symbol),
		zap.String("price", stats.Price.String()),
		zap.Duration("elapsed", elapsed),
	)
	return stats, nil
}

func (s *Server) writeDocument(w http.ResponseWriter, r *http.Request, doc Document) {
	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		s.logger.Error("render frame", zap.Error(err))
		http.Error(w, "render frame", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) absoluteURL(r *http.Request, path string, query url.Values) string {
	base := s.baseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		switch proto := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); proto {
		case "http", "https":
			scheme = proto
		}
		base = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	target := base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func cleanSymbol(symbol string) string {
	symbol = resolver.NormalizeSymbol(symbol)
	if len(symbol) > maxSymbolLength {
		return ""
	}
	return symbol
}

func statusFor(kind resolver.Kind) int {
	switch kind {
	case resolver.SymbolNotFound, resolver.PoolNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
