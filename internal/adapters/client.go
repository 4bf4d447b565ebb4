package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Classificação de falhas de provedor (ver taxonomia de erros do sistema).
const (
	KindNetwork      = "network"
	KindParse        = "parse"
	KindRateLimit    = "ratelimit"
	KindUnauthorized = "unauthorized"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

var fetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "odds_adapter_errors_total",
	Help: "falhas de fetch por adapter e tipo",
}, []string{"adapter", "kind"})

var fetches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "odds_adapter_fetches_total",
	Help: "fetches concluídos com sucesso por adapter",
}, []string{"adapter"})

// HTTPError carrega o status retornado pelo provedor para classificação.
type HTTPError struct{ StatusCode int }

func (e *HTTPError) Error() string { return fmt.Sprintf("provider http %d", e.StatusCode) }

// ParseError marca corpo de resposta malformado.
type ParseError struct{ Err error }

func (e *ParseError) Error() string { return "parse provider response: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// Client é o cliente HTTP base dos adapters: timeout limitado e
// auto rate limiting por provedor (intervalo mínimo entre requests).
type Client struct {
	Name    string
	BaseURL string
	HTTP    *http.Client
	Limiter *rate.Limiter
	Log     *zap.Logger
}

// NewClient cria o cliente de um provedor. minInterval é o espaçamento
// mínimo entre requests para evitar bloqueio do provedor.
func NewClient(name, baseURL string, minInterval time.Duration, log *zap.Logger) *Client {
	return &Client{
		Name:    name,
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		Log:     log.With(zap.String("adapter", name)),
	}
}

// GetJSON faz GET com query params e desserializa o corpo em dst.
// Respeita o rate limiter antes de cada request.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, dst any) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &ParseError{Err: err}
	}
	return nil
}

// ReportFailure loga e contabiliza a falha pelo tipo classificado.
func (c *Client) ReportFailure(op string, err error) {
	kind := Classify(err)
	fetchErrors.WithLabelValues(c.Name, kind).Inc()
	c.Log.Warn("provider fetch failed",
		zap.String("op", op),
		zap.String("kind", kind),
		zap.Error(err),
	)
}

// ReportSuccess contabiliza um fetch bem-sucedido.
func (c *Client) ReportSuccess() { fetches.WithLabelValues(c.Name).Inc() }

// Classify mapeia o erro para a taxonomia de falhas de provedor.
func Classify(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		switch he.StatusCode {
		case http.StatusTooManyRequests:
			return KindRateLimit
		case http.StatusUnauthorized, http.StatusForbidden:
			return KindUnauthorized
		}
		return KindNetwork
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return KindParse
	}
	return KindNetwork
}
