// Package omie talks to the Omie ERP REST API.
//
// Every operation is a POST of a call envelope carrying the app credentials;
// the path selects the resource and the "call" field selects the procedure.
// Responses either carry a domain payload or a faultstring. Pagination field
// names differ per endpoint; see fetchers.go.
//
// Required Environment Variables (consumed via internal/config):
//   - OMIE_APP_KEY: application key issued by Omie
//   - OMIE_APP_SECRET: application secret issued by Omie
package omie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"paydash/internal/logger"
)

const (
	// DefaultBaseURL is the production Omie API root.
	DefaultBaseURL = "https://app.omie.com.br/api/v1"

	// DefaultTimeout bounds a single vendor call. There is no retry: a slow
	// or failed call propagates immediately.
	DefaultTimeout = 30 * time.Second
)

// Gateway performs one authenticated call against the Omie API and returns
// the raw response body for the caller to decode.
type Gateway interface {
	Call(ctx context.Context, call string, params any, endpoint string) (json.RawMessage, error)
}

// HTTPGateway is the production Gateway backed by net/http.
type HTTPGateway struct {
	baseURL    string
	appKey     string
	appSecret  string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewHTTPGateway creates a gateway for the given credentials. An empty
// baseURL selects production; a non-positive timeout selects the default.
func NewHTTPGateway(baseURL, appKey, appSecret string, timeout time.Duration) *HTTPGateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPGateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		appKey:    appKey,
		appSecret: appSecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: logger.WithComponent("omie-gateway"),
	}
}

// envelope is the request body shape every Omie call uses.
type envelope struct {
	Call      string `json:"call"`
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
	Param     []any  `json:"param"`
}

// faultEnvelope is the vendor's business-level error shape. It may arrive
// with a 200 status, so the body has to be inspected regardless.
type faultEnvelope struct {
	FaultString string `json:"faultstring"`
	FaultCode   string `json:"faultcode"`
}

// Call performs one authenticated POST and returns the parsed-raw body.
// Failures map onto the package taxonomy: ErrTimeout, ErrTransport,
// ErrRemoteFault.
func (g *HTTPGateway) Call(ctx context.Context, call string, params any, endpoint string) (json.RawMessage, error) {
	const op = "Call"

	body, err := json.Marshal(envelope{
		Call:      call,
		AppKey:    g.appKey,
		AppSecret: g.appSecret,
		Param:     []any{params},
	})
	if err != nil {
		return nil, NewOmieError(op, err, "encode request envelope")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, NewOmieError(op, err, call)
	}
	req.Header.Set("Content-Type", "application/json")

	g.log.Debug().
		Str("call", call).
		Str("endpoint", endpoint).
		Msg("Calling Omie API")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			g.log.Warn().
				Str("call", call).
				Dur("elapsed", time.Since(start)).
				Msg("Omie call timed out")
			return nil, NewOmieError(op, ErrTimeout, call)
		}
		return nil, NewOmieError(op, ErrTransport, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewOmieError(op, ErrTransport, "read response body")
	}

	var fault faultEnvelope
	// A non-JSON body on a 2xx is left for the page decoder to reject.
	_ = json.Unmarshal(raw, &fault)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || fault.FaultString != "" {
		msg := fault.FaultString
		if msg == "" {
			msg = resp.Status
		}
		g.log.Warn().
			Str("call", call).
			Int("status", resp.StatusCode).
			Str("faultstring", fault.FaultString).
			Msg("Omie returned a fault")
		return nil, NewOmieError(op, ErrRemoteFault, msg)
	}

	g.log.Debug().
		Str("call", call).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(raw)).
		Msg("Omie call completed")

	return raw, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
