// Package proxy forwards gateway requests to one upstream service.
package proxy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/apperr"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/middleware"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/respond"
)

const defaultTimeout = 5 * time.Second

// Upstream relays requests to a single service, preserving method, path,
// query, body and headers. The inbound Host header is replaced by the
// upstream's.
type Upstream struct {
	name    string
	target  *url.URL
	proxy   *httputil.ReverseProxy
	health  *http.Client
	logger  *slog.Logger
	timeout time.Duration
}

// New builds an Upstream for the service reachable at rawURL. timeout bounds
// connecting and waiting for response headers.
func New(name, rawURL string, timeout time.Duration, logger *slog.Logger) (*Upstream, error) {
	target, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse %s upstream url: %w", name, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("%s upstream url %q must be absolute", name, rawURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext,
		ResponseHeaderTimeout: timeout,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
	}
	u := &Upstream{
		name:    name,
		target:  target,
		health:  &http.Client{Transport: transport, Timeout: timeout},
		logger:  logger.With("upstream", name),
		timeout: timeout,
	}
	u.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		Transport:      transport,
		ModifyResponse: u.modifyResponse,
		ErrorHandler:   u.handleError,
	}
	return u, nil
}

// Name identifies the upstream in logs and health reports.
func (u *Upstream) Name() string {
	return u.name
}

// ServeHTTP forwards req to the upstream and relays its response verbatim.
func (u *Upstream) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	u.proxy.ServeHTTP(w, req)
}

// Ping reports whether the upstream answers its health endpoint.
func (u *Upstream) Ping(ctx context.Context) error {
	endpoint := u.target.JoinPath("/healthz")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	resp, err := u.health.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s health returned status %d", u.name, resp.StatusCode)
	}
	return nil
}

// modifyResponse drops the upstream's request id; the gateway already set
// the same value on the response.
func (u *Upstream) modifyResponse(resp *http.Response) error {
	resp.Header.Del(middleware.RequestIDHeader)
	return nil
}

func (u *Upstream) handleError(w http.ResponseWriter, req *http.Request, err error) {
	u.logger.Warn("upstream request failed",
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", middleware.RequestIDFromContext(req.Context()),
		"error", err,
	)
	message := fmt.Sprintf("%s service unavailable", displayName(u.name))
	respond.Failure(w, http.StatusServiceUnavailable, apperr.KindUpstreamUnavailable, message, "")
}

func displayName(name string) string {
	if name == "" {
		return "Upstream"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
