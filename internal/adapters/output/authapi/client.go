package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"creatorlink-shell/configs"
	"creatorlink-shell/internal/domain"
	"creatorlink-shell/internal/ports/output"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
)

var _ output.AuthAPI = (*AuthClientAdapter)(nil)

const (
	defaultBaseURL = "http://localhost:5000"
	defaultTimeout = 10 * time.Second

	// identity documents are small; anything larger is a broken backend
	maxIdentityBytes = 1 << 20
)

// AuthClientAdapter struct - Output adapter for the backend's cookie-session auth API
type AuthClientAdapter struct {
	httpClient *http.Client
	baseURL    string
	userPath   string
	logoutPath string
	timeout    time.Duration
}

// NewAuthClientAdapter func - Creates new auth API client adapter.
// The session cookie set by the backend is kept in a cookie jar and sent on
// every later request.
func NewAuthClientAdapter(config configs.Backend) (*AuthClientAdapter, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	userPath := config.UserPath
	if userPath == "" {
		userPath = "/api/auth/user"
	}
	logoutPath := config.LogoutPath
	if logoutPath == "" {
		logoutPath = "/api/auth/logout"
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	// The per-request deadline comes from the context, so the client itself
	// has no Timeout; a client timeout would surface as a different error.
	httpClient := &http.Client{
		Jar: jar,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	adapter := &AuthClientAdapter{
		httpClient: httpClient,
		baseURL:    baseURL,
		userPath:   userPath,
		logoutPath: logoutPath,
		timeout:    timeout,
	}

	logrus.Infof("Auth API client adapter initialized with base URL: %s, timeout: %v", baseURL, timeout)

	return adapter, nil
}

// FetchUser queries the identity endpoint with the network deadline applied.
// A deadline that elapses first cancels the request and yields
// ErrTransportTimeout rather than a hard failure.
func (a *AuthClientAdapter) FetchUser(ctx context.Context) (domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	requestID := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{"request_id": requestID, "path": a.userPath})

	resp, err := a.do(ctx, requestID, a.userPath)
	if err != nil {
		if isTimeout(ctx, err) {
			log.Infof("Identity request timed out after %v", a.timeout)
			return domain.Identity{}, fmt.Errorf("%w: after %v", domain.ErrTransportTimeout, a.timeout)
		}
		log.Warnf("Identity request failed: %v", err)
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrHardFailure, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		drain(resp.Body)
		log.Debug("Identity request unauthorized")
		return domain.Identity{}, domain.ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body := readSnippet(resp.Body)
		log.Warnf("Identity request returned status %d", resp.StatusCode)
		return domain.Identity{}, &StatusError{Code: resp.StatusCode, Body: body}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxIdentityBytes+1))
	if err != nil {
		if isTimeout(ctx, err) {
			return domain.Identity{}, fmt.Errorf("%w: reading body after %v", domain.ErrTransportTimeout, a.timeout)
		}
		return domain.Identity{}, fmt.Errorf("%w: failed to read identity: %v", domain.ErrHardFailure, err)
	}
	if len(raw) > maxIdentityBytes {
		log.Warnf("Identity body exceeds %d bytes", maxIdentityBytes)
		return domain.Identity{}, fmt.Errorf("%w: identity larger than %d bytes", domain.ErrHardFailure, maxIdentityBytes)
	}

	identity := domain.NewIdentity(raw)
	if identity.Present() && !json.Valid(raw) {
		log.Warn("Identity body is not valid JSON")
		return domain.Identity{}, fmt.Errorf("%w: identity is not JSON", domain.ErrHardFailure)
	}
	log.Debugf("Identity request succeeded, identity present: %v", identity.Present())
	return identity, nil
}

// Logout asks the backend to end the session. Any 2xx is success.
func (a *AuthClientAdapter) Logout(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	requestID := uuid.NewString()
	resp, err := a.do(ctx, requestID, a.logoutPath)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLogoutFailed, err)
	}
	defer resp.Body.Close()
	drain(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", domain.ErrLogoutFailed, resp.StatusCode)
	}

	logrus.WithField("request_id", requestID).Info("Backend session ended")
	return nil
}

func (a *AuthClientAdapter) do(ctx context.Context, requestID, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	return a.httpClient.Do(req)
}

// StatusError is a non-2xx, non-401 answer. It unwraps to ErrHardFailure.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: status %d", domain.ErrHardFailure, e.Code)
	}
	return fmt.Sprintf("%v: status %d - %s", domain.ErrHardFailure, e.Code, e.Body)
}

// StatusCode func
func (e *StatusError) StatusCode() int {
	return e.Code
}

// Unwrap func
func (e *StatusError) Unwrap() error {
	return domain.ErrHardFailure
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxIdentityBytes))
}

func readSnippet(body io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(body, 512))
	return strings.TrimSpace(string(b))
}
