package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fitgenie/internal/logger"
	"fitgenie/internal/profile"
)

// Reason classifies a transport failure.
type Reason int

const (
	// ReasonUnreachable covers connection errors and timeouts; the
	// service never produced a response.
	ReasonUnreachable Reason = iota
	// ReasonStatus means the service answered with a non-200 status.
	ReasonStatus
	// ReasonMalformed means the service answered 200 but the body could
	// not be decoded into a usable reply.
	ReasonMalformed
)

func (r Reason) String() string {
	switch r {
	case ReasonUnreachable:
		return "unreachable"
	case ReasonStatus:
		return "status"
	case ReasonMalformed:
		return "malformed"
	}
	return "unknown"
}

// TransportError reports a failed exchange with the assistant service.
// Status is only set for ReasonStatus.
type TransportError struct {
	Reason Reason
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Reason == ReasonStatus {
		return fmt.Sprintf("chat transport: service returned status %d", e.Status)
	}
	return fmt.Sprintf("chat transport: %s: %v", e.Reason, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Request is the envelope posted to the assistant's /chat endpoint. Plan
// carries the active plan in whatever typed or raw form the caller holds;
// it is serialized as-is.
type Request struct {
	SessionID string              `json:"session_id"`
	User      profile.UserProfile `json:"user"`
	Plan      any                 `json:"plan"`
	Message   string              `json:"message"`
	PlanType  PlanType            `json:"plan_type"`
	History   []Turn              `json:"history"`
}

// Response is the assistant's reply. History is the full authoritative
// conversation, including the turn just sent and the new reply. Plan is
// echoed back raw; a future reply may carry an updated plan.
type Response struct {
	Response string          `json:"response"`
	Plan     json.RawMessage `json:"plan"`
	History  []Turn          `json:"history"`
}

// Transport performs one request/reply exchange with the assistant.
type Transport interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// HTTPTransport talks to the assistant service over HTTP. When an API key
// is configured, each request carries a short-lived signed bearer token.
type HTTPTransport struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

const tokenTTL = 5 * time.Minute

// NewHTTPTransport creates a transport posting to baseURL's /chat
// endpoint. An empty apiKey disables auth. A nil log disables diagnostics.
func NewHTTPTransport(baseURL, apiKey string, timeout time.Duration, log *logger.Logger) *HTTPTransport {
	if log == nil {
		log = logger.New(logger.LevelOff, nil)
	}
	return &HTTPTransport{
		endpoint:   baseURL + "/chat",
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Send posts the turn and decodes the reply. Failures come back as a
// *TransportError whose Reason distinguishes an unreachable service from
// a bad status and from an undecodable body.
func (t *HTTPTransport) Send(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &TransportError{Reason: ReasonMalformed, Err: fmt.Errorf("encoding request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Reason: ReasonUnreachable, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		token, err := t.mintToken(req.SessionID)
		if err != nil {
			return nil, &TransportError{Reason: ReasonUnreachable, Err: fmt.Errorf("signing auth token: %w", err)}
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	t.log.Debug("chat: POST %s session=%s turns=%d", t.endpoint, req.SessionID, len(req.History))
	start := time.Now()
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Reason: ReasonUnreachable, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(httpResp.Body, 2048))
		t.log.Warn("chat: service returned status %d: %s", httpResp.StatusCode, detail)
		return nil, &TransportError{
			Reason: ReasonStatus,
			Status: httpResp.StatusCode,
			Err:    fmt.Errorf("unexpected status %d", httpResp.StatusCode),
		}
	}

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, &TransportError{Reason: ReasonMalformed, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(resp.History) == 0 {
		return nil, &TransportError{Reason: ReasonMalformed, Err: fmt.Errorf("response carries no history")}
	}

	t.log.Debug("chat: reply for session %s in %s (%d turns)", req.SessionID, time.Since(start).Round(time.Millisecond), len(resp.History))
	return &resp, nil
}

// mintToken signs a short-lived token scoped to the session, so a leaked
// token cannot be replayed against other sessions for long.
func (t *HTTPTransport) mintToken(sessionID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sessionID,
		"aud": "fitgenie-assistant",
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	})
	return token.SignedString([]byte(t.apiKey))
}
