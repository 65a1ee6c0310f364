package httpx

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/rs/xid"

	"github.com/trknhr/semantle/internal/logger"
)

const (
	FieldRequestID    = "request-id"
	FieldHTTPMethod   = "http-method"
	FieldURL          = "url"
	FieldRequestBody  = "request-body"
	FieldResponseBody = "response-body"
	FieldStatus       = "response-status"
	FieldDurationMs   = "duration-ms"
)

// LoggingRoundTripper implements http.RoundTripper and logs every exchange
// at debug level.
type LoggingRoundTripper struct {
	next           http.RoundTripper
	logFieldMaxLen int
}

func NewLoggingRoundTripper(next http.RoundTripper, opts ...Option) LoggingRoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	rt := LoggingRoundTripper{next: next}
	for _, opt := range opts {
		opt(&rt)
	}
	return rt
}

func (rt LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := xid.New().String()
	log := logger.L().With().
		Str(FieldRequestID, requestID).
		Str(FieldHTTPMethod, req.Method).
		Str(FieldURL, req.URL.String()).
		Logger()

	reqBytes, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		log.Error().Err(err).Msg("httputil.DumpRequestOut")
	}
	log.Debug().Str(FieldRequestBody, rt.truncate(reqBytes)).Msg("http request")

	start := time.Now()

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		log.Debug().Err(err).Int64(FieldDurationMs, time.Since(start).Milliseconds()).Msg("http transport error")
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	respBytes, err := httputil.DumpResponse(resp, true)
	if err != nil {
		log.Error().Err(err).Msg("httputil.DumpResponse")
	}

	log.Debug().
		Int(FieldStatus, resp.StatusCode).
		Str(FieldResponseBody, rt.truncate(respBytes)).
		Int64(FieldDurationMs, time.Since(start).Milliseconds()).
		Msg("http response")

	return resp, nil
}

func (rt LoggingRoundTripper) truncate(b []byte) string {
	if rt.logFieldMaxLen != 0 && len(b) > rt.logFieldMaxLen {
		b = b[:rt.logFieldMaxLen]
	}
	return string(b)
}
