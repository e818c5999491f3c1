package protocol

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dropDatabas3/hellojohn-accounts/internal/metrics"
)

const tracerName = "github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"

// maxBodyBytes caps how much of a provider body is read.
const maxBodyBytes = 1 << 20

// Doer is the subset of *http.Client provider calls need.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Do sends req, reads the body and applies the status policy. Network
// failures come back as *TransportError and are not retried. protocolName
// labels the span and metrics ("oauth1", "oauth2").
func Do(ctx context.Context, client Doer, protocolName string, req *http.Request) (*Response, error) {
	endpoint := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path

	ctx, span := otel.Tracer(tracerName).Start(ctx, protocolName+".call",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.full", endpoint),
	)

	start := time.Now()
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		metrics.ObserveCall(protocolName, 0, time.Since(start).Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, &TransportError{Method: req.Method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.ObserveCall(protocolName, resp.StatusCode, time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, &TransportError{Method: req.Method, URL: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	out, err := BuildResponse(resp.StatusCode, resp.Header.Get("Content-Type"), body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode")
		return nil, err
	}
	return out, nil
}
