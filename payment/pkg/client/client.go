// Package client is used by the storefront to reach the payment verifier. It holds no
// provider secret.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	inHttp "github.com/Alturino/focushoney/internal/common/http"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
	"github.com/Alturino/focushoney/payment/pkg/request"
	"github.com/Alturino/focushoney/payment/pkg/response"
)

var ErrUnexpectedResponse = errors.New("unexpected response from payment verifier")

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func New(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing verifier url=%s with error=%w", baseURL, err)
	}
	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   20 * time.Second,
		},
	}, nil
}

// Verify never retries. A non-nil error means the outcome is unknown.
func (cl *Client) Verify(c context.Context, reference string) (response.Verification, error) {
	c, span := otel.Tracer.Start(c, "Client Verify")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client Verify").
		Str(log.KeyPaymentReference, reference).
		Logger()

	body, err := json.Marshal(request.Verify{Reference: reference})
	if err != nil {
		err = fmt.Errorf("failed marshaling request with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Verification{}, err
	}

	endpoint := cl.baseURL.ResolveReference(&url.URL{Path: "/payments/verify"})
	req, err := http.NewRequestWithContext(c, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		err = fmt.Errorf("failed creating request with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Verification{}, err
	}
	req.Header.Set(inHttp.HeaderContentType, inHttp.HeaderValueJson)
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Set(inHttp.HeaderRequestID, requestID)
	}

	logger = logger.With().Str(log.KeyProcess, "requesting verification").Logger()
	logger.Info().Msg("requesting verification")
	resp, err := cl.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed requesting verification with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Verification{}, err
	}
	defer resp.Body.Close()
	logger.Info().Int("verifierStatusCode", resp.StatusCode).Msg("requested verification")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		io.Copy(io.Discard, resp.Body)
		err = fmt.Errorf("verifier returned statusCode=%d with error=%w", resp.StatusCode, ErrUnexpectedResponse)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Verification{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "decoding verification").Logger()
	envelope := struct {
		Message string                 `json:"message"`
		Data    *response.Verification `json:"data"`
	}{}
	if err = json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		err = fmt.Errorf("failed decoding verification with error=%w", errors.Join(err, ErrUnexpectedResponse))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Verification{}, err
	}
	// a 400 without data is a rejected request, not a failed payment
	if envelope.Data == nil {
		err = fmt.Errorf("verifier message=%s with error=%w", envelope.Message, ErrUnexpectedResponse)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Verification{}, err
	}

	verification := *envelope.Data
	if verification.Reference == "" {
		verification.Reference = reference
	}
	if resp.StatusCode != http.StatusOK || !verification.Succeeded() {
		verification.Status = response.StatusFailed
	}
	logger.Info().Str(log.KeyVerificationStatus, verification.Status).Msg("decoded verification")

	return verification, nil
}
