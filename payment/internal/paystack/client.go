// Package paystack talks to the payment provider with the secret key. It must only be
// linked into the payment verifier.
package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	inHttp "github.com/Alturino/focushoney/internal/common/http"
	"github.com/Alturino/focushoney/internal/config"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
)

var ErrUnexpectedResponse = errors.New("unexpected response from payment provider")

type TransactionData struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type Transaction struct {
	Data TransactionData
	Raw  json.RawMessage
}

type Client struct {
	baseURL    *url.URL
	secretKey  string
	httpClient *http.Client
}

func NewClient(cfg config.Paystack) (*Client, error) {
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing paystack base url=%s with error=%w", cfg.BaseURL, err)
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("paystack secret key is not configured")
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		},
	}, nil
}

// VerifyTransaction returns the provider's view of reference. Any error means the outcome
// is unknown, not that the payment failed.
func (p *Client) VerifyTransaction(c context.Context, reference string) (Transaction, error) {
	c, span := otel.Tracer.Start(c, "paystack VerifyTransaction")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "paystack VerifyTransaction").
		Str(log.KeyPaymentReference, reference).
		Logger()

	endpoint := strings.TrimRight(p.baseURL.String(), "/") + "/transaction/verify/" + url.PathEscape(reference)

	logger = logger.With().Str(log.KeyProcess, "requesting verification").Logger()
	logger.Info().Msg("requesting verification")
	req, err := http.NewRequestWithContext(c, http.MethodGet, endpoint, nil)
	if err != nil {
		err = fmt.Errorf("failed creating request with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Transaction{}, err
	}
	req.Header.Set(inHttp.HeaderAuthorization, "Bearer "+p.secretKey)
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Set(inHttp.HeaderRequestID, requestID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed requesting verification with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Transaction{}, err
	}
	defer resp.Body.Close()
	logger.Info().Int("providerStatusCode", resp.StatusCode).Msg("requested verification")

	logger = logger.With().Str(log.KeyProcess, "decoding verification").Logger()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		err = fmt.Errorf("failed reading verification with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Transaction{}, err
	}

	envelope := struct {
		Status  bool            `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err = json.Unmarshal(body, &envelope); err != nil {
		err = fmt.Errorf("failed decoding verification with error=%w", errors.Join(err, ErrUnexpectedResponse))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Transaction{}, err
	}

	// an unknown reference is answered with 4xx and no data
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		if resp.StatusCode >= http.StatusInternalServerError {
			err = fmt.Errorf("provider returned statusCode=%d message=%s with error=%w", resp.StatusCode, envelope.Message, ErrUnexpectedResponse)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return Transaction{}, err
		}
		logger.Info().Str("providerMessage", envelope.Message).Msg("verification returned no transaction")
		return Transaction{Data: TransactionData{Status: envelope.Message, Reference: reference}, Raw: body}, nil
	}

	data := TransactionData{}
	if err = json.Unmarshal(envelope.Data, &data); err != nil {
		err = fmt.Errorf("failed decoding transaction with error=%w", errors.Join(err, ErrUnexpectedResponse))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Transaction{}, err
	}
	logger.Info().Str(log.KeyVerificationStatus, data.Status).Msg("decoded verification")

	return Transaction{Data: data, Raw: envelope.Data}, nil
}
