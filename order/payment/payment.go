package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	inHttp "github.com/latienda/backend/internal/http"
	"github.com/latienda/backend/internal/log"
	inOtel "github.com/latienda/backend/internal/otel"
	"github.com/latienda/backend/order/otel"
)

type Authorization struct {
	OrderNumber string          `json:"order_number"`
	Amount      decimal.Decimal `json:"amount"`
	CardNumber  string          `json:"card_number"`
	CardHolder  string          `json:"card_holder"`
}

type Result struct {
	Approved  bool   `json:"approved"`
	Reference string `json:"reference"`
}

// Authorizer charges the order total before stock is committed.
type Authorizer interface {
	Authorize(c context.Context, param Authorization) (Result, error)
}

// NewAuthorizer returns an HTTP authorizer when url is configured, otherwise
// an authorizer that approves every charge. The latter keeps checkout usable
// in environments without a payment gateway.
func NewAuthorizer(url string) Authorizer {
	if url == "" {
		return approveAll{}
	}
	return httpAuthorizer{url: url}
}

type approveAll struct{}

func (approveAll) Authorize(c context.Context, param Authorization) (Result, error) {
	_, span := otel.Tracer.Start(c, "approveAll Authorize")
	defer span.End()
	return Result{Approved: true, Reference: "local-" + param.OrderNumber}, nil
}

type httpAuthorizer struct {
	url string
}

func (a httpAuthorizer) Authorize(c context.Context, param Authorization) (Result, error) {
	c, span := otel.Tracer.Start(c, "httpAuthorizer Authorize")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "httpAuthorizer Authorize").
		Str(log.KeyOrderNumber, param.OrderNumber).
		Logger()

	body := bytes.Buffer{}
	err := json.NewEncoder(&body).Encode(param)
	if err != nil {
		err = fmt.Errorf("failed encoding authorization with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(c, http.MethodPost, a.url, &body)
	if err != nil {
		err = fmt.Errorf("failed creating authorization request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}
	req.Header.Add(inHttp.HeaderContentType, inHttp.HeaderValueJson)
	req.Header.Add(inHttp.KeyHeaderRequestId, log.RequestIDFromContext(c))

	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed authorizing payment with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("payment gateway returned status=%d", resp.StatusCode)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}

	result := Result{}
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		err = fmt.Errorf("failed decoding authorization result with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}
	logger.Info().Bool("approved", result.Approved).Msg("authorized payment")

	return result, nil
}
