package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/comanda/comanda/internal/config"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/httpclient"
	"github.com/comanda/comanda/internal/logger"
)

type httpGateway struct {
	client  httpclient.Client
	baseURL string
	timeout time.Duration
	logger  *logger.Logger
}

// NewClient creates a gateway client against the configured processor API
func NewClient(cfg *config.Configuration, client httpclient.Client, log *logger.Logger) Client {
	return &httpGateway{
		client:  client,
		baseURL: cfg.Gateway.BaseURL,
		timeout: cfg.Gateway.Timeout,
		logger:  log,
	}
}

func (g *httpGateway) GetPaymentDetail(ctx context.Context, paymentID string, accessToken string) (*PaymentDetail, error) {
	resp, err := g.client.Send(ctx, &httpclient.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/v1/payments/%s", g.baseURL, paymentID),
		Headers: g.authHeaders(accessToken),
		Timeout: g.timeout,
	})
	if err != nil {
		return nil, g.classify(err, paymentID)
	}

	var detail PaymentDetail
	if err := json.Unmarshal(resp.Body, &detail); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Processor returned an unparseable payment detail").
			Mark(ierr.ErrGateway)
	}
	return &detail, nil
}

func (g *httpGateway) CreatePreference(ctx context.Context, req *PreferenceRequest, accessToken string) (*Preference, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to encode preference request").
			Mark(ierr.ErrValidation)
	}

	resp, err := g.client.Send(ctx, &httpclient.Request{
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/checkout/preferences", g.baseURL),
		Headers: g.authHeaders(accessToken),
		Body:    body,
		Timeout: g.timeout,
	})
	if err != nil {
		return nil, g.classify(err, req.ExternalReferenceID)
	}

	var pref Preference
	if err := json.Unmarshal(resp.Body, &pref); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Processor returned an unparseable preference").
			Mark(ierr.ErrGateway)
	}
	return &pref, nil
}

func (g *httpGateway) authHeaders(accessToken string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + accessToken,
	}
}

// classify maps transport errors onto the gateway error taxonomy. A 404
// means this credential does not know the payment, which is a non-match for
// the resolver, not a failure.
func (g *httpGateway) classify(err error, ref string) error {
	if httpErr, ok := httpclient.IsHTTPError(err); ok {
		if httpErr.StatusCode == http.StatusNotFound {
			return ierr.WithError(err).
				WithHint("Payment not found for this credential").
				Mark(ierr.ErrNotFound)
		}
		if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
			return ierr.WithError(err).
				WithHint("Credential rejected by the processor").
				WithReportableDetails(map[string]any{
					"reference": ref,
				}).
				Mark(ierr.ErrGateway)
		}
		return ierr.WithError(err).
			WithHint("Processor request failed").
			Mark(ierr.ErrGateway)
	}
	if ierr.IsGatewayTimeout(err) {
		return err
	}
	return ierr.WithError(err).
		WithHint("Processor unreachable").
		Mark(ierr.ErrGateway)
}
