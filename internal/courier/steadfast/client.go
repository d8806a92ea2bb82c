// Package steadfast is a client for the Steadfast (Packzy) courier API.
package steadfast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"byabshik_backend/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const maxResponseBytes = 1 << 20

var (
	// ErrTransportAmbiguous means the request may or may not have reached
	// the courier: a network failure, or an HTML page where JSON was expected.
	ErrTransportAmbiguous = errors.New("courier transport ambiguous")
	// ErrInvalidResponse means the courier answered with something that is
	// neither JSON nor an HTML error page.
	ErrInvalidResponse = errors.New("invalid response format from courier")
	// ErrMissingCredentials is returned before any request is made.
	ErrMissingCredentials = errors.New("courier API keys are missing")
)

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "courier_request_duration_seconds",
		Help:    "Latency of courier API calls",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "result"},
)

// APIError is a structured rejection from the courier. Message is the
// courier's own text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("courier rejected request (%d): %s", e.Status, e.Message)
}

// Credentials select the account and endpoint for one call.
type Credentials struct {
	BaseURL   string
	APIKey    string
	SecretKey string
}

// Complete reports whether both keys are present.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.SecretKey) != ""
}

// CreateOrderInput is the shipment creation payload.
type CreateOrderInput struct {
	Invoice          string
	RecipientName    string
	RecipientPhone   string
	RecipientAddress string
	CODAmount        decimal.Decimal
	Note             string
}

type createOrderBody struct {
	Invoice          string      `json:"invoice"`
	RecipientName    string      `json:"recipient_name"`
	RecipientPhone   string      `json:"recipient_phone"`
	RecipientAddress string      `json:"recipient_address"`
	CODAmount        json.Number `json:"cod_amount"`
	Note             string      `json:"note"`
}

// Consignment is a created shipment.
type Consignment struct {
	ID     string
	Status string
}

// Client calls the courier API. It is safe for concurrent use.
type Client struct {
	http *http.Client
	log  *logger.Logger
}

// NewClient creates a courier client with the given request timeout.
func NewClient(timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// CreateOrder submits a shipment.
func (c *Client) CreateOrder(ctx context.Context, creds Credentials, in CreateOrderInput) (Consignment, error) {
	var out struct {
		envelope
		Consignment struct {
			ConsignmentID flexString `json:"consignment_id"`
			Status        string     `json:"status"`
		} `json:"consignment"`
	}
	body := createOrderBody{
		Invoice:          in.Invoice,
		RecipientName:    in.RecipientName,
		RecipientPhone:   in.RecipientPhone,
		RecipientAddress: in.RecipientAddress,
		CODAmount:        json.Number(in.CODAmount.Round(2).String()),
		Note:             in.Note,
	}
	if err := c.do(ctx, creds, http.MethodPost, "/create_order", body, &out, &out.envelope); err != nil {
		return Consignment{}, err
	}
	if out.Consignment.ConsignmentID == "" {
		return Consignment{}, fmt.Errorf("%w: no consignment id", ErrInvalidResponse)
	}
	return Consignment{ID: string(out.Consignment.ConsignmentID), Status: out.Consignment.Status}, nil
}

// StatusByConsignment returns the courier's raw delivery status.
func (c *Client) StatusByConsignment(ctx context.Context, creds Credentials, consignmentID string) (string, error) {
	var out struct {
		envelope
		DeliveryStatus string `json:"delivery_status"`
	}
	if err := c.do(ctx, creds, http.MethodGet, "/status_by_cid/"+consignmentID, nil, &out, &out.envelope); err != nil {
		return "", err
	}
	return out.DeliveryStatus, nil
}

// Balance returns the account balance. It is used to verify credentials.
func (c *Client) Balance(ctx context.Context, creds Credentials) (decimal.Decimal, error) {
	var out struct {
		envelope
		CurrentBalance decimal.Decimal `json:"current_balance"`
	}
	if err := c.do(ctx, creds, http.MethodGet, "/get_balance", nil, &out, &out.envelope); err != nil {
		return decimal.Zero, err
	}
	return out.CurrentBalance, nil
}

func (c *Client) do(ctx context.Context, creds Credentials, method, path string, in, out any, env *envelope) (err error) {
	if !creds.Complete() {
		return ErrMissingCredentials
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal courier payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	url := strings.TrimRight(creds.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build courier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", creds.APIKey)
	req.Header.Set("Secret-Key", creds.SecretKey)

	endpoint := endpointLabel(path)
	start := time.Now()
	httpStatus := 0
	defer func() {
		latency := time.Since(start)
		requestDuration.WithLabelValues(endpoint, resultLabel(err)).Observe(latency.Seconds())
		if c.log != nil {
			c.log.CourierCall(endpoint, httpStatus, latency, err)
		}
	}()

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrTransportAmbiguous, err)
	}
	defer func() { _ = resp.Body.Close() }()
	httpStatus = resp.StatusCode

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrTransportAmbiguous, err)
	}
	return decode(raw, out, env)
}

// decode parses a response body. HTML in place of JSON is the signature of
// a proxy or edge block, so it is classified as ambiguous.
func decode(raw []byte, out any, env *envelope) error {
	if err := json.Unmarshal(raw, out); err != nil {
		trimmed := strings.ToLower(strings.TrimSpace(string(raw)))
		if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
			return fmt.Errorf("%w: html response", ErrTransportAmbiguous)
		}
		return ErrInvalidResponse
	}
	if env.Status != http.StatusOK {
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			msg = "Steadfast API Error"
		}
		return &APIError{Status: env.Status, Message: msg}
	}
	return nil
}

func endpointLabel(path string) string {
	if strings.HasPrefix(path, "/status_by_cid/") {
		return "/status_by_cid"
	}
	return path
}

func resultLabel(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTransportAmbiguous):
		return "ambiguous"
	case errors.As(err, &apiErr):
		return "rejected"
	default:
		return "error"
	}
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
