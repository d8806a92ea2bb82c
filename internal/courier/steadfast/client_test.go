package steadfast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"byabshik_backend/platform/logger"

	"github.com/shopspring/decimal"
)

func newTestClient() *Client {
	return NewClient(2*time.Second, logger.New("test"))
}

func creds(url string) Credentials {
	return Credentials{BaseURL: url, APIKey: "key", SecretKey: "secret"}
}

func TestCreateOrderSuccess(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/create_order" || r.Header.Get("api-key") != "key" || r.Header.Get("secret-key") != "secret" {
			t.Errorf("unexpected request %s %v", r.URL.Path, r.Header)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"status":200,"message":"ok","consignment":{"consignment_id":1424107,"status":"in_review"}}`))
	}))
	defer srv.Close()

	c, err := newTestClient().CreateOrder(context.Background(), creds(srv.URL), CreateOrderInput{
		Invoice: "ORD-123456", RecipientName: "Rahim", RecipientPhone: "01711000001",
		RecipientAddress: "Dhaka", CODAmount: decimal.RequireFromString("500.5"), Note: "n",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID != "1424107" || c.Status != "in_review" {
		t.Fatalf("unexpected consignment %+v", c)
	}
	if got["invoice"] != "ORD-123456" || got["cod_amount"] != 500.5 {
		t.Fatalf("unexpected payload %v", got)
	}
}

func TestResponseClassification(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		ambiguous bool
		invalid   bool
		apiMsg    string
	}{
		{name: "html page", body: "<!DOCTYPE html><html><body>blocked</body></html>", ambiguous: true},
		{name: "bare html", body: "  <html>oops</html>", ambiguous: true},
		{name: "plain text", body: "internal error", invalid: true},
		{name: "structured rejection", body: `{"status":400,"message":"Invalid recipient phone"}`, apiMsg: "Invalid recipient phone"},
		{name: "rejection without message", body: `{"status":401}`, apiMsg: "Steadfast API Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient().StatusByConsignment(context.Background(), creds(srv.URL), "1")
			if errors.Is(err, ErrTransportAmbiguous) != tt.ambiguous {
				t.Fatalf("ambiguous mismatch: %v", err)
			}
			if errors.Is(err, ErrInvalidResponse) != tt.invalid {
				t.Fatalf("invalid mismatch: %v", err)
			}
			var apiErr *APIError
			if tt.apiMsg != "" && (!errors.As(err, &apiErr) || apiErr.Message != tt.apiMsg) {
				t.Fatalf("expected courier message %q, got %v", tt.apiMsg, err)
			}
		})
	}
}

func TestNetworkFailureIsAmbiguous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient().Balance(context.Background(), creds(url))
	if !errors.Is(err, ErrTransportAmbiguous) {
		t.Fatalf("expected ambiguous error, got %v", err)
	}
}

func TestStatusAndBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/status_by_cid/777":
			_, _ = w.Write([]byte(`{"status":200,"delivery_status":"delivered"}`))
		case "/get_balance":
			_, _ = w.Write([]byte(`{"status":200,"current_balance":1520.75}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	client := newTestClient()

	status, err := client.StatusByConsignment(context.Background(), creds(srv.URL), "777")
	if err != nil || status != "delivered" {
		t.Fatalf("status: %q %v", status, err)
	}
	bal, err := client.Balance(context.Background(), creds(srv.URL))
	if err != nil || !bal.Equal(decimal.RequireFromString("1520.75")) {
		t.Fatalf("balance: %s %v", bal, err)
	}
}

func TestMissingCredentialsSkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	_, err := newTestClient().Balance(context.Background(), Credentials{BaseURL: srv.URL, APIKey: "k"})
	if !errors.Is(err, ErrMissingCredentials) || called {
		t.Fatalf("expected no request and missing credentials, got %v called=%v", err, called)
	}
}
