package service

import (
	"net/http"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/suite"

	"github.com/hidecraft/storefront-webhooks/internal/config"
	"github.com/hidecraft/storefront-webhooks/internal/httpclient"
	"github.com/hidecraft/storefront-webhooks/internal/integration/shopify"
	"github.com/hidecraft/storefront-webhooks/internal/logger"
	"github.com/hidecraft/storefront-webhooks/internal/testutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type PaymentConfirmationTestSuite struct {
	suite.Suite
	httpClient *testutil.MockHTTPClient
	svc        PaymentConfirmationService
}

func TestPaymentConfirmation(t *testing.T) {
	suite.Run(t, new(PaymentConfirmationTestSuite))
}

func (s *PaymentConfirmationTestSuite) SetupTest() {
	log, err := logger.NewLogger()
	s.Require().NoError(err)

	cfg := config.GetDefaultConfig()
	cfg.Shopify.ShopDomain = "hidecraft.myshopify.com"
	cfg.Shopify.AdminAccessToken = "shpat_test"

	s.httpClient = testutil.NewMockHTTPClient()
	client := shopify.NewClient(cfg, s.httpClient, log)
	s.svc = NewPaymentConfirmationService(client, log)
}

func (s *PaymentConfirmationTestSuite) registerOrder(order shopify.Order) {
	body, err := json.Marshal(map[string]any{"order": order})
	s.Require().NoError(err)
	s.httpClient.RegisterResponse("/orders/450789469.json", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
	})
}

func (s *PaymentConfirmationTestSuite) updateRequests() []*httpclient.Request {
	var updates []*httpclient.Request
	for _, req := range s.httpClient.Requests() {
		if req.Method == http.MethodPut {
			updates = append(updates, req)
		}
	}
	return updates
}

func (s *PaymentConfirmationTestSuite) decodeUpdate(req *httpclient.Request) (string, string) {
	var payload struct {
		Order struct {
			Tags string `json:"tags"`
			Note string `json:"note"`
		} `json:"order"`
	}
	s.Require().NoError(json.Unmarshal(req.Body, &payload))
	return payload.Order.Tags, payload.Order.Note
}

func (s *PaymentConfirmationTestSuite) TestConfirmByNumericID() {
	s.registerOrder(shopify.Order{ID: 450789469, Name: "#1042", Tags: "vip"})

	err := s.svc.ConfirmPayment(testutil.SetupContext(), "450789469")
	s.NoError(err)

	updates := s.updateRequests()
	s.Require().Len(updates, 1)
	s.Contains(updates[0].URL, "/orders/450789469.json")

	tags, note := s.decodeUpdate(updates[0])
	s.Equal("vip, paid, grow-confirmed", tags)
	s.Contains(note, "Payment confirmed via Grow at ")
}

func (s *PaymentConfirmationTestSuite) TestRepeatedConfirmationConverges() {
	s.registerOrder(shopify.Order{ID: 450789469, Name: "#1042", Tags: "vip"})
	s.NoError(s.svc.ConfirmPayment(testutil.SetupContext(), "450789469"))

	// Second delivery sees the already-tagged order
	s.registerOrder(shopify.Order{ID: 450789469, Name: "#1042", Tags: "vip, paid, grow-confirmed"})
	s.NoError(s.svc.ConfirmPayment(testutil.SetupContext(), "450789469"))

	updates := s.updateRequests()
	s.Require().Len(updates, 2)

	firstTags, _ := s.decodeUpdate(updates[0])
	secondTags, _ := s.decodeUpdate(updates[1])
	s.Equal("vip, paid, grow-confirmed", firstTags)
	s.Equal(firstTags, secondTags)

	// No tag appears twice even across repeated confirmations
	seen := map[string]bool{}
	for _, tag := range strings.Split(secondTags, ",") {
		tag = strings.TrimSpace(strings.ToLower(tag))
		s.False(seen[tag], "duplicate tag %q", tag)
		seen[tag] = true
	}
}

func (s *PaymentConfirmationTestSuite) TestResolvesByNameWhenNotNumeric() {
	orders, err := json.Marshal(map[string]any{
		"orders": []shopify.Order{{ID: 450789469, Name: "#1042"}},
	})
	s.Require().NoError(err)
	s.httpClient.RegisterResponse("/orders.json", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       orders,
	})
	s.registerOrder(shopify.Order{ID: 450789469, Name: "#1042"})

	s.NoError(s.svc.ConfirmPayment(testutil.SetupContext(), "1042-A"))

	s.Equal(1, s.httpClient.RequestCount("name=%231042-A"))
	s.Require().Len(s.updateRequests(), 1)
}

func (s *PaymentConfirmationTestSuite) TestUnknownReferenceErrors() {
	err := s.svc.ConfirmPayment(testutil.SetupContext(), "does-not-exist")
	s.Error(err)
	s.Empty(s.updateRequests())
}

func (s *PaymentConfirmationTestSuite) TestDownstreamFailurePropagates() {
	orders, err := json.Marshal(map[string]any{
		"orders": []shopify.Order{{ID: 450789469, Name: "#1042"}},
	})
	s.Require().NoError(err)
	s.httpClient.RegisterResponse("/orders.json", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       orders,
	})
	s.httpClient.RegisterResponse("/orders/450789469.json", testutil.MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       []byte(`{"errors":"boom"}`),
	})

	err = s.svc.ConfirmPayment(testutil.SetupContext(), "order-1042")
	s.Error(err)
}
