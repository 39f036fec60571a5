package v1

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/hidecraft/storefront-webhooks/internal/config"
	ierr "github.com/hidecraft/storefront-webhooks/internal/errors"
	"github.com/hidecraft/storefront-webhooks/internal/integration/shopify"
	"github.com/hidecraft/storefront-webhooks/internal/logger"
	"github.com/hidecraft/storefront-webhooks/internal/types"
)

type stubNotificationService struct {
	result bool
	calls  int
	last   *types.OrderNotification
}

func (s *stubNotificationService) Notify(_ context.Context, n *types.OrderNotification) bool {
	s.calls++
	s.last = n
	return s.result
}

type stubPaymentService struct {
	err  error
	refs []string
}

func (s *stubPaymentService) ConfirmPayment(_ context.Context, reference string) error {
	s.refs = append(s.refs, reference)
	return s.err
}

type WebhookHandlerTestSuite struct {
	suite.Suite
	cfg             *config.Configuration
	notificationSvc *stubNotificationService
	paymentSvc      *stubPaymentService
	router          *gin.Engine
}

func TestWebhookHandler(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.cfg = config.GetDefaultConfig()
	s.cfg.Shopify.WebhookSecret = "sh-secret"
	s.cfg.Payment.WebhookSecret = "grow-secret"

	s.notificationSvc = &stubNotificationService{result: true}
	s.paymentSvc = &stubPaymentService{}

	s.buildRouter()
}

func (s *WebhookHandlerTestSuite) buildRouter() {
	log, err := logger.NewLogger()
	s.Require().NoError(err)

	handler := NewWebhookHandler(
		s.cfg,
		log,
		shopify.NewWebhookVerifier(s.cfg, log),
		s.notificationSvc,
		s.paymentSvc,
	)

	s.router = gin.New()
	s.router.GET("/webhooks/orders", handler.OrderWebhookProbe)
	s.router.POST("/webhooks/orders", handler.HandleOrderWebhook)
	s.router.GET("/webhooks/payment", handler.PaymentWebhookProbe)
	s.router.POST("/webhooks/payment", handler.HandlePaymentWebhook)
}

func (s *WebhookHandlerTestSuite) post(path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *WebhookHandlerTestSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *WebhookHandlerTestSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (s *WebhookHandlerTestSuite) TestOrderWebhookValidSignature() {
	body := []byte(`{"name":"#1042","total_price":"420.00","currency":"ILS","line_items":[{"title":"Belt","quantity":1}]}`)

	w := s.post("/webhooks/orders", body, map[string]string{
		shopify.SignatureHeader: sign("sh-secret", body),
	})

	s.Equal(http.StatusOK, w.Code)
	resp := s.decode(w)
	s.Equal(true, resp["success"])
	s.Equal(true, resp["notified"])
	s.Equal(1, s.notificationSvc.calls)
	s.Equal("#1042", s.notificationSvc.last.OrderRef)
}

func (s *WebhookHandlerTestSuite) TestOrderWebhookReportsFailedDispatch() {
	s.notificationSvc.result = false
	body := []byte(`{"name":"#1042"}`)

	w := s.post("/webhooks/orders", body, map[string]string{
		shopify.SignatureHeader: sign("sh-secret", body),
	})

	s.Equal(http.StatusOK, w.Code)
	resp := s.decode(w)
	s.Equal(true, resp["success"])
	s.Equal(false, resp["notified"])
}

func (s *WebhookHandlerTestSuite) TestOrderWebhookInvalidSignature() {
	body := []byte(`{"name":"#1042"}`)

	w := s.post("/webhooks/orders", body, map[string]string{
		shopify.SignatureHeader: sign("wrong-secret", body),
	})

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid webhook signature", s.decode(w)["error"])
	s.Equal(0, s.notificationSvc.calls)
}

func (s *WebhookHandlerTestSuite) TestOrderWebhookMissingSignature() {
	w := s.post("/webhooks/orders", []byte(`{"name":"#1042"}`), nil)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(0, s.notificationSvc.calls)
}

func (s *WebhookHandlerTestSuite) TestOrderWebhookOpenMode() {
	s.cfg.Shopify.WebhookSecret = ""
	s.buildRouter()

	w := s.post("/webhooks/orders", []byte(`{"name":"#1042"}`), nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal(1, s.notificationSvc.calls)
}

func (s *WebhookHandlerTestSuite) TestOrderWebhookMalformedBody() {
	body := []byte(`{"name":`)

	w := s.post("/webhooks/orders", body, map[string]string{
		shopify.SignatureHeader: sign("sh-secret", body),
	})

	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal(0, s.notificationSvc.calls)
}

func (s *WebhookHandlerTestSuite) TestOrderWebhookProbe() {
	w := s.get("/webhooks/orders")

	s.Equal(http.StatusOK, w.Code)
	resp := s.decode(w)
	s.Equal("active", resp["message"])
	s.NotEmpty(resp["timestamp"])
}

func (s *WebhookHandlerTestSuite) TestPaymentWebhookPaid() {
	w := s.post("/webhooks/payment",
		[]byte(`{"status":"paid","reference":"R1"}`),
		map[string]string{"x-webhook-signature": "grow-secret"})

	s.Equal(http.StatusOK, w.Code)
	s.Equal(true, s.decode(w)["success"])
	s.Equal([]string{"R1"}, s.paymentSvc.refs)
}

func (s *WebhookHandlerTestSuite) TestPaymentWebhookAcceptsAPIKeyHeader() {
	w := s.post("/webhooks/payment",
		[]byte(`{"status":"paid","reference":"R1"}`),
		map[string]string{"x-api-key": "grow-secret"})

	s.Equal(http.StatusOK, w.Code)
	s.Equal([]string{"R1"}, s.paymentSvc.refs)
}

func (s *WebhookHandlerTestSuite) TestPaymentWebhookDownstreamFailureStillAcknowledges() {
	s.paymentSvc.err = ierr.NewError("order update failed").
		WithHint("Shopify rejected the update").
		Mark(ierr.ErrHTTPClient)

	w := s.post("/webhooks/payment",
		[]byte(`{"status":"paid","reference":"R1"}`),
		map[string]string{"x-webhook-signature": "grow-secret"})

	s.Equal(http.StatusOK, w.Code)
	resp := s.decode(w)
	s.Equal(true, resp["success"])
	s.NotEmpty(resp["error"])
	s.Equal([]string{"R1"}, s.paymentSvc.refs)
}

func (s *WebhookHandlerTestSuite) TestPaymentWebhookMissingReference() {
	w := s.post("/webhooks/payment",
		[]byte(`{"status":"paid"}`),
		map[string]string{"x-webhook-signature": "grow-secret"})

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Missing order reference", s.decode(w)["error"])
	s.Empty(s.paymentSvc.refs)
}

func (s *WebhookHandlerTestSuite) TestPaymentWebhookNonPaidOutcome() {
	w := s.post("/webhooks/payment",
		[]byte(`{"status":"pending","reference":"R1"}`),
		map[string]string{"x-webhook-signature": "grow-secret"})

	s.Equal(http.StatusOK, w.Code)
	s.Equal(true, s.decode(w)["success"])
	s.Empty(s.paymentSvc.refs)
}

func (s *WebhookHandlerTestSuite) TestPaymentWebhookBadSecret() {
	w := s.post("/webhooks/payment",
		[]byte(`{"status":"paid","reference":"R1"}`),
		map[string]string{"x-webhook-signature": "nope"})

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid webhook signature", s.decode(w)["error"])
	s.Empty(s.paymentSvc.refs)
}

func (s *WebhookHandlerTestSuite) TestPaymentWebhookMissingSecret() {
	w := s.post("/webhooks/payment", []byte(`{"status":"paid","reference":"R1"}`), nil)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Empty(s.paymentSvc.refs)
}

func (s *WebhookHandlerTestSuite) TestPaymentWebhookMalformedBody() {
	w := s.post("/webhooks/payment",
		[]byte(`{"status":`),
		map[string]string{"x-webhook-signature": "grow-secret"})

	s.Equal(http.StatusInternalServerError, w.Code)
	s.Empty(s.paymentSvc.refs)
}

func (s *WebhookHandlerTestSuite) TestPaymentWebhookProbe() {
	w := s.get("/webhooks/payment")

	s.Equal(http.StatusOK, w.Code)
	resp := s.decode(w)
	s.Equal("active", resp["message"])
	s.NotEmpty(resp["timestamp"])
}
