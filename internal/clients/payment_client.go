package clients

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/dto"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// PaymentClient talks to the payment service.
type PaymentClient struct {
	*downstream
}

func NewPaymentClient(baseURL string, timeout time.Duration, opts ...Option) *PaymentClient {
	return &PaymentClient{downstream: newDownstream("payment service", baseURL, timeout, opts...)}
}

// DoPayment charges an order and returns the payment id. The service may
// answer with a bare id or an object carrying "paymentId".
func (c *PaymentClient) DoPayment(ctx context.Context, req dto.PaymentRequest) (uint64, error) {
	resp, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).Post("/api/payment")
	})
	if err != nil {
		return 0, err
	}

	body := gjson.ParseBytes(resp.Body())
	if body.Type != gjson.Number {
		body = body.Get("paymentId")
	}
	if !body.Exists() {
		return 0, apperror.Wrap(http.StatusBadGateway, "payment service returned no payment id", fmt.Errorf("unexpected body %q", resp.String()))
	}
	return body.Uint(), nil
}

func (c *PaymentClient) GetPaymentDetailsByOrderID(ctx context.Context, orderID uint64) (*dto.PaymentResponse, error) {
	var payment dto.PaymentResponse
	_, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetPathParam("orderId", strconv.FormatUint(orderID, 10)).
			SetResult(&payment).
			Get("/api/payment/order/{orderId}")
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
