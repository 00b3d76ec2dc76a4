package payment

import (
	"context"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/vnpay"

	"github.com/stretchr/testify/mock"
)

const testHashSecret = "SECRET"

type PaymentRepoMock struct{ mock.Mock }

func (m *PaymentRepoMock) Create(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *PaymentRepoMock) FindByTxnRef(ctx context.Context, txnRef string) (*model.Payment, error) {
	args := m.Called(ctx, txnRef)
	p, _ := args.Get(0).(*model.Payment)
	return p, args.Error(1)
}

func (m *PaymentRepoMock) MarkPaid(ctx context.Context, txnRef string, gatewayTxnNo string, bankCode string, paidAt time.Time) error {
	args := m.Called(ctx, txnRef, gatewayTxnNo, bankCode, paidAt)
	return args.Error(0)
}

func (m *PaymentRepoMock) MarkFailed(ctx context.Context, txnRef string) error {
	args := m.Called(ctx, txnRef)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func testGateway() *vnpay.Gateway {
	return vnpay.NewGateway(
		"https://pay.example.com/vpcpay.html",
		"CLINIC01",
		testHashSecret,
		"https://clinic.example.com/payments/vnpay/return",
	)
}

// 署名済みのコールバックパラメータを組み立てる。
func signedCallbackParams(fields map[string]string) map[string]string {
	params := map[string]string{}
	for k, v := range fields {
		params[k] = v
	}
	digest := vnpay.Sign(testHashSecret, vnpay.Canonicalize(params, false))
	params[vnpay.FieldSecureHash] = digest
	return params
}
