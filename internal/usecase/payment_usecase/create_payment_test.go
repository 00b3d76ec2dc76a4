package payment

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/vnpay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreatePaymentUsecase_Success(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var created *model.Payment
	payments := new(PaymentRepoMock)
	payments.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Payment) bool {
		created = p
		return p.UserID == 42 &&
			p.AppointmentID == 7 &&
			p.Amount == 150000.5 &&
			p.Status == model.PaymentStatusPending &&
			p.TxnRef != ""
	})).Return(nil)

	uc := NewCreatePaymentUsecase(payments, testGateway(), &fixedClock{now: now})

	out, err := uc.Execute(ctx, CreatePaymentInput{
		UserID:        42,
		AppointmentID: 7,
		Amount:        150000.5,
		OrderInfo:     "Kham tong quat",
		ClientIP:      "203.0.113.9",
	})
	assert.NoError(t, err)
	assert.Equal(t, created.TxnRef, out.TxnRef)
	assert.True(t, strings.HasPrefix(out.PaymentURL, "https://pay.example.com/vpcpay.html?"))

	u, err := url.Parse(out.PaymentURL)
	assert.NoError(t, err)
	q := u.Query()
	assert.Equal(t, out.TxnRef, q.Get(vnpay.FieldTxnRef))
	assert.Equal(t, "15000050", q.Get(vnpay.FieldAmount))
	assert.NotEmpty(t, q.Get(vnpay.FieldSecureHash))

	payments.AssertExpectations(t)
}

func TestCreatePaymentUsecase_InvalidAmount(t *testing.T) {
	payments := new(PaymentRepoMock)
	uc := NewCreatePaymentUsecase(payments, testGateway(), &fixedClock{now: time.Now()})

	for _, amount := range []float64{0, -1} {
		_, err := uc.Execute(context.Background(), CreatePaymentInput{
			UserID:        42,
			AppointmentID: 7,
			Amount:        amount,
			OrderInfo:     "x",
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePaymentUsecase_PersistBeforeURL(t *testing.T) {
	//保存に失敗したらURLは返さない（コールバック照合先のない決済を作らない）
	payments := new(PaymentRepoMock)
	payments.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

	uc := NewCreatePaymentUsecase(payments, testGateway(), &fixedClock{now: time.Now()})

	out, err := uc.Execute(context.Background(), CreatePaymentInput{
		UserID:        42,
		AppointmentID: 7,
		Amount:        100,
		OrderInfo:     "x",
	})
	assert.Error(t, err)
	assert.Empty(t, out.PaymentURL)
}
