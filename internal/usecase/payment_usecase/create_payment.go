package payment

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
)

// 金額が不正（0以下）
var ErrInvalidAmount = errors.New("invalid amount")

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 決済ゲートウェイの約束（実装は infra/vnpay）
type Gateway interface {
	NewTxnRef() string
	BuildPayURL(txnRef string, amount float64, orderInfo string, clientIP string, now time.Time) string
	ValidateCallback(params map[string]string, providedHex string) bool
}

// handlerからusecaseに渡す入力
type CreatePaymentInput struct {
	UserID        int64
	AppointmentID int64
	Amount        float64
	OrderInfo     string
	ClientIP      string
}

// handlerがJSONにして返す
type CreatePaymentOutput struct {
	PaymentURL string `json:"payment_url"`
	TxnRef     string `json:"txn_ref"`
}

// 決済レコードを作り、署名付きリダイレクトURLを返す。
type CreatePaymentUsecase struct {
	payments repository.PaymentRepository
	gateway  Gateway
	clock    Clock
}

func NewCreatePaymentUsecase(
	payments repository.PaymentRepository,
	gateway Gateway,
	clock Clock,
) *CreatePaymentUsecase {
	return &CreatePaymentUsecase{
		payments: payments,
		gateway:  gateway,
		clock:    clock,
	}
}

func (u *CreatePaymentUsecase) Execute(ctx context.Context, in CreatePaymentInput) (CreatePaymentOutput, error) {
	var out CreatePaymentOutput

	if in.Amount <= 0 {
		return out, ErrInvalidAmount
	}

	//相関ID発行（ゲートウェイ側の照合キーになる）
	txnRef := u.gateway.NewTxnRef()

	p := &model.Payment{
		UserID:        in.UserID,
		AppointmentID: in.AppointmentID,
		TxnRef:        txnRef,
		Amount:        in.Amount,
		OrderInfo:     in.OrderInfo,
		Status:        model.PaymentStatusPending,
	}

	//URLを返す前に必ずPENDINGで保存する（コールバックが先に届いても照合できるように）
	if err := u.payments.Create(ctx, p); err != nil {
		return out, err
	}

	out.PaymentURL = u.gateway.BuildPayURL(txnRef, in.Amount, in.OrderInfo, in.ClientIP, u.clock.Now())
	out.TxnRef = txnRef
	return out, nil
}
