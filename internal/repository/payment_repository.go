package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
	"time"
)

var ErrPaymentNotFound = errors.New("payment not found")

// 決済レコードの保存・取得・ステータス更新の約束。
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByTxnRef(ctx context.Context, txnRef string) (*model.Payment, error)
	// PENDINGの行だけPAIDへ更新する。0件なら ErrPaymentNotFound（コールバック重複は無視される）。
	MarkPaid(ctx context.Context, txnRef string, gatewayTxnNo string, bankCode string, paidAt time.Time) error
	// PENDINGの行だけFAILEDへ更新する。
	MarkFailed(ctx context.Context, txnRef string) error
}
