package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type paymentGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewPaymentRepository(db *gorm.DB) repo.PaymentRepository {
	return &paymentGormRepository{db: db}
}

// 決済レコードを保存する。
func (r *paymentGormRepository) Create(ctx context.Context, payment *model.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return err
	}
	return nil
}

// txn_refで1件検索します。
func (r *paymentGormRepository) FindByTxnRef(ctx context.Context, txnRef string) (*model.Payment, error) {
	var p model.Payment

	err := r.db.WithContext(ctx).
		Where("txn_ref = ?", txnRef).
		First(&p).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrPaymentNotFound
		}
		return nil, err
	}

	return &p, nil
}

// PENDINGの行だけPAIDにする。コールバックが二重に届いても2回目は0件更新になる。
func (r *paymentGormRepository) MarkPaid(ctx context.Context, txnRef string, gatewayTxnNo string, bankCode string, paidAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("txn_ref = ? AND status = ?", txnRef, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":         model.PaymentStatusPaid,
			"gateway_txn_no": gatewayTxnNo,
			"bank_code":      bankCode,
			"paid_at":        &paidAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrPaymentNotFound
	}

	return nil
}

// PENDINGの行だけFAILEDにする。
func (r *paymentGormRepository) MarkFailed(ctx context.Context, txnRef string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("txn_ref = ? AND status = ?", txnRef, model.PaymentStatusPending).
		Update("status", model.PaymentStatusFailed)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrPaymentNotFound
	}

	return nil
}
