package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// 診察予約に対する決済レコード。
// TxnRefはゲートウェイ照合用の相関ID（プロセス内で一意）。
type Payment struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64         `gorm:"not null;index" json:"user_id"`
	AppointmentID int64         `gorm:"not null;index" json:"appointment_id"`
	TxnRef        string        `gorm:"type:varchar(64);not null;uniqueIndex" json:"txn_ref"`
	Amount        float64       `gorm:"not null" json:"amount"`
	OrderInfo     string        `gorm:"type:varchar(255);not null" json:"order_info"`
	Status        PaymentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	BankCode      string        `gorm:"type:varchar(20)" json:"bank_code"`
	GatewayTxnNo  string        `gorm:"type:varchar(64)" json:"gateway_txn_no"`
	PaidAt        *time.Time    `json:"paid_at"`
	CreatedAt     time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
