package model

import "time"

// セキュリティイベントの種類。
type AuditAction string

const (
	//使用済みrefresh tokenの再提示（replayの疑い）。
	AuditActionRefreshReuse AuditAction = "REFRESH_REUSE"

	//決済コールバックの署名不一致。
	AuditActionSignatureMismatch AuditAction = "SIGNATURE_MISMATCH"

	//全セッション強制失効。
	AuditActionLogoutAll AuditAction = "LOGOUT_ALL"
)

// セキュリティ監査ログ。
// 「どのユーザーに対して」「何が起きたか」を残す。拒否イベントは握りつぶさず必ずここに書く。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//対象ユーザーのID。特定できないイベント（署名不一致など）は0。
	UserID int64 `gorm:"index" json:"user_id"`

	//イベントの種類。
	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	//補足情報（txn_refなど）。秘密値は書かない。
	Detail string `gorm:"type:text" json:"detail"`

	//発生時刻
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
