package model

import "time"

// リフレッシュトークン。失効してもレコードは消さず active=false で残す（監査用）。
type RefreshToken struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	TokenHash string    `json:"-" gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	Active    bool      `json:"active" gorm:"not null;default:true;index"`
	Timestamp Timestamp `json:"timestamps" gorm:"embedded"`
}

// 有効期限が切れているかどうか。
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
