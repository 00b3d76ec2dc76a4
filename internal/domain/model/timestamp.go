package model

import "time"

// 作成・更新時刻の共通埋め込み。
type Timestamp struct {
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;autoUpdateTime"`
}
