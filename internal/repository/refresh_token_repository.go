package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// リフレッシュトークンの保存・取得・失効
// 削除はしない（レコードは監査用に残す）。
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	// active=true の行だけを無効化する。0件なら ErrRefreshTokenNotFound。
	// ローテーション時はこの条件付きUPDATEが「どちらのリクエストが勝ったか」の判定になる。
	Deactivate(ctx context.Context, tokenHash string) error
	// 指定ユーザーの有効なトークンを全て無効化する。0件でもエラーにしない。
	DeactivateAllByUserID(ctx context.Context, userID int64) error
}
