package auth

import (
	"context"
	"errors"

	"app/internal/domain/model"
	"app/internal/repository"
)

type SuccessResponse struct {
	Message string `json:"message"`
}

type LogoutAllOutput struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

type LogoutUsecase struct {
	store *RefreshTokenStore
}

func NewLogoutUsecase(store *RefreshTokenStore) *LogoutUsecase {
	return &LogoutUsecase{store: store}
}

// 提示されたrefresh tokenを失効させる。
// 既に失効済み・存在しないトークンでもエラーにしない（冪等）。
func (u *LogoutUsecase) Execute(ctx context.Context, refreshTokenPlain string) (*SuccessResponse, error) {
	if refreshTokenPlain != "" {
		if err := u.store.Revoke(ctx, refreshTokenPlain); err != nil {
			return nil, err
		}
	}

	return &SuccessResponse{Message: "logout success"}, nil
}

// 全端末ログアウト。パスワード変更時・侵害検知時にも使う。
type LogoutAllUsecase struct {
	users repository.UserRepository
	store *RefreshTokenStore
	audit repository.AuditLogRepository
}

func NewLogoutAllUsecase(
	users repository.UserRepository,
	store *RefreshTokenStore,
	audit repository.AuditLogRepository,
) *LogoutAllUsecase {
	return &LogoutAllUsecase{
		users: users,
		store: store,
		audit: audit,
	}
}

// 指定ユーザーの全セッションを失効させる。
func (u *LogoutAllUsecase) Execute(ctx context.Context, targetUserID int64) (*LogoutAllOutput, error) {
	if targetUserID <= 0 {
		return nil, repository.ErrUserNotFound
	}

	//access token側：token_versionを進めて既発行分を全部弾く
	if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
		return nil, err
	}

	//refresh token側：有効な系列を全失効
	if err := u.store.RevokeAll(ctx, targetUserID); err != nil {
		return nil, err
	}

	_ = u.audit.Create(ctx, model.AuditLog{
		UserID: targetUserID,
		Action: model.AuditActionLogoutAll,
	})

	//更新後を取得してnew_token_versionを返す
	user, err := u.users.FindByID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user disappeared after update")
	}

	return &LogoutAllOutput{
		UserID:          user.ID,
		NewTokenVersion: user.TokenVersion,
	}, nil
}
