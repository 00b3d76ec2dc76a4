package auth

import (
	"context"
	"errors"

	"app/internal/repository"
)

// handlerがJSONにして返す
type RefreshOutput struct {
	Token JwtAccessToken `json:"token"`
}

// 新しいrefresh tokenはCookie経由で返す
type RefreshSideEffect struct {
	PlainRefreshToken string
}

type RefreshUsecase struct {
	userRepo repository.UserRepository
	issuer   AccessTokenIssuer
	store    *RefreshTokenStore
	clock    Clock
}

func NewRefreshUsecase(
	userRepo repository.UserRepository,
	issuer AccessTokenIssuer,
	store *RefreshTokenStore,
	clock Clock,
) *RefreshUsecase {
	return &RefreshUsecase{
		userRepo: userRepo,
		issuer:   issuer,
		store:    store,
		clock:    clock,
	}
}

// リフレッシュ処理を実行する。
// 成功時は必ず旧トークンが失効して新トークンに置き換わる（Rotateが同一Txで保証）。
func (u *RefreshUsecase) Execute(ctx context.Context, refreshTokenPlain string) (RefreshOutput, RefreshSideEffect, error) {
	var out RefreshOutput
	var side RefreshSideEffect

	if refreshTokenPlain == "" {
		return out, side, ErrRefreshInvalid
	}

	//検証＋ローテーション（replay検知は store が全失効まで済ませる）
	newPlain, rt, err := u.store.Rotate(ctx, refreshTokenPlain)
	if err != nil {
		return out, side, err
	}

	//user取得
	user, err := u.userRepo.FindByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, side, ErrRefreshInvalid
		}
		return out, side, err
	}
	if !user.IsActive {
		return out, side, ErrUserInactive
	}

	//access再発行
	now := u.clock.Now()
	accessToken, accessExp, err := u.issuer.Issue(user, now)
	if err != nil {
		return out, side, err
	}

	out.Token = JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		ExpiresAt:    accessExp,
		TokenVersion: user.TokenVersion,
	}

	side.PlainRefreshToken = newPlain
	return out, side, nil
}
