package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
)

// リフレッシュトークンの乱数長（64バイト=512ビット）。
const refreshTokenBytes = 64

var (
	// 不明・失効済み・期限切れを呼び出し側に区別させない（情報を漏らさない）
	ErrRefreshInvalid = errors.New("invalid refresh token")

	// 使用済みトークンの再提示。セキュリティイベントとして扱い、系列ごと全失効する。
	ErrRefreshReuse = errors.New("refresh token reuse detected")
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// リフレッシュトークンの発行・検証・ローテーション・失効。
// DBには平文ではなくSHA-256ハッシュだけを保存する（発行時の戻り値以降、平文は二度と取り出せない）。
type RefreshTokenStore struct {
	repo  repository.RefreshTokenRepository
	tx    repository.TransactionManager
	audit repository.AuditLogRepository
	idGen IDGenerator
	clock Clock
	ttl   time.Duration
}

func NewRefreshTokenStore(
	repo repository.RefreshTokenRepository,
	tx repository.TransactionManager,
	audit repository.AuditLogRepository,
	idGen IDGenerator,
	clock Clock,
	ttl time.Duration,
) *RefreshTokenStore {
	return &RefreshTokenStore{
		repo:  repo,
		tx:    tx,
		audit: audit,
		idGen: idGen,
		clock: clock,
		ttl:   ttl,
	}
}

// 新しいリフレッシュトークンを発行して平文を返す。
func (s *RefreshTokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	return s.issueIn(ctx, s.repo, userID)
}

func (s *RefreshTokenStore) issueIn(ctx context.Context, repo repository.RefreshTokenRepository, userID int64) (string, error) {
	plain, err := generateSecureToken(refreshTokenBytes)
	if err != nil {
		return "", err
	}

	rt := &model.RefreshToken{
		ID:        s.idGen.NewID(),
		UserID:    userID,
		TokenHash: hashToken(plain),
		ExpiresAt: s.clock.Now().Add(s.ttl),
		Active:    true,
	}

	if err := repo.Create(ctx, rt); err != nil {
		return "", err
	}

	return plain, nil
}

// 平文トークンを検証してレコードを返す。
// 見つからない・失効済み・期限切れはすべて ErrRefreshInvalid（どれで落ちたかは返さない）。
func (s *RefreshTokenStore) Validate(ctx context.Context, plain string) (*model.RefreshToken, error) {
	rt, err := s.repo.FindByTokenHash(ctx, hashToken(plain))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if !rt.Active || rt.Expired(s.clock.Now()) {
		return nil, ErrRefreshInvalid
	}

	return rt, nil
}

// ローテーション：提示されたトークンを失効させ、新しいトークンを同一Txで発行する。
// 失効済みトークンの提示はreplayとみなし、ユーザーの全トークンを失効させる。
func (s *RefreshTokenStore) Rotate(ctx context.Context, plain string) (string, *model.RefreshToken, error) {
	hash := hashToken(plain)

	rt, err := s.repo.FindByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return "", nil, ErrRefreshInvalid
		}
		return "", nil, err
	}

	//使用済みが来たら replay → 全失効
	if !rt.Active {
		s.onReuse(ctx, rt)
		return "", nil, ErrRefreshReuse
	}

	//期限切れ
	if rt.Expired(s.clock.Now()) {
		return "", nil, ErrRefreshInvalid
	}

	// 旧の失効と新の発行を同一Txで行う。
	// Deactivateは active=true の条件付きUPDATEなので、同じトークンでの並行リフレッシュは片方しか勝てない。
	var newPlain string
	err = s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.RefreshTokens().Deactivate(ctx, hash); err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return ErrRefreshReuse
			}
			return err
		}

		plain, err := s.issueIn(ctx, r.RefreshTokens(), rt.UserID)
		if err != nil {
			return err
		}
		newPlain = plain
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrRefreshReuse) {
			//並行リフレッシュに負けた＝同じトークンが二重に使われた
			s.onReuse(ctx, rt)
			return "", nil, ErrRefreshReuse
		}
		return "", nil, err
	}

	return newPlain, rt, nil
}

// 失効させる。存在しない・失効済みでもエラーにしない（冪等）。
func (s *RefreshTokenStore) Revoke(ctx context.Context, plain string) error {
	err := s.repo.Deactivate(ctx, hashToken(plain))
	if errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return nil
	}
	return err
}

// 指定ユーザーの有効トークンを全失効させる。
func (s *RefreshTokenStore) RevokeAll(ctx context.Context, userID int64) error {
	return s.repo.DeactivateAllByUserID(ctx, userID)
}

// replay検知時の対応：全失効＋監査ログ。
func (s *RefreshTokenStore) onReuse(ctx context.Context, rt *model.RefreshToken) {
	_ = s.repo.DeactivateAllByUserID(ctx, rt.UserID)
	_ = s.audit.Create(ctx, model.AuditLog{
		UserID: rt.UserID,
		Action: model.AuditActionRefreshReuse,
		Detail: "token_id=" + rt.ID,
	})
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
