package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	RefreshTokens() RefreshTokenRepository
	Users() UserRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// リフレッシュトークンのローテーション（旧の失効＋新の作成）は必ず同一Txで行う。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
