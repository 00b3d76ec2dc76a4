package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

// =====================
// インメモリのrefresh token repo（ローテーションの状態遷移を本物の条件付きUPDATE相当で再現する）
// =====================

type fakeRefreshRepo struct {
	mu     sync.Mutex
	byHash map[string]*model.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{byHash: map[string]*model.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, token *model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *token
	f.byHash[token.TokenHash] = &cp
	return nil
}

func (f *fakeRefreshRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt, ok := f.byHash[tokenHash]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	cp := *rt
	return &cp, nil
}

func (f *fakeRefreshRepo) Deactivate(ctx context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt, ok := f.byHash[tokenHash]
	if !ok || !rt.Active {
		//active=true条件付きUPDATEが0件
		return repository.ErrRefreshTokenNotFound
	}
	rt.Active = false
	return nil
}

func (f *fakeRefreshRepo) DeactivateAllByUserID(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rt := range f.byHash {
		if rt.UserID == userID {
			rt.Active = false
		}
	}
	return nil
}

func (f *fakeRefreshRepo) activeCount(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rt := range f.byHash {
		if rt.UserID == userID && rt.Active {
			n++
		}
	}
	return n
}

type fakeTxRepos struct {
	refresh repository.RefreshTokenRepository
	users   repository.UserRepository
}

func (f *fakeTxRepos) RefreshTokens() repository.RefreshTokenRepository { return f.refresh }
func (f *fakeTxRepos) Users() repository.UserRepository                 { return f.users }

type fakeTxManager struct {
	refresh repository.RefreshTokenRepository
	users   repository.UserRepository
}

func (f *fakeTxManager) WithinTx(ctx context.Context, fn func(r repository.TxRepos) error) error {
	return fn(&fakeTxRepos{refresh: f.refresh, users: f.users})
}

// =====================
// Clock / IDGenerator
// =====================

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

// =====================
// 発行・照合のスタブ
// =====================

type stubIssuer struct {
	token string
	err   error
}

func (s *stubIssuer) Issue(user *model.User, now time.Time) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return s.token, now.Add(time.Hour), nil
}

type stubVerifier struct{ ok bool }

func (s *stubVerifier) Verify(plain string, hashed string) bool { return s.ok }

// =====================
// ヘルパー
// =====================

func newTestStore(repo *fakeRefreshRepo, audit *AuditRepoMock, clock *fixedClock, ttl time.Duration) *RefreshTokenStore {
	return NewRefreshTokenStore(
		repo,
		&fakeTxManager{refresh: repo},
		audit,
		&seqIDGen{},
		clock,
		ttl,
	)
}
