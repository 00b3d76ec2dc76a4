package auth

import (
	"context"
	"testing"
	"time"

	"app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRefreshUsecase_Success(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	repo := newFakeRefreshRepo()
	store := newTestStore(repo, new(AuditRepoMock), &fixedClock{now: now}, time.Hour)

	userRepo := new(UserRepoMock)
	userRepo.On("FindByID", mock.Anything, int64(42)).Return(activePatient(), nil)

	uc := NewRefreshUsecase(userRepo, &stubIssuer{token: "new-jwt"}, store, &fixedClock{now: now})

	oldPlain, _ := store.Issue(ctx, 42)

	out, side, err := uc.Execute(ctx, oldPlain)
	assert.NoError(t, err)
	assert.Equal(t, "new-jwt", out.Token.AccessToken)
	assert.Equal(t, 2, out.Token.TokenVersion)

	//新しいrefresh tokenに置き換わっている
	assert.NotEmpty(t, side.PlainRefreshToken)
	assert.NotEqual(t, oldPlain, side.PlainRefreshToken)

	//旧トークンは失効済み
	_, err = store.Validate(ctx, oldPlain)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestRefreshUsecase_SecondUseFails(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	repo := newFakeRefreshRepo()
	audit := new(AuditRepoMock)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)
	store := newTestStore(repo, audit, &fixedClock{now: now}, time.Hour)

	userRepo := new(UserRepoMock)
	userRepo.On("FindByID", mock.Anything, int64(42)).Return(activePatient(), nil)

	uc := NewRefreshUsecase(userRepo, &stubIssuer{token: "new-jwt"}, store, &fixedClock{now: now})

	oldPlain, _ := store.Issue(ctx, 42)

	_, _, err := uc.Execute(ctx, oldPlain)
	assert.NoError(t, err)

	//同じトークンの2回目はreplay扱い
	_, _, err = uc.Execute(ctx, oldPlain)
	assert.ErrorIs(t, err, ErrRefreshReuse)
	assert.Equal(t, 0, repo.activeCount(42))
}

func TestRefreshUsecase_EmptyToken(t *testing.T) {
	store := newTestStore(newFakeRefreshRepo(), new(AuditRepoMock), &fixedClock{now: time.Now()}, time.Hour)
	uc := NewRefreshUsecase(new(UserRepoMock), &stubIssuer{token: "t"}, store, &fixedClock{now: time.Now()})

	_, _, err := uc.Execute(context.Background(), "")
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestRefreshUsecase_UserGone(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	store := newTestStore(newFakeRefreshRepo(), new(AuditRepoMock), &fixedClock{now: now}, time.Hour)

	userRepo := new(UserRepoMock)
	userRepo.On("FindByID", mock.Anything, int64(42)).Return(nil, repository.ErrUserNotFound)

	uc := NewRefreshUsecase(userRepo, &stubIssuer{token: "t"}, store, &fixedClock{now: now})

	plain, _ := store.Issue(ctx, 42)

	_, _, err := uc.Execute(ctx, plain)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestRefreshUsecase_InactiveUser(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	store := newTestStore(newFakeRefreshRepo(), new(AuditRepoMock), &fixedClock{now: now}, time.Hour)

	user := activePatient()
	user.IsActive = false
	userRepo := new(UserRepoMock)
	userRepo.On("FindByID", mock.Anything, int64(42)).Return(user, nil)

	uc := NewRefreshUsecase(userRepo, &stubIssuer{token: "t"}, store, &fixedClock{now: now})

	plain, _ := store.Issue(ctx, 42)

	_, _, err := uc.Execute(ctx, plain)
	assert.ErrorIs(t, err, ErrUserInactive)
}
