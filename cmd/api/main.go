package main

import (
	"log"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/infra/vnpay"
	"app/internal/server"
	"app/internal/token"
	auth "app/internal/usecase/auth_usecase"
	payment "app/internal/usecase/payment_usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envは任意（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Payment{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	paymentRepo := infraRepo.NewPaymentRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(auth.DefaultBcryptCost)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := token.NewIssuer(
		cfg.JWTSecret,
		cfg.JWTSecretPrevious,
		cfg.JWTIssuer,
		cfg.JWTAudience,
		time.Duration(cfg.AccessTokenTTLMin)*time.Minute,
	)

	//refresh TTL
	refreshTTL := time.Duration(cfg.RefreshTokenTTLDays) * 24 * time.Hour

	//RefreshTokenStore
	store := auth.NewRefreshTokenStore(rtRepo, txManager, auditRepo, idGen, clock, refreshTTL)

	//決済ゲートウェイ
	gateway := vnpay.NewGateway(cfg.VNPPayURL, cfg.VNPTmnCode, cfg.VNPHashSecret, cfg.VNPReturnURL)

	//Usecase生成
	registerUC := auth.NewRegisterUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, store, clock)
	refreshUC := auth.NewRefreshUsecase(userRepo, issuer, store, clock)
	logoutUC := auth.NewLogoutUsecase(store)
	logoutAllUC := auth.NewLogoutAllUsecase(userRepo, store, auditRepo)

	createPaymentUC := payment.NewCreatePaymentUsecase(paymentRepo, gateway, clock)
	callbackUC := payment.NewHandleCallbackUsecase(paymentRepo, auditRepo, gateway, clock)

	//Handler生成
	authH := handler.NewAuthHandler(registerUC, loginUC, refreshUC, logoutUC, logoutAllUC, refreshTTL)
	paymentH := handler.NewPaymentHandler(createPaymentUC, callbackUC)

	//Server起動
	e := server.New()
	server.RegisterRoutes(e, issuer, userRepo, authH, paymentH)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(e, addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
