package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/inflink/escrow-ledger/internal/config"
	"github.com/inflink/escrow-ledger/internal/constants"
	"github.com/inflink/escrow-ledger/internal/models"
	"github.com/inflink/escrow-ledger/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Operator{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "user-jwt-secret-for-tests-0123456789"
	cfg.JWT.ExpireHours = 24
	cfg.OperatorJWT.SecretKey = "operator-jwt-secret-for-tests-0123456789"
	cfg.OperatorJWT.ExpireHours = 8

	return NewAuthService(cfg, repository.NewOperatorRepository(db)), db
}

func TestOperatorLogin(t *testing.T) {
	svc, db := setupAuthServiceTest(t)

	hash, err := svc.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	operator := models.Operator{Username: "ops", PasswordHash: hash}
	if err := db.Create(&operator).Error; err != nil {
		t.Fatalf("create operator failed: %v", err)
	}

	loggedIn, token, expiresAt, err := svc.OperatorLogin("ops", "s3cret-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loggedIn.ID != operator.ID {
		t.Fatalf("unexpected operator: %+v", loggedIn)
	}
	if token == "" || !expiresAt.After(time.Now()) {
		t.Fatalf("invalid token or expiry: token=%q expires=%v", token, expiresAt)
	}
	if loggedIn.LastLoginAt == nil {
		t.Fatalf("expected last_login_at to be stamped")
	}

	claims, err := svc.ParseOperatorJWT(token)
	if err != nil {
		t.Fatalf("parse operator token failed: %v", err)
	}
	if claims.OperatorID != operator.ID || claims.Username != "ops" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestOperatorLoginRejectsBadCredentials(t *testing.T) {
	svc, db := setupAuthServiceTest(t)

	hash, err := svc.HashPassword("correct-pass")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	if err := db.Create(&models.Operator{Username: "ops", PasswordHash: hash}).Error; err != nil {
		t.Fatalf("create operator failed: %v", err)
	}

	if _, _, _, err := svc.OperatorLogin("ops", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, _, err := svc.OperatorLogin("ghost", "correct-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown operator, got %v", err)
	}
}

func TestParseUserJWT(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	// 身份服务按约定签发的 Token
	claims := UserJWTClaims{
		UserID: 101,
		Role:   constants.RoleBrand,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("user-jwt-secret-for-tests-0123456789"))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}

	parsed, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse user token failed: %v", err)
	}
	if parsed.UserID != 101 || parsed.Role != constants.RoleBrand {
		t.Fatalf("unexpected claims: %+v", parsed)
	}
}

func TestParseUserJWTRejectsWrongKey(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	claims := UserJWTClaims{
		UserID: 101,
		Role:   constants.RoleBrand,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("another-secret-entirely-0123456789"))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	if _, err := svc.ParseUserJWT(token); err == nil {
		t.Fatalf("expected parse to fail for wrong signing key")
	}
}

func TestOperatorTokenNotAcceptedAsUserToken(t *testing.T) {
	svc, db := setupAuthServiceTest(t)

	hash, err := svc.HashPassword("pass")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	operator := models.Operator{Username: "ops", PasswordHash: hash}
	if err := db.Create(&operator).Error; err != nil {
		t.Fatalf("create operator failed: %v", err)
	}

	token, _, err := svc.GenerateOperatorJWT(&operator)
	if err != nil {
		t.Fatalf("generate operator token failed: %v", err)
	}
	// 运营与用户使用独立密钥，Token 不能互换
	if _, err := svc.ParseUserJWT(token); err == nil {
		t.Fatalf("operator token must not pass user token validation")
	}
}
