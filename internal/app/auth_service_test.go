package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gopherchat/internal/model"
	"gopherchat/internal/pkg/jwtutil"
	"gopherchat/internal/repository"
)

const testSecret = "test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Chat{}, &model.Message{}))
	return db
}

func newAuthService(t *testing.T, ttl time.Duration) *AuthService {
	t.Helper()
	return NewAuthService(repository.NewUserRepository(newTestDB(t)), testSecret, ttl)
}

func TestRegisterThenLogin(t *testing.T) {
	svc := newAuthService(t, 30*time.Minute)

	user, err := svc.Register(RegisterInput{Email: "alice@x.com", Password: "secret"})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "alice@x.com", user.Email)
	require.Empty(t, user.Chats)

	token, err := svc.Login(LoginInput{Email: "alice@x.com", Password: "secret"})
	require.NoError(t, err)

	claims, err := jwtutil.ParseToken(testSecret, token)
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", claims.Subject)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t, 30*time.Minute)

	_, err := svc.Register(RegisterInput{Email: "alice@x.com", Password: "secret"})
	require.NoError(t, err)

	_, err = svc.Login(LoginInput{Email: "alice@x.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredential)

	// An unknown email fails the same way.
	_, err = svc.Login(LoginInput{Email: "nobody@x.com", Password: "secret"})
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t, 30*time.Minute)

	_, err := svc.Register(RegisterInput{Email: "alice@x.com", Password: "secret"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{Email: "alice@x.com", Password: "other"})
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterStoresBcryptHash(t *testing.T) {
	svc := newAuthService(t, 30*time.Minute)

	user, err := svc.Register(RegisterInput{Email: "alice@x.com", Password: "secret"})
	require.NoError(t, err)
	require.NotEqual(t, "secret", user.HashedPassword)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("secret")))
	require.Error(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("other")))
}

func TestExpiredTokenIsRejected(t *testing.T) {
	svc := newAuthService(t, -time.Second)

	_, err := svc.Register(RegisterInput{Email: "alice@x.com", Password: "secret"})
	require.NoError(t, err)

	token, err := svc.Login(LoginInput{Email: "alice@x.com", Password: "secret"})
	require.NoError(t, err)

	_, err = jwtutil.ParseToken(testSecret, token)
	require.Error(t, err)
}

func TestResolveUserUnknownSubject(t *testing.T) {
	svc := newAuthService(t, 30*time.Minute)

	_, err := svc.ResolveUser("ghost@x.com")
	require.ErrorIs(t, err, ErrUnknownUser)
}
