package user

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/pkg/apperr"
	"github.com/your-org/storefront-api/internal/pkg/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "storefront-test", Environment: "test"},
		JWT: config.JWTConfig{
			AccessSecret:       "access-secret",
			RefreshSecret:      "refresh-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&User{}, &Address{}, &CartItem{}, &WishlistItem{}))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	cfg := testConfig()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(db, cfg, auth.NewJWTManager(cfg), auth.NewMemoryRevocationStore(), log), db
}

func register(t *testing.T, s *Service, email, phone string) *AuthResult {
	t.Helper()
	res, err := s.Register(context.Background(), &RegisterRequest{
		Name:     "Mona Adel",
		Email:    email,
		Password: "secret1",
		Phone:    phone,
	})
	require.NoError(t, err)
	return res
}

func TestRegister(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	res := register(t, s, "  Mona@Example.com ", "+201111111111")
	assert.NotZero(t, res.User.ID)
	assert.Equal(t, "mona@example.com", res.User.Email)
	assert.NotEqual(t, "secret1", res.User.Password)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	assert.True(t, res.User.Preferences.Newsletter)
	assert.False(t, res.User.Preferences.SMSNotifications)

	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{
			name:    "missing phone",
			req:     RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"},
			wantErr: ErrMissingFields,
		},
		{
			name:    "duplicate email",
			req:     RegisterRequest{Name: "A", Email: "mona@example.com", Password: "secret1", Phone: "+202222222222"},
			wantErr: ErrEmailTaken,
		},
		{
			name:    "duplicate phone",
			req:     RegisterRequest{Name: "A", Email: "other@example.com", Password: "secret1", Phone: "+201111111111"},
			wantErr: ErrPhoneTaken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(ctx, &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := s.Register(ctx, &RegisterRequest{Name: "A", Email: "short@example.com", Password: "123", Phone: "1"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, apperr.MessageOf(err, ""), "at least 6 characters")
}

func TestRegisterLosingEmailRace(t *testing.T) {
	s, db := newTestService(t)

	// Insert the same email right after the existence check has run
	inserted := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:concurrent_register", func(tx *gorm.DB) {
		if inserted || tx.Statement.Table != "users" {
			return
		}
		inserted = true
		rival := User{Name: "Rival", Email: "race@example.com", Password: "hash", Phone: "+209999999999"}
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Create(&rival).Error)
	}))

	_, err := s.Register(context.Background(), &RegisterRequest{
		Name: "Late", Email: "race@example.com", Password: "secret1", Phone: "+208888888888",
	})
	require.True(t, inserted)
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegisterWithAddresses(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	res, err := s.Register(ctx, &RegisterRequest{
		Name: "A", Email: "a@example.com", Password: "secret1", Phone: "1",
		Addresses: []AddressInput{
			{Street: "1 Nile St", City: "Cairo", State: "Cairo"},
			{Street: "2 Sea St", City: "Alexandria", State: "Alexandria", IsDefault: true},
		},
	})
	require.NoError(t, err)

	profile, err := s.GetProfile(ctx, res.User.ID)
	require.NoError(t, err)
	require.Len(t, profile.Addresses, 2)
	assert.False(t, profile.Addresses[0].IsDefault)
	assert.True(t, profile.Addresses[1].IsDefault)
	assert.Equal(t, "Egypt", profile.Addresses[0].Country)

	_, err = s.Register(ctx, &RegisterRequest{
		Name: "B", Email: "b@example.com", Password: "secret1", Phone: "2",
		Addresses: []AddressInput{{Street: "x"}},
	})
	require.Error(t, err)
	assert.Contains(t, apperr.MessageOf(err, ""), "addresses[0].city is required")
}

func TestLogin(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	register(t, s, "mona@example.com", "1")

	res, err := s.Login(ctx, &LoginRequest{Email: "MONA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	require.NotNil(t, res.User.LastLogin)

	_, err = s.Login(ctx, &LoginRequest{Email: "mona@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	reg := register(t, s, "mona@example.com", "1")

	res, err := s.Refresh(ctx, reg.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.NotEqual(t, reg.Tokens.RefreshToken, res.Tokens.RefreshToken)

	_, err = s.Refresh(ctx, reg.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid, "rotated token cannot be reused")

	_, err = s.Refresh(ctx, reg.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestRefreshExpired(t *testing.T) {
	s, _ := newTestService(t)
	reg := register(t, s, "mona@example.com", "1")

	expiredCfg := testConfig()
	expiredCfg.JWT.RefreshTokenExpiry = -time.Minute
	expired, err := auth.NewJWTManager(expiredCfg).GenerateRefreshToken(reg.User.ID)
	require.NoError(t, err)

	_, err = s.Refresh(context.Background(), expired)
	assert.ErrorIs(t, err, ErrRefreshExpired)
}

func TestRefreshDeletedUser(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	reg := register(t, s, "mona@example.com", "1")

	require.NoError(t, s.DeleteProfile(ctx, reg.User.ID))

	_, err := s.Refresh(ctx, reg.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrUserGone)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	reg := register(t, s, "mona@example.com", "1")

	s.Logout(ctx, reg.Tokens.RefreshToken)

	_, err := s.Refresh(ctx, reg.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestUpdateProfile(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	reg := register(t, s, "mona@example.com", "1")
	register(t, s, "taken@example.com", "2")

	res, err := s.UpdateProfile(ctx, reg.User.ID, &UpdateProfileRequest{
		Name:  "",
		Phone: "3",
		Addresses: &[]AddressInput{
			{Street: "1 Nile St", City: "Cairo", State: "Cairo", Country: "Egypt"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mona Adel", res.User.Name)
	assert.Equal(t, "3", res.User.Phone)
	require.Len(t, res.User.Addresses, 1)
	assert.True(t, res.User.Addresses[0].IsDefault)
	assert.NotEmpty(t, res.Tokens.AccessToken)

	_, err = s.UpdateProfile(ctx, reg.User.ID, &UpdateProfileRequest{Email: "taken@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = s.UpdateProfile(ctx, 999, &UpdateProfileRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteProfileMissing(t *testing.T) {
	s, _ := newTestService(t)
	assert.ErrorIs(t, s.DeleteProfile(context.Background(), 42), ErrUserNotFound)
}
