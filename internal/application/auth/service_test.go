package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storefront-api/internal/domain"
	googleinfra "github.com/storefront-api/internal/infrastructure/google"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockCodeService struct{ mock.Mock }

func (m *mockCodeService) Issue(ctx context.Context, identity string) error {
	return m.Called(ctx, identity).Error(0)
}
func (m *mockCodeService) Verify(ctx context.Context, identity, submitted string) error {
	return m.Called(ctx, identity, submitted).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

type mockGoogleVerifier struct{ mock.Mock }

func (m *mockGoogleVerifier) Verify(ctx context.Context, token string) (*googleinfra.Payload, error) {
	args := m.Called(ctx, token)
	if p, _ := args.Get(0).(*googleinfra.Payload); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- builder ---

func newTestService(codes *mockCodeService, us *mockUserStore, ss *mockSessionStore, jwt *mockJWTSigner, g *mockGoogleVerifier) Service {
	return NewService(ServiceDeps{
		Codes:           codes,
		UserRepo:        us,
		SessionRepo:     ss,
		JWTProvider:     jwt,
		Google:          g,
		PendingTTL:      10 * time.Minute,
		RefreshTokenDur: 7 * 24 * time.Hour,
	})
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// --- Register ---

func TestRegister_DuplicateEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)

	svc := newTestService(nil, us, nil, nil, nil)
	_, err := svc.Register(context.Background(), domain.CreateUserRequest{
		Email: "a@b.com", Password: "password123", Name: "A",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_CreatesUnconfirmedUserAndIssuesCode(t *testing.T) {
	us := &mockUserStore{}
	codes := &mockCodeService{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "a@b.com" && !u.EmailConfirmed && u.Role == domain.RoleUser && u.Enable
	})).Return(nil)
	codes.On("Issue", mock.Anything, "a@b.com").Return(nil)

	svc := newTestService(codes, us, nil, nil, nil)
	u, err := svc.Register(context.Background(), domain.CreateUserRequest{
		Email: "a@b.com", Password: "password123", Name: "A",
	})

	require.NoError(t, err)
	assert.False(t, u.EmailConfirmed)
	assert.NotEqual(t, "password123", u.PasswordHash)
	us.AssertExpectations(t)
	codes.AssertExpectations(t)
}

// --- Login ---

func TestLogin_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.com").Return(nil, domain.ErrNotFound)

	svc := newTestService(nil, us, nil, nil, nil)
	_, err := svc.Login(context.Background(), LoginRequest{Email: "x@x.com", Password: "pw"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", PasswordHash: hashOf(t, "rightpw"), Enable: true, EmailConfirmed: true,
	}, nil)

	svc := newTestService(nil, us, nil, nil, nil)
	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "wrongpw"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_DisabledAccount(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", PasswordHash: hashOf(t, "pw12345678"), Enable: false,
	}, nil)

	svc := newTestService(nil, us, nil, nil, nil)
	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "pw12345678"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestLogin_UnconfirmedEmail_ReissuesCodeAndWithholdsSession(t *testing.T) {
	us := &mockUserStore{}
	codes := &mockCodeService{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", PasswordHash: hashOf(t, "pw12345678"),
		Enable: true, EmailConfirmed: false,
	}, nil)
	codes.On("Issue", mock.Anything, "a@b.com").Return(nil)

	svc := newTestService(codes, us, nil, nil, nil)
	result, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "pw12345678"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrVerificationPending))
	assert.Nil(t, result)
	codes.AssertExpectations(t)
}

func TestLogin_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	ss := &mockSessionStore{}
	jwt := &mockJWTSigner{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", Role: domain.RoleUser,
		PasswordHash: hashOf(t, "pw12345678"), Enable: true, EmailConfirmed: true,
	}, nil)
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	jwt.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer-token", nil)

	svc := newTestService(nil, us, ss, jwt, nil)
	result, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "pw12345678"})

	require.NoError(t, err)
	assert.Equal(t, "bearer-token", result.Bearer)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "u1", result.Session.UserID)
}

// --- ConfirmEmail ---

func TestConfirmEmail_WrongCode(t *testing.T) {
	us := &mockUserStore{}
	codes := &mockCodeService{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Email: "a@b.com"}, nil)
	codes.On("Verify", mock.Anything, "a@b.com", "000000").Return(domain.ErrCodeMismatch)

	svc := newTestService(codes, us, nil, nil, nil)
	_, err := svc.ConfirmEmail(context.Background(), ConfirmEmailRequest{Email: "a@b.com", Code: "000000"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCodeMismatch))
}

func TestConfirmEmail_HappyPath_MarksConfirmedAndMintsSession(t *testing.T) {
	us := &mockUserStore{}
	codes := &mockCodeService{}
	ss := &mockSessionStore{}
	jwt := &mockJWTSigner{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", Role: domain.RoleUser, Enable: true,
	}, nil)
	codes.On("Verify", mock.Anything, "a@b.com", "123456").Return(nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		confirmed, ok := m["email_confirmed"].(bool)
		return ok && confirmed
	})).Return(nil)
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	jwt.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer-token", nil)

	svc := newTestService(codes, us, ss, jwt, nil)
	result, err := svc.ConfirmEmail(context.Background(), ConfirmEmailRequest{Email: "a@b.com", Code: "123456"})

	require.NoError(t, err)
	assert.Equal(t, "bearer-token", result.Bearer)
	assert.True(t, result.Session.User.EmailConfirmed)
	us.AssertExpectations(t)
}

// --- ResendCode ---

func TestResendCode_AlreadyConfirmed(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", EmailConfirmed: true,
	}, nil)

	svc := newTestService(nil, us, nil, nil, nil)
	err := svc.ResendCode(context.Background(), "a@b.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

// --- password change ---

func TestPasswordChange_FullFlow(t *testing.T) {
	us := &mockUserStore{}
	codes := &mockCodeService{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Email: "a@b.com"}, nil)
	codes.On("Issue", mock.Anything, "a@b.com").Return(nil)
	codes.On("Verify", mock.Anything, "a@b.com", "123456").Return(nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		hash, ok := m["password_hash"].(string)
		return ok && bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpassword1")) == nil
	})).Return(nil)

	svc := newTestService(codes, us, nil, nil, nil)
	require.NoError(t, svc.RequestPasswordChange(context.Background(), "u1", "newpassword1"))
	require.NoError(t, svc.ConfirmPasswordChange(context.Background(), "u1", "123456"))
	us.AssertExpectations(t)
}

func TestConfirmPasswordChange_WithoutRequest(t *testing.T) {
	us := &mockUserStore{}
	codes := &mockCodeService{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Email: "a@b.com"}, nil)
	codes.On("Verify", mock.Anything, "a@b.com", "123456").Return(nil)

	svc := newTestService(codes, us, nil, nil, nil)
	err := svc.ConfirmPasswordChange(context.Background(), "u1", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- password recovery ---

func TestRequestPasswordRecovery_UnknownEmailIsSilent(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.com").Return(nil, domain.ErrNotFound)

	svc := newTestService(nil, us, nil, nil, nil)
	err := svc.RequestPasswordRecovery(context.Background(), "x@x.com")

	// Identical outcome whether or not the address is registered.
	require.NoError(t, err)
}

func TestConfirmPasswordRecovery_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	codes := &mockCodeService{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Email: "a@b.com"}, nil)
	codes.On("Verify", mock.Anything, "a@b.com", "123456").Return(nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		hash, ok := m["password_hash"].(string)
		return ok && bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpassword1")) == nil
	})).Return(nil)

	svc := newTestService(codes, us, nil, nil, nil)
	err := svc.ConfirmPasswordRecovery(context.Background(), "a@b.com", "123456", "newpassword1")

	require.NoError(t, err)
	us.AssertExpectations(t)
}

func TestConfirmPasswordRecovery_ExpiredCode(t *testing.T) {
	us := &mockUserStore{}
	codes := &mockCodeService{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Email: "a@b.com"}, nil)
	codes.On("Verify", mock.Anything, "a@b.com", "123456").Return(domain.ErrCodeExpired)

	svc := newTestService(codes, us, nil, nil, nil)
	err := svc.ConfirmPasswordRecovery(context.Background(), "a@b.com", "123456", "newpassword1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCodeExpired))
}

// --- Google sign-in ---

func TestLoginWithGoogle_ProvisionsConfirmedUser(t *testing.T) {
	us := &mockUserStore{}
	ss := &mockSessionStore{}
	jwt := &mockJWTSigner{}
	g := &mockGoogleVerifier{}
	g.On("Verify", mock.Anything, "id-token").Return(&googleinfra.Payload{
		Sub: "sub-1", Email: "a@b.com", EmailVerified: true, Name: "A",
	}, nil)
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.EmailConfirmed && u.AuthProvider == "google" && u.GoogleSub == "sub-1"
	})).Return(nil)
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	jwt.On("Sign", mock.Anything, domain.RoleUser, mock.Anything).Return("bearer-token", nil)

	svc := newTestService(nil, us, ss, jwt, g)
	result, err := svc.LoginWithGoogle(context.Background(), "id-token")

	require.NoError(t, err)
	assert.Equal(t, "bearer-token", result.Bearer)
	us.AssertExpectations(t)
}

func TestLoginWithGoogle_InvalidToken(t *testing.T) {
	g := &mockGoogleVerifier{}
	g.On("Verify", mock.Anything, "bad").Return(nil, errors.New("token validation failed"))

	svc := newTestService(nil, nil, nil, nil, g)
	_, err := svc.LoginWithGoogle(context.Background(), "bad")

	require.Error(t, err)
}
