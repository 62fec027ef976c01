package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"marketplace/api/internal/config"
	"marketplace/api/internal/mail"
	"marketplace/api/internal/metrics"
	"marketplace/api/internal/models"
	"marketplace/api/internal/repository"
	"marketplace/api/internal/requests"
	"marketplace/api/internal/result"
	"marketplace/api/internal/security"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encodedHash string) bool
}

type TokenIssuer interface {
	IssueAccessToken(subject security.AccessSubject) (string, time.Time, error)
	ValidateAccessToken(token string) (*security.AccessClaims, error)
	IssueRefreshToken() (string, []byte, error)
}

// timingPassword is hashed once and verified against when the username is
// unknown, so a miss costs about as much as a wrong password.
const timingPassword = "marketplace-timing-equaliser"

type AuthService struct {
	users    repository.UserStore
	sessions repository.SessionStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	mailer   mail.Gateway
	metrics  *metrics.Metrics
	validate *validator.Validate
	log      zerolog.Logger

	refreshTTL    time.Duration
	resetTokenTTL time.Duration
	now           func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users repository.UserStore,
	sessions repository.SessionStore,
	hasher PasswordHasher,
	tokens TokenIssuer,
	mailer mail.Gateway,
	cfg config.SecurityConfig,
	m *metrics.Metrics,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:         users,
		sessions:      sessions,
		hasher:        hasher,
		tokens:        tokens,
		mailer:        mailer,
		metrics:       m,
		validate:      validator.New(),
		log:           log.With().Str("component", "auth").Logger(),
		refreshTTL:    cfg.RefreshTTL,
		resetTokenTTL: cfg.ResetTokenTTL,
		now:           time.Now,
	}
}

type LoginInput struct {
	Username  string
	Password  string
	IPAddress string
	UserAgent string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	Role                  models.UserRole
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) result.Result[LoginResult] {
	return observe(s.metrics, metrics.OpLogin, s.login(ctx, input))
}

func (s *AuthService) login(ctx context.Context, input LoginInput) result.Result[LoginResult] {
	denied := result.Failure[LoginResult](result.StatusUnauthorized, MsgInvalidCredentials)

	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.Verify(input.Password, s.timingHash())
			return denied
		}
		return internalFailure[LoginResult](s.log, err, "login: lookup user")
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return denied
	}
	if user.Deleted {
		return denied
	}
	if !user.EmailValidated {
		return result.Failure[LoginResult](result.StatusForbidden, MsgEmailNotValidated)
	}

	now := s.now()
	refreshToken, refreshHash, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return internalFailure[LoginResult](s.log, err, "login: issue refresh token")
	}

	session, err := s.sessions.Create(ctx, repository.NewSession{
		UserID:           user.ID,
		RefreshTokenHash: refreshHash,
		IPAddress:        input.IPAddress,
		UserAgent:        input.UserAgent,
		ExpiresAt:        now.Add(s.refreshTTL),
	})
	if err != nil {
		return internalFailure[LoginResult](s.log, err, "login: create session")
	}

	accessToken, accessExpiresAt, err := s.tokens.IssueAccessToken(subjectFor(user, session.ID))
	if err != nil {
		if _, closeErr := s.sessions.MarkLoggedOut(ctx, session.ID, now); closeErr != nil {
			s.log.Warn().Err(closeErr).Str("session_id", session.ID).Msg("close orphaned session failed")
		}
		return internalFailure[LoginResult](s.log, err, "login: issue access token")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("update last login failed")
	}

	s.log.Info().Str("user_id", user.ID).Str("session_id", session.ID).Msg("login succeeded")

	return result.Success(LoginResult{
		UserID:                user.ID,
		SessionID:             session.ID,
		Role:                  user.Role,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
	})
}

type LogoutInput struct {
	// SessionID takes precedence; RefreshToken is used to find the session
	// when no id is supplied.
	SessionID    string
	RefreshToken string
}

type LogoutResult struct {
	SessionID string
}

func (s *AuthService) Logout(ctx context.Context, input LogoutInput) result.Result[LogoutResult] {
	return observe(s.metrics, metrics.OpLogout, s.logout(ctx, input))
}

func (s *AuthService) logout(ctx context.Context, input LogoutInput) result.Result[LogoutResult] {
	now := s.now()
	sessionID := strings.TrimSpace(input.SessionID)

	if sessionID == "" && input.RefreshToken != "" {
		session, err := s.sessions.FindActiveByRefreshHash(ctx, security.HashRefreshToken(input.RefreshToken), now)
		switch {
		case err == nil:
			sessionID = session.ID
		case !errors.Is(err, repository.ErrSessionNotFound):
			s.log.Warn().Err(err).Msg("logout: resolve session from refresh token failed")
		}
	}

	if sessionID == "" {
		return result.Success(LogoutResult{})
	}

	session, err := s.sessions.MarkLoggedOut(ctx, sessionID, now)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return result.Failure[LogoutResult](result.StatusNotFound, MsgSessionNotFound)
		}
		return internalFailure[LogoutResult](s.log, err, "logout: mark session logged out")
	}

	s.log.Info().Str("user_id", session.UserID).Str("session_id", session.ID).Msg("session logged out")
	return result.Success(LogoutResult{SessionID: session.ID})
}

type RefreshResult struct {
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) result.Result[RefreshResult] {
	return observe(s.metrics, metrics.OpRefresh, s.refresh(ctx, refreshToken))
}

// refresh rotates the refresh token. The swap is conditional on the stored
// hash, so of two concurrent calls presenting the same token only one wins.
func (s *AuthService) refresh(ctx context.Context, refreshToken string) result.Result[RefreshResult] {
	if strings.TrimSpace(refreshToken) == "" {
		return result.Failure[RefreshResult](result.StatusUnauthorized, MsgRefreshTokenMissing)
	}
	rejected := result.Failure[RefreshResult](result.StatusUnauthorized, MsgRefreshTokenInvalid)

	now := s.now()
	presentedHash := security.HashRefreshToken(refreshToken)

	session, err := s.sessions.FindActiveByRefreshHash(ctx, presentedHash, now)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return rejected
		}
		return internalFailure[RefreshResult](s.log, err, "refresh: find session")
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return rejected
		}
		return internalFailure[RefreshResult](s.log, err, "refresh: load user")
	}
	if user.Deleted {
		return rejected
	}

	nextToken, nextHash, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return internalFailure[RefreshResult](s.log, err, "refresh: issue refresh token")
	}

	rotated, err := s.sessions.RotateRefreshToken(ctx, session.ID, presentedHash, nextHash, now)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenStale) {
			s.log.Warn().Str("session_id", session.ID).Msg("refresh token replayed or rotated concurrently")
			return rejected
		}
		return internalFailure[RefreshResult](s.log, err, "refresh: rotate token")
	}

	accessToken, accessExpiresAt, err := s.tokens.IssueAccessToken(subjectFor(user, rotated.ID))
	if err != nil {
		return internalFailure[RefreshResult](s.log, err, "refresh: issue access token")
	}

	return result.Success(RefreshResult{
		SessionID:             rotated.ID,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          nextToken,
		RefreshTokenExpiresAt: rotated.ExpiresAt,
	})
}

type ForgotPasswordResult struct {
	Email   string
	Message string
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) result.Result[ForgotPasswordResult] {
	return observe(s.metrics, metrics.OpForgotPassword, s.forgotPassword(ctx, email))
}

// forgotPassword answers identically whether or not the address is known.
// Only a found, non-deleted user gets a token and an email; every failure
// past input validation is logged and hidden behind the same success.
func (s *AuthService) forgotPassword(ctx context.Context, email string) result.Result[ForgotPasswordResult] {
	email = strings.TrimSpace(email)
	if email == "" {
		return result.Failure[ForgotPasswordResult](result.StatusBadRequest, MsgEmailRequired)
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return result.Failure[ForgotPasswordResult](result.StatusBadRequest, MsgEmailInvalid)
	}

	accepted := result.Success(ForgotPasswordResult{Email: email, Message: MsgResetLinkSent})

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.log.Error().Err(err).Msg("forgot password: lookup user failed")
		}
		return accepted
	}
	if user.Deleted {
		return accepted
	}

	token, tokenHash, err := security.GenerateResetToken()
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("forgot password: generate token failed")
		return accepted
	}
	expiresAt := s.now().Add(s.resetTokenTTL)
	if err := s.users.SetPasswordResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("forgot password: store token failed")
		return accepted
	}

	err = s.mailer.SendPasswordReset(ctx, mail.PasswordResetMessage{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		s.metrics.RecordMailFailure()
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("forgot password: mail gateway failed")
	}
	return accepted
}

type ResetPasswordResult struct {
	Message string
	ResetAt time.Time
}

func (s *AuthService) ResetPassword(ctx context.Context, req requests.ResetPassword) result.Result[ResetPasswordResult] {
	return observe(s.metrics, metrics.OpResetPassword, s.resetPassword(ctx, req))
}

func (s *AuthService) resetPassword(ctx context.Context, req requests.ResetPassword) result.Result[ResetPasswordResult] {
	if v := req.Validate(); v.IsFailure() {
		return result.Fail[ResetPasswordResult](v)
	}

	digest, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return internalFailure[ResetPasswordResult](s.log, err, "reset password: hash")
	}

	now := s.now()
	user, err := s.users.ResetPassword(ctx, security.HashResetToken(strings.TrimSpace(req.Token)), digest, now)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenInvalid) {
			return result.Failure[ResetPasswordResult](result.StatusBadRequest, MsgResetTokenInvalid)
		}
		return internalFailure[ResetPasswordResult](s.log, err, "reset password: store")
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset")
	return result.Success(ResetPasswordResult{Message: MsgPasswordReset, ResetAt: now})
}

func (s *AuthService) ValidateEmail(ctx context.Context, userID string) result.Result[bool] {
	return observe(s.metrics, metrics.OpValidateEmail, s.validateEmail(ctx, userID))
}

func (s *AuthService) validateEmail(ctx context.Context, userID string) result.Result[bool] {
	if strings.TrimSpace(userID) == "" {
		return result.Failure[bool](result.StatusNotFound, MsgUserNotFound)
	}

	err := s.users.MarkEmailValidated(ctx, userID)
	switch {
	case err == nil:
		return result.Success(true)
	case errors.Is(err, repository.ErrUserNotFound):
		return result.Failure[bool](result.StatusNotFound, MsgUserNotFound)
	case errors.Is(err, repository.ErrEmailAlreadyValidated):
		return result.Failure[bool](result.StatusBadRequest, MsgEmailAlreadyValidated)
	default:
		return internalFailure[bool](s.log, err, "validate email")
	}
}

type ChangePasswordResult struct {
	Message   string
	ChangedAt time.Time
}

func (s *AuthService) ChangePassword(ctx context.Context, actingUserID string, req requests.ChangePassword) result.Result[ChangePasswordResult] {
	return observe(s.metrics, metrics.OpChangePassword, s.changePassword(ctx, actingUserID, req))
}

func (s *AuthService) changePassword(ctx context.Context, actingUserID string, req requests.ChangePassword) result.Result[ChangePasswordResult] {
	if v := req.Validate(); v.IsFailure() {
		return result.Fail[ChangePasswordResult](v)
	}

	user, err := s.users.GetByID(ctx, actingUserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return result.Failure[ChangePasswordResult](result.StatusNotFound, MsgUserNotFound)
		}
		return internalFailure[ChangePasswordResult](s.log, err, "change password: load user")
	}
	if user.Username != strings.TrimSpace(req.Username) {
		return result.Failure[ChangePasswordResult](result.StatusForbidden, MsgNotYourAccount)
	}
	if !s.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		return result.Failure[ChangePasswordResult](result.StatusUnauthorized, MsgCurrentPasswordWrong)
	}

	digest, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return internalFailure[ChangePasswordResult](s.log, err, "change password: hash")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, digest); err != nil {
		return internalFailure[ChangePasswordResult](s.log, err, "change password: store")
	}

	return result.Success(ChangePasswordResult{Message: MsgPasswordChanged, ChangedAt: s.now()})
}

func (s *AuthService) UpdateAddress(ctx context.Context, userID string, req requests.Address) result.Result[models.Address] {
	if v := req.Validate(); v.IsFailure() {
		return result.Fail[models.Address](v)
	}

	address := req.ToModel()
	if err := s.users.UpdateAddress(ctx, userID, address); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return result.Failure[models.Address](result.StatusNotFound, MsgUserNotFound)
		}
		return internalFailure[models.Address](s.log, err, "update address")
	}
	return result.Success(address)
}

// Principal is the authenticated caller behind an access token.
type Principal struct {
	User   models.User
	Claims *security.AccessClaims
}

// Authenticate checks the token signature and claims, then requires the
// session it names to still be active and its user to exist.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) result.Result[Principal] {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return result.Failure[Principal](result.StatusUnauthorized, MsgInvalidCredentials)
	}

	user := s.CurrentUser(ctx, claims)
	if user.IsFailure() {
		return result.Fail[Principal](user)
	}
	return result.Success(Principal{User: user.Value(), Claims: claims})
}

func (s *AuthService) CurrentUser(ctx context.Context, claims *security.AccessClaims) result.Result[models.User] {
	inactive := result.Failure[models.User](result.StatusUnauthorized, MsgSessionInactive)
	if claims == nil || claims.SessionID == "" {
		return inactive
	}

	session, err := s.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return inactive
		}
		return internalFailure[models.User](s.log, err, "current user: load session")
	}
	if !session.IsActive(s.now()) || session.UserID != claims.UserID {
		return inactive
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return result.Failure[models.User](result.StatusUnauthorized, MsgInvalidCredentials)
		}
		return internalFailure[models.User](s.log, err, "current user: load user")
	}
	if user.Deleted {
		return result.Failure[models.User](result.StatusUnauthorized, MsgInvalidCredentials)
	}
	return result.Success(user)
}

func (s *AuthService) Sessions(ctx context.Context, userID string) result.Result[[]models.Session] {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return internalFailure[[]models.Session](s.log, err, "list sessions")
	}
	return result.Success(sessions)
}

func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(timingPassword)
		if err != nil {
			s.log.Warn().Err(err).Msg("prepare timing hash failed")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func subjectFor(user models.User, sessionID string) security.AccessSubject {
	return security.AccessSubject{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		SessionID: sessionID,
	}
}

func internalFailure[T any](log zerolog.Logger, err error, op string) result.Result[T] {
	log.Error().Err(err).Str("op", op).Msg("unexpected failure")
	return result.Failure[T](result.StatusInternal, MsgUnexpected)
}

func observe[T any](m *metrics.Metrics, operation string, r result.Result[T]) result.Result[T] {
	m.RecordAuth(operation, r.Status().String())
	return r
}
