package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/righthome/cosmos-api/internal/core/domain"
	"github.com/righthome/cosmos-api/internal/core/ports"
	"github.com/righthome/cosmos-api/internal/core/token"
)

const (
	resetTokenTTL       = time.Hour
	emailChangeTokenTTL = 24 * time.Hour
)

// LoginThrottle abstracts the failed-login counter (Redis).
type LoginThrottle interface {
	TooManyFailures(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AccountService implements the account lifecycle: registration, verification,
// login, password reset/change, profile and email change, and deletion.
type AccountService struct {
	repo        ports.AccountRepository
	mailer      ports.Mailer
	tokens      *token.Issuer
	throttle    LoginThrottle
	frontendURL string
	log         zerolog.Logger
}

func NewAccountService(
	repo ports.AccountRepository,
	mailer ports.Mailer,
	tokens *token.Issuer,
	throttle LoginThrottle,
	frontendURL string,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		repo:        repo,
		mailer:      mailer,
		tokens:      tokens,
		throttle:    throttle,
		frontendURL: frontendURL,
		log:         log,
	}
}

// Register creates an unverified account and attempts to mail a verification
// link. Mail-transport failure never blocks registration: the account and
// session token are returned either way, with EmailSent signalling the
// degraded case.
func (s *AccountService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" || input.Phone == "" || input.Address == "" {
		return nil, domain.ErrMissingFields
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	verificationToken, err := token.NewActionToken()
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := time.Now().UTC()
	account, err := s.repo.Create(ctx, &domain.Account{
		Name:              input.Name,
		Email:             input.Email,
		PasswordHash:      string(hash),
		Phone:             input.Phone,
		Address:           input.Address,
		Role:              domain.RoleUser,
		VerificationToken: verificationToken,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/email-verification?token=%s&email=%s",
		s.frontendURL, url.QueryEscape(verificationToken), url.QueryEscape(account.Email))
	body := "Welcome to Right Home Cosmos!\n\n" +
		"Please click on the following link to verify your email address:\n\n" +
		link + "\n\n" +
		"If you did not create this account, please ignore this email.\n\n" +
		"Best regards,\nRight Home Cosmos Team"

	emailSent := true
	if err := s.mailer.Send(ctx, account.Email, "Verify Your Email - Right Home Cosmos", body); err != nil {
		emailSent = false
		s.log.Warn().Err(err).Str("email", account.Email).Msg("verification email failed")
	}

	sessionToken, err := s.tokens.IssueSession(account.ID)
	if err != nil {
		return nil, fmt.Errorf("register: issue session: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Bool("email_sent", emailSent).Msg("account registered")

	return &ports.AuthResult{Account: account, Token: sessionToken, EmailSent: emailSent}, nil
}

// VerifyEmail consumes the initial verification token. The token and email
// arrive percent-encoded from the mailed link.
func (s *AccountService) VerifyEmail(ctx context.Context, email, verificationToken string) error {
	if email == "" || verificationToken == "" {
		return domain.ErrMissingFields
	}

	account, err := s.repo.FindByVerification(ctx, unescape(email), unescape(verificationToken))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrInvalidToken
		}
		return err
	}
	if account.IsVerified {
		return domain.ErrAlreadyVerified
	}

	if err := s.repo.MarkVerified(ctx, account.ID); err != nil {
		return fmt.Errorf("verify email: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Msg("email verified")
	return nil
}

// Login authenticates an account and issues a session token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	if over, err := s.throttle.TooManyFailures(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login throttle check failed, allowing attempt")
	} else if over {
		return nil, domain.ErrTooManyAttempts
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.recordFailure(ctx, email)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if !account.IsVerified {
		return nil, domain.ErrEmailNotVerified
	}

	sessionToken, err := s.tokens.IssueSession(account.ID)
	if err != nil {
		return nil, fmt.Errorf("login: issue session: %w", err)
	}

	if err := s.throttle.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login throttle reset failed")
	}

	s.log.Info().Str("account_id", account.ID).Msg("login")
	return &ports.AuthResult{Account: account, Token: sessionToken, EmailSent: true}, nil
}

// ForgotPassword issues a one-hour reset token and mails the reset link.
// The mail outcome does not affect the result.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return domain.ErrMissingFields
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	resetToken, err := token.NewActionToken()
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	if err := s.repo.SetResetToken(ctx, account.ID, resetToken, time.Now().UTC().Add(resetTokenTTL)); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, url.QueryEscape(resetToken))
	if err := s.mailer.Send(ctx, account.Email, "Password Reset Request",
		"Please click on this link to reset your password: "+link); err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID).Msg("reset email failed")
	}

	return nil
}

// ResetPassword consumes a reset token, matching on the token value and its
// expiry; the new hash is stored and both reset fields cleared in one write.
func (s *AccountService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" || newPassword == "" {
		return domain.ErrMissingFields
	}

	account, err := s.repo.FindByResetToken(ctx, resetToken, time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrInvalidToken
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("reset password: hash password: %w", err)
	}

	if err := s.repo.ResetPassword(ctx, account.ID, string(hash)); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Msg("password reset")
	return nil
}

// ChangePassword requires the caller's current password before accepting the
// new one.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return domain.ErrMissingFields
	}

	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("change password: hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, account.ID, string(hash))
}

// UpdateProfile updates non-email fields immediately. An email change is
// staged as pending and takes effect only after VerifyEmailChange; requesting
// one without verification is rejected.
func (s *AccountService) UpdateProfile(ctx context.Context, input ports.UpdateProfileInput) (*ports.ProfileResult, error) {
	account, err := s.repo.FindByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	requiresVerification := false
	if input.Email != "" && input.Email != account.Email {
		if !input.RequireEmailVerification {
			return nil, domain.ErrVerificationNeeded
		}
		if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
			return nil, domain.ErrEmailTaken
		} else if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("update profile: %w", err)
		}

		changeToken, err := token.NewActionToken()
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		if err := s.repo.SetPendingEmail(ctx, account.ID, input.Email, changeToken,
			time.Now().UTC().Add(emailChangeTokenTTL)); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}

		link := fmt.Sprintf("%s/verify-email-change?token=%s&email=%s",
			s.frontendURL, url.QueryEscape(changeToken), url.QueryEscape(input.Email))
		body := "Please click on the following link to verify your new email address:\n\n" +
			link + "\n\n" +
			"If you did not request this change, please ignore this email.\n\n" +
			"This link will expire in 24 hours.\n\n" +
			"Best regards,\nRight Home Cosmos Team"
		if err := s.mailer.Send(ctx, input.Email, "Verify Your New Email - Right Home Cosmos", body); err != nil {
			return nil, fmt.Errorf("update profile: send verification email: %w", err)
		}
		requiresVerification = true
	}

	if err := s.repo.UpdateProfile(ctx, account.ID, input.Name, input.Phone, input.Address); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	updated, err := s.repo.FindByID(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &ports.ProfileResult{Account: updated, RequiresEmailVerification: requiresVerification}, nil
}

// VerifyEmailChange consumes an email-change token. The candidate email, the
// stored token, and the expiry must all match; the pending email is promoted
// and the pending fields cleared in one write.
func (s *AccountService) VerifyEmailChange(ctx context.Context, email, changeToken string) error {
	if email == "" || changeToken == "" {
		return domain.ErrMissingFields
	}

	account, err := s.repo.FindByPendingEmail(ctx, unescape(email), changeToken, time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrInvalidToken
		}
		return err
	}

	if err := s.repo.CommitEmailChange(ctx, account.ID); err != nil {
		return fmt.Errorf("verify email change: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Msg("email change confirmed")
	return nil
}

// DeleteAccount removes the caller's own account. The repository enforces the
// last-admin invariant atomically with the delete.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID string) error {
	if err := s.repo.DeleteGuarded(ctx, accountID); err != nil {
		return err
	}
	s.log.Info().Str("account_id", accountID).Msg("account deleted")
	return nil
}

// GetAccount returns the caller's own profile.
func (s *AccountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, accountID)
}

func (s *AccountService) recordFailure(ctx context.Context, email string) {
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login throttle record failed")
	}
}

// unescape decodes a percent-encoded link parameter, falling back to the raw
// value when it is not valid encoding. PathUnescape keeps "+" literal, which
// matters for emails like user+tag@example.com.
func unescape(v string) string {
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return v
	}
	return decoded
}
