// Package auth implements registration, activation, login and the password
// reset flow on top of the users table.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cargo-delivery/apperrors"
	"cargo-delivery/logger"
	"cargo-delivery/models/user"
	"cargo-delivery/services/token"
	"cargo-delivery/services/verification"
	authTypes "cargo-delivery/types/auth"
)

// Mailer is the outbound mail sink. Sends are dispatched fire-and-forget;
// failures are logged and never surfaced to the caller.
type Mailer interface {
	SendVerificationCode(to, username, code string) error
	SendPasswordCode(to, username, code string) error
}

// Service owns account lifecycle operations. All methods return apperrors
// sentinels for domain failures.
type Service struct {
	db     *gorm.DB
	tokens *token.Service
	mail   Mailer
}

func NewService(db *gorm.DB, tokens *token.Service, mail Mailer) *Service {
	return &Service{db: db, tokens: tokens, mail: mail}
}

// Register creates a disabled account with a fresh activation code and mails
// the code. Each uniqueness axis fails with its own conflict reason.
func (s *Service) Register(req authTypes.RegisterRequest) (*authTypes.UserResponse, error) {
	if err := s.ensureUnique("mail", req.Mail, 0, apperrors.ErrMailConflict); err != nil {
		return nil, err
	}
	if err := s.ensureUnique("username", req.Username, 0, apperrors.ErrUsernameConflict); err != nil {
		return nil, err
	}
	if err := s.ensureUnique("phone", req.PhoneNumber, 0, apperrors.ErrPhoneConflict); err != nil {
		return nil, err
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := verification.Generate()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(verification.ActivationTTL)

	newUser := user.User{
		Uuid:                  uuid.NewString(),
		Username:              req.Username,
		Mail:                  req.Mail,
		Phone:                 req.PhoneNumber,
		Password:              string(digest),
		Role:                  req.Role,
		Enabled:               false,
		VerificationCode:      &code,
		VerificationExpiresAt: &expiresAt,
	}
	if err := s.db.Create(&newUser).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	go func() {
		if err := s.mail.SendVerificationCode(newUser.Mail, newUser.Username, code); err != nil {
			logger.Error("Failed to send verification mail", err)
		}
	}()

	resp := authTypes.NewUserResponse(&newUser)
	return &resp, nil
}

// VerifyUser flips the account to enabled when the submitted code matches a
// non-expired pending code, and clears the code.
func (s *Service) VerifyUser(email, code string) error {
	account, err := s.findByMail(email)
	if err != nil {
		return err
	}
	if err := verification.Check(code, account.VerificationCode, account.VerificationExpiresAt); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrInvalidCode
		}
		return err
	}
	account.Enabled = true
	account.ClearVerification()
	if err := s.db.Save(account).Error; err != nil {
		return fmt.Errorf("failed to enable user: %w", err)
	}
	logger.Success("Account verified: " + account.Username)
	return nil
}

// Login authenticates by username and issues a bearer token. Disabled
// accounts are rejected before the credential check.
func (s *Service) Login(req authTypes.LoginRequest) (*authTypes.LoginResponse, error) {
	var account user.User
	if err := s.db.Where("username = ?", req.Username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !account.Enabled {
		return nil, apperrors.ErrNotVerified
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	signed, err := s.tokens.Issue(&account)
	if err != nil {
		return nil, err
	}
	return &authTypes.LoginResponse{
		Token: signed,
		User:  authTypes.NewUserResponse(&account),
	}, nil
}

// SendPasswordCode issues a reset code and mails it. The reset code carries
// no expiry and overwrites any pending activation code.
func (s *Service) SendPasswordCode(email string) (string, error) {
	account, err := s.findByMail(email)
	if err != nil {
		return "", err
	}
	code, err := verification.Generate()
	if err != nil {
		return "", err
	}
	account.VerificationCode = &code
	account.VerificationExpiresAt = nil
	if err := s.db.Save(account).Error; err != nil {
		return "", fmt.Errorf("failed to store password code: %w", err)
	}

	go func() {
		if err := s.mail.SendPasswordCode(account.Mail, account.Username, code); err != nil {
			logger.Error("Failed to send password code mail", err)
		}
	}()

	return "Check your e-mail.", nil
}

// SetPassword replaces the password digest after the reset code checks out
// and both submitted passwords agree. The code is consumed.
func (s *Service) SetPassword(email string, req authTypes.SetPasswordRequest) (*authTypes.UserResponse, error) {
	account, err := s.findByMail(email)
	if err != nil {
		return nil, err
	}
	if err := verification.Check(req.PasswordCode, account.VerificationCode, account.VerificationExpiresAt); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCode
		}
		return nil, err
	}
	if req.Password != req.CheckPassword {
		return nil, apperrors.ErrPasswordMismatch
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account.Password = string(digest)
	account.ClearVerification()
	if err := s.db.Save(account).Error; err != nil {
		return nil, fmt.Errorf("failed to store new password: %w", err)
	}
	resp := authTypes.NewUserResponse(account)
	return &resp, nil
}

// EnsureProfileUnique checks a profile update against every other account on
// the three uniqueness axes. Values equal to the caller's own are skipped.
func (s *Service) EnsureProfileUnique(caller *user.User, username, mail, phone string) error {
	if caller.Username != username {
		if err := s.ensureUnique("username", username, caller.ID, apperrors.ErrUsernameConflict); err != nil {
			return err
		}
	}
	if caller.Mail != mail {
		if err := s.ensureUnique("mail", mail, caller.ID, apperrors.ErrMailConflict); err != nil {
			return err
		}
	}
	if caller.Phone != phone {
		if err := s.ensureUnique("phone", phone, caller.ID, apperrors.ErrPhoneConflict); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ensureUnique(column, value string, excludeID uint, conflict error) error {
	var count int64
	q := s.db.Model(&user.User{}).Where(column+" = ?", value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %s uniqueness: %w", column, err)
	}
	if count > 0 {
		return conflict
	}
	return nil
}

func (s *Service) findByMail(email string) (*user.User, error) {
	var account user.User
	if err := s.db.Where("mail = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &account, nil
}
