package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"smartaitools/internal/models"
	"smartaitools/internal/repositories"
	"smartaitools/internal/utils"
)

const (
	OTPExpirationMinutes    = 10
	OTPPurposeResetPassword = "reset_password"
)

type OTPService interface {
	GenerateOTPForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, otpCode, newPassword string) error
}

type otpService struct {
	userRepo     repositories.UserRepository
	otpRepo      repositories.OTPRepository
	emailService EmailService
}

func NewOTPService(userRepo repositories.UserRepository, otpRepo repositories.OTPRepository, emailService EmailService) OTPService {
	return &otpService{userRepo: userRepo, otpRepo: otpRepo, emailService: emailService}
}

func (s *otpService) GenerateOTPForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", ErrNotFound
		}
		return "", err
	}

	otpCode, err := utils.GenerateSecureOTP(6)
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(OTPExpirationMinutes * time.Minute)

	otp := &models.OTP{
		UserID:    user.ID,
		OTPCode:   otpCode,
		Purpose:   OTPPurposeResetPassword,
		ExpiresAt: expiresAt,
		IsUsed:    false,
	}

	if _, err := s.otpRepo.Create(ctx, otp); err != nil {
		return "", err
	}

	subject := "Your Password Reset OTP"
	body := fmt.Sprintf("Your OTP for password reset is: %s", otpCode)
	if err := s.emailService.SendEmail(email, subject, body); err != nil {
		return "", err
	}

	return otpCode, nil
}

func (s *otpService) ResetPassword(ctx context.Context, email, otpCode, newPassword string) error {
	if newPassword == "" {
		return validationErr("new password is required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return err
	}

	otp, err := s.otpRepo.FindByUserIDAndOTPCode(ctx, user.ID, otpCode, OTPPurposeResetPassword)
	if err != nil {
		return err
	}
	if otp == nil {
		return validationErr("invalid or expired OTP")
	}
	if otp.IsUsed {
		return validationErr("OTP already used")
	}
	if time.Now().After(otp.ExpiresAt) {
		return validationErr("OTP expired")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), 8)
	if err != nil {
		return errors.New("failed to hash password")
	}

	if err := s.otpRepo.MarkAsUsed(ctx, otp.ID); err != nil {
		return err
	}

	_, err = s.userRepo.Update(ctx, user.ID, bson.M{"password": string(hashedPassword), "updated_at": time.Now()})
	return err
}
