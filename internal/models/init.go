package models

import (
	"github.com/spedigo-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultOperator creates the default ops account when none exists.
func InitDefaultOperator(username, password string) error {
	var count int64
	DB.Model(&Operator{}).Count(&count)
	if count > 0 {
		return nil
	}

	if username == "" {
		username = "operator"
	}
	if password == "" {
		password = "operator123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	operator := Operator{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := DB.Create(&operator).Error; err != nil {
		return err
	}

	if password == "operator123" {
		logger.Warnw("default_operator_created_with_default_password", "username", username)
	} else {
		logger.Warnw("default_operator_created", "username", username, "password_hidden", true)
	}
	return nil
}
