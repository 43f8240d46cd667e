package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("lehrer@example.com", "korrekt-pferd-batterie")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if user.Email != "lehrer@example.com" {
		t.Errorf("Expected email %q, got %q", "lehrer@example.com", user.Email)
	}

	// Invalid email
	_, err = NewUser("not-an-email", "korrekt-pferd-batterie")
	if err != ErrInvalidEmail {
		t.Errorf("Expected error %v, got %v", ErrInvalidEmail, err)
	}

	// Empty email
	_, err = NewUser("", "korrekt-pferd-batterie")
	if err != ErrEmptyEmail {
		t.Errorf("Expected error %v, got %v", ErrEmptyEmail, err)
	}

	// Too short password
	_, err = NewUser("lehrer@example.com", "kurz")
	if err != ErrPasswordTooShort {
		t.Errorf("Expected error %v, got %v", ErrPasswordTooShort, err)
	}
}

func TestUserValidateHashedOnly(t *testing.T) {
	t.Parallel()

	user := &User{
		ID:             uuid.New(),
		Email:          "schueler@example.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}

	if err := user.Validate(); err != nil {
		t.Errorf("Expected stored user without plaintext password to validate, got %v", err)
	}

	user.HashedPassword = ""
	if err := user.Validate(); err != ErrEmptyPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}
}
