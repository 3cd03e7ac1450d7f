package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"atelier-learning-service/internal/auth"
	"atelier-learning-service/internal/domain"
	"atelier-learning-service/internal/infra/memory"
)

func TestSignUpThenSignIn(t *testing.T) {
	ctx := context.Background()
	service := auth.NewService(memory.NewUserStore(), "test-secret", time.Hour)

	created, token, err := service.SignUp(ctx, "Alice@Example.com", "s3cret", "Alice")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if token == "" || created.UserID == "" {
		t.Fatalf("expected session and token, got %+v", created)
	}
	if created.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %s", created.Email)
	}

	signedIn, _, err := service.SignIn(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if signedIn.UserID != created.UserID {
		t.Fatalf("expected same account, got %s vs %s", signedIn.UserID, created.UserID)
	}
}

func TestSignInRejectsWrongPassword(t *testing.T) {
	ctx := context.Background()
	service := auth.NewService(memory.NewUserStore(), "test-secret", time.Hour)

	if _, _, err := service.SignUp(ctx, "bob@example.com", "right", "Bob"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, _, err := service.SignIn(ctx, "bob@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	// Unknown email reads the same as a wrong password.
	if _, _, err := service.SignIn(ctx, "nobody@example.com", "right"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	service := auth.NewService(memory.NewUserStore(), "test-secret", time.Hour)

	if _, _, err := service.SignUp(ctx, "carol@example.com", "pw", "Carol"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, _, err := service.SignUp(ctx, "carol@example.com", "pw2", "Carol2"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	ctx := context.Background()
	service := auth.NewService(memory.NewUserStore(), "test-secret", time.Hour)

	session, token, err := service.SignUp(ctx, "dave@example.com", "pw", "Dave")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	verified, err := service.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified != session {
		t.Fatalf("expected %+v, got %+v", session, verified)
	}

	if _, err := service.Verify(token + "tampered"); err == nil {
		t.Fatalf("expected tampered token to fail")
	}

	other := auth.NewService(memory.NewUserStore(), "different-secret", time.Hour)
	if _, err := other.Verify(token); err == nil {
		t.Fatalf("expected foreign-secret verification to fail")
	}
}
