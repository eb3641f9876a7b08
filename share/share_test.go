package share

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewIssuer() error = %v", err)
	}

	token, err := issuer.Token("proj-1")
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.ProjectID != "proj-1" {
		t.Errorf("ProjectID = %q, want proj-1", claims.ProjectID)
	}
	if claims.ID == "" {
		t.Error("token id not set")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a, _ := NewIssuer("secret-a")
	b, _ := NewIssuer("secret-b")

	token, _ := a.Token("proj-1")
	if _, err := b.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	current := time.Now()
	issuer, _ := NewIssuer("test-secret",
		WithTTL(time.Hour),
		withClock(func() time.Time { return current }))

	token, _ := issuer.Token("proj-1")

	current = current.Add(2 * time.Hour)
	if _, err := issuer.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer, _ := NewIssuer("test-secret")
	if _, err := issuer.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer(""); err == nil {
		t.Error("NewIssuer(\"\") error = nil")
	}
}

func TestTokenRequiresProject(t *testing.T) {
	issuer, _ := NewIssuer("test-secret")
	if _, err := issuer.Token(""); err == nil {
		t.Error("Token(\"\") error = nil")
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	issuer, _ := NewIssuer("test-secret")
	t1, _ := issuer.Token("proj-1")
	t2, _ := issuer.Token("proj-1")
	c1, _ := issuer.Verify(t1)
	c2, _ := issuer.Verify(t2)
	if c1.ID == c2.ID {
		t.Error("token ids should differ")
	}
}
