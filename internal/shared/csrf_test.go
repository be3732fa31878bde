package shared

import (
	"errors"
	"testing"
)

func TestCSRFTokenBoundToSession(t *testing.T) {
	manager := NewCSRFManager("segreto")
	sess := &Session{UID: "uid-1", TokenID: "jti-1"}

	token := manager.Token(sess)
	if token == "" {
		t.Fatal("expected a token for a live session")
	}
	if err := manager.Verify(sess, token); err != nil {
		t.Fatalf("verify: %v", err)
	}

	other := &Session{UID: "uid-1", TokenID: "jti-2"}
	if err := manager.Verify(other, token); !errors.Is(err, ErrCSRFTokenMismatch) {
		t.Errorf("token from another session must mismatch, got %v", err)
	}
}

func TestCSRFTokenStableForSameSession(t *testing.T) {
	manager := NewCSRFManager("segreto")
	sess := &Session{TokenID: "jti-1"}
	if manager.Token(sess) != manager.Token(sess) {
		t.Error("token derivation must be deterministic")
	}
}

func TestCSRFVerifyMissing(t *testing.T) {
	manager := NewCSRFManager("segreto")
	sess := &Session{TokenID: "jti-1"}

	if err := manager.Verify(sess, ""); !errors.Is(err, ErrCSRFTokenMissing) {
		t.Errorf("empty token, got %v", err)
	}
	if err := manager.Verify(nil, "qualcosa"); !errors.Is(err, ErrCSRFTokenMissing) {
		t.Errorf("nil session, got %v", err)
	}
	if err := manager.Verify(&Session{}, "qualcosa"); !errors.Is(err, ErrCSRFTokenMissing) {
		t.Errorf("session without jti, got %v", err)
	}
}

func TestCSRFSecretsDiffer(t *testing.T) {
	sess := &Session{TokenID: "jti-1"}
	a := NewCSRFManager("segreto-a").Token(sess)
	b := NewCSRFManager("segreto-b").Token(sess)
	if a == b {
		t.Error("different secrets must derive different tokens")
	}
}
