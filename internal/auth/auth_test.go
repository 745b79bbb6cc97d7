package auth

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/argon2"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Errorf("hash %q is not in Argon2id PHC format", hash)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !ok {
		t.Error("correct password did not verify")
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if ok {
		t.Error("wrong password verified")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	a, err := HashPassword("same input")
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPassword("same input")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical, salt is not random")
	}
}

func TestVerifyPasswordHonorsStoredParams(t *testing.T) {
	// A hash created with weaker parameters than the current constants
	// must still verify against its own embedded parameters.
	salt := []byte("somesaltsomesalt")
	legacy := argon2.IDKey([]byte("legacy"), salt, 1, 8192, 1, 32)
	encoded := fmt.Sprintf("$argon2id$v=19$m=8192,t=1,p=1$%s$%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(legacy),
	)

	ok, err := VerifyPassword("legacy", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !ok {
		t.Error("hash with non-default parameters did not verify")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	malformed := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=1$not-base64!$aGFzaA",
	}
	for _, hash := range malformed {
		if ok, err := VerifyPassword("password", hash); err == nil && ok {
			t.Errorf("malformed hash %q verified", hash)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken("secret", "user-42", "alice", true, time.Now())
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "user-42" {
		t.Errorf("Subject = %q, want user-42", claims.Subject)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want alice", claims.Username)
	}
	if !claims.Superuser {
		t.Error("Superuser flag lost")
	}
}

func TestParseTokenRejectsWrongKey(t *testing.T) {
	token, err := IssueToken("secret", "user-42", "alice", false, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Error("token verified with the wrong key")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	issued := time.Now().Add(-SessionDuration - time.Minute)
	token, err := IssueToken("secret", "user-42", "alice", false, issued)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Error("expired token verified")
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	token, err := IssueToken("secret", "user-42", "alice", false, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments", len(parts))
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := ParseToken("secret", tampered); err == nil {
		t.Error("tampered token verified")
	}
}
