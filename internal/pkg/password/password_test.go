package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("Str0ngPass!")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "Str0ngPass!" {
		t.Fatal("hash should not equal the plaintext")
	}
	if !Verify("Str0ngPass!", hash) {
		t.Error("verify should accept the original password")
	}
	if Verify("wrong", hash) {
		t.Error("verify should reject a different password")
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("token-a")
	b := HashToken("token-b")
	if a == b {
		t.Error("different tokens should hash differently")
	}
	if a != HashToken("token-a") {
		t.Error("token hashing should be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("expected a 64-char hex digest, got %d chars", len(a))
	}
}

func TestValidatePassword(t *testing.T) {
	if ValidatePassword("court") {
		t.Error("short passwords should be rejected")
	}
	if !ValidatePassword("longue-phrase") {
		t.Error("passwords of at least 8 characters should be accepted")
	}
}
