package auth

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("Super1234#")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "Super1234#") {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "Super1234") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestHashIsSalted(t *testing.T) {
	a, err := HashPassword("Super1234#")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	b, err := HashPassword("Super1234#")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct salts for identical passwords")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if VerifyPassword("not-a-hash", "x") {
		t.Fatal("expected malformed hash to fail verification")
	}
}

func TestCheckPasswordStrength(t *testing.T) {
	valid := []string{"Super1234#", "Mcl?v&IFZ+1P%ZOj", "Abcdefg1"}
	for _, p := range valid {
		if err := CheckPasswordStrength(p); err != nil {
			t.Fatalf("expected %q to be accepted: %v", p, err)
		}
	}
	invalid := []string{"foo", "abcdefgh", "ABCDEFGH", "Abcdefgh", "12345678", "Ab1"}
	for _, p := range invalid {
		if err := CheckPasswordStrength(p); err == nil {
			t.Fatalf("expected %q to be rejected", p)
		}
	}
}
