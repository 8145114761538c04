package auth

import "testing"

func TestPinChecker(t *testing.T) {
	check := NewPinChecker("123456")

	tests := []struct {
		pin  string
		want bool
	}{
		{"123456", true},
		{"000000", false},
		{"12345", false},
		{"1234567", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := check(tt.pin); got != tt.want {
			t.Errorf("check(%q) = %v, want %v", tt.pin, got, tt.want)
		}
	}

	empty := NewPinChecker("")
	if empty("") {
		t.Error("empty configured PIN must never authorize")
	}
}

func TestLogin(t *testing.T) {
	s := NewService("staff", "s3cret", "signing-key")

	token, err := s.Login("staff", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Error("empty token for valid credentials")
	}

	if _, err := s.Login("staff", "wrong"); err != ErrBadCredentials {
		t.Errorf("Login error = %v, want ErrBadCredentials", err)
	}
	if _, err := s.Login("admin", "s3cret"); err != ErrBadCredentials {
		t.Errorf("Login error = %v, want ErrBadCredentials", err)
	}
}
