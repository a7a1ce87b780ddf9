package account_test

import (
	"testing"
	"time"

	"courtside/internal/domain/account"
)

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		acct    account.Account
		wantErr bool
	}{
		{"valid admin", account.Account{Email: "admin@courtside.nz", Role: account.RoleAdmin}, false},
		{"valid coach", account.Account{Email: "coach@courtside.nz", Role: account.RoleCoach}, false},
		{"valid player", account.Account{Email: "player@courtside.nz", Role: account.RolePlayer}, false},
		{"empty email", account.Account{Email: "  ", Role: account.RolePlayer}, true},
		{"email without at", account.Account{Email: "not-an-email", Role: account.RolePlayer}, true},
		{"bad role", account.Account{Email: "x@y.nz", Role: "member"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.acct.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Account.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestAccount_Passwords tests password hashing and verification.
func TestAccount_Passwords(t *testing.T) {
	a := account.Account{Email: "coach@courtside.nz", Role: account.RoleCoach}

	if err := a.SetPassword("short"); err != account.ErrPasswordTooShort {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := a.SetPassword(""); err != account.ErrEmptyPassword {
		t.Errorf("expected ErrEmptyPassword, got %v", err)
	}

	if err := a.SetPassword("correct horse battery"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if a.PasswordHash == "" || a.PasswordHash == "correct horse battery" {
		t.Error("password hash not set or stored in plaintext")
	}
	if err := a.CheckPassword("correct horse battery"); err != nil {
		t.Errorf("CheckPassword rejected correct password: %v", err)
	}
	if err := a.CheckPassword("wrong password!"); err != account.ErrWrongPassword {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
}

// TestAccount_Lockout tests the failed-login lockout policy.
func TestAccount_Lockout(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := account.Account{Email: "player@courtside.nz", Role: account.RolePlayer}

	for i := 0; i < account.MaxFailedLogins-1; i++ {
		a.RecordFailedLogin(now)
	}
	if a.IsLocked(now) {
		t.Fatalf("locked after %d failures, want unlocked", account.MaxFailedLogins-1)
	}

	a.RecordFailedLogin(now)
	if !a.IsLocked(now) {
		t.Fatal("expected lockout at threshold")
	}
	if a.IsLocked(now.Add(account.LockoutDuration + time.Minute)) {
		t.Error("lockout should expire after LockoutDuration")
	}

	a.ResetFailedLogins()
	if a.FailedLogins != 0 || a.IsLocked(now) {
		t.Error("ResetFailedLogins did not clear state")
	}
}

// TestAccount_CanManageBookings tests role-based booking management.
func TestAccount_CanManageBookings(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{account.RoleAdmin, true},
		{account.RoleCoach, true},
		{account.RolePlayer, false},
	}
	for _, tt := range tests {
		a := account.Account{Role: tt.role}
		if got := a.CanManageBookings(); got != tt.want {
			t.Errorf("CanManageBookings() role=%s = %v, want %v", tt.role, got, tt.want)
		}
	}
}
