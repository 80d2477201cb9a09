package pool

import (
	"testing"
	"time"
)

func TestStatus_Valid(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusAvailable, true},
		{StatusInUse, true},
		{StatusCooldown, true},
		{StatusQuarantine, true},
		{Status("retired"), false},
		{Status(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("Status(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestAccount_Eligible(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name    string
		account Account
		want    bool
	}{
		{"available no window", Account{IsActive: true, Status: StatusAvailable}, true},
		{"available past cooldown", Account{IsActive: true, Status: StatusAvailable, CooldownUntil: &past}, true},
		{"available future cooldown", Account{IsActive: true, Status: StatusAvailable, CooldownUntil: &future}, false},
		{"in use", Account{IsActive: true, Status: StatusInUse}, false},
		{"cooldown expired before sweep", Account{IsActive: true, Status: StatusCooldown, CooldownUntil: &past}, true},
		{"cooldown still cooling", Account{IsActive: true, Status: StatusCooldown, CooldownUntil: &future}, false},
		{"quarantine expired before sweep", Account{IsActive: true, Status: StatusQuarantine, QuarantineUntil: &past}, true},
		{"quarantine still held", Account{IsActive: true, Status: StatusQuarantine, QuarantineUntil: &future}, false},
		{"inactive", Account{IsActive: false, Status: StatusAvailable}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.account.Eligible(now); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}
