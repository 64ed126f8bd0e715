package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanAssignRole(t *testing.T) {
	svc := NewUserService()

	assert.True(t, svc.CanAssignRole(60, 50))
	assert.False(t, svc.CanAssignRole(50, 50), "equal level cannot assign")
	assert.False(t, svc.CanAssignRole(40, 50))
}

func TestEffectivePermissions(t *testing.T) {
	svc := NewUserService()

	t.Run("sorted union", func(t *testing.T) {
		got := svc.EffectivePermissions(
			[]string{"reports.export", "orders.read"},
			[]string{"orders.read", "invoices.read"},
		)
		assert.Equal(t, []string{"invoices.read", "orders.read", "reports.export"}, got)
	})

	t.Run("wildcard collapses", func(t *testing.T) {
		got := svc.EffectivePermissions([]string{"*"}, []string{"orders.read"})
		assert.Equal(t, []string{"*"}, got)

		got = svc.EffectivePermissions([]string{"orders.read"}, []string{"*"})
		assert.Equal(t, []string{"*"}, got)
	})

	t.Run("empty inputs", func(t *testing.T) {
		assert.Empty(t, svc.EffectivePermissions(nil, nil))
	})
}

func TestShouldForcePasswordChange(t *testing.T) {
	svc := NewUserService()

	assert.True(t, svc.ShouldForcePasswordChange(nil, 90), "never changed")

	fresh := time.Now().UTC().Add(-24 * time.Hour)
	assert.False(t, svc.ShouldForcePasswordChange(&fresh, 90))

	old := time.Now().UTC().Add(-91 * 24 * time.Hour)
	assert.True(t, svc.ShouldForcePasswordChange(&old, 90))

	exactly := time.Now().UTC().Add(-90*24*time.Hour - time.Minute)
	assert.True(t, svc.ShouldForcePasswordChange(&exactly, 90), "age == maxDays forces change")
}

func TestValidateLoginStatus(t *testing.T) {
	svc := NewUserService()

	tests := []struct {
		name       string
		active     bool
		locked     bool
		verified   bool
		wantOK     bool
		wantReason string
	}{
		{name: "all good", active: true, locked: false, verified: true, wantOK: true},
		{name: "deactivated", active: false, locked: false, verified: true, wantReason: ReasonAccountDeactivated},
		{name: "locked", active: true, locked: true, verified: true, wantReason: ReasonAccountLocked},
		{name: "unverified", active: true, locked: false, verified: false, wantReason: ReasonEmailNotVerified},
		// short-circuit order: deactivated wins over locked and unverified
		{name: "deactivated and locked", active: false, locked: true, verified: false, wantReason: ReasonAccountDeactivated},
		{name: "locked and unverified", active: true, locked: true, verified: false, wantReason: ReasonAccountLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := svc.ValidateLoginStatus(tt.active, tt.locked, tt.verified)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestAccountRecoveryInfo(t *testing.T) {
	svc := NewUserService()

	t.Run("not locked", func(t *testing.T) {
		info := svc.AccountRecoveryInfo(0, nil, nil)
		assert.False(t, info.IsLocked)
		assert.Zero(t, info.LockSecondsLeft)
		assert.False(t, info.WaitForLockExpiry)
	})

	t.Run("locked with remaining time", func(t *testing.T) {
		until := time.Now().UTC().Add(10 * time.Minute)
		info := svc.AccountRecoveryInfo(0, &until, nil)
		assert.True(t, info.IsLocked)
		assert.InDelta(t, 600, info.LockSecondsLeft, 2)
		assert.True(t, info.WaitForLockExpiry)
	})

	t.Run("lock already expired", func(t *testing.T) {
		until := time.Now().UTC().Add(-time.Minute)
		info := svc.AccountRecoveryInfo(3, &until, nil)
		assert.False(t, info.IsLocked)
		assert.Equal(t, 3, info.FailedAttempts)
		assert.True(t, info.WaitForLockExpiry, "failed attempts still pending")
	})
}
