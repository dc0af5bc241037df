package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyAuditLog(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	log, err := NewAuditLog(&AuditEntry{
		EntityType: EntityTypeVersion,
		EntityID:   "b2f7c6ce-3d7e-4a8a-9f6f-8f1f2e3d4c5b",
		Action:     ActionPublish,
		Actor:      "user:admin",
		ActorRoles: []string{"ADMIN"},
		Reason:     "published v1.0",
	})
	require.NoError(t, err)

	log.Signature = SignAuditLog(log, key)
	assert.True(t, VerifyAuditLogSignature(log, key))

	t.Run("tampered entry fails verification", func(t *testing.T) {
		log.Actor = "user:attacker"
		assert.False(t, VerifyAuditLogSignature(log, key))
	})

	t.Run("shifting a byte across a field boundary fails verification", func(t *testing.T) {
		signed, err := NewAuditLog(&AuditEntry{EntityType: EntityTypeVersion, EntityID: "doc-7", Action: ActionSave, Actor: "user:qa"})
		require.NoError(t, err)
		signed.Signature = SignAuditLog(signed, key)
		signed.EntityID = "doc-"
		signed.Actor = "7user:qa"
		assert.False(t, VerifyAuditLogSignature(signed, key))
	})

	t.Run("missing signature fails", func(t *testing.T) {
		unsigned, err := NewAuditLog(&AuditEntry{EntityType: EntityTypeLock, EntityID: "x", Action: ActionLockAcquire, Actor: "user:a"})
		require.NoError(t, err)
		assert.False(t, VerifyAuditLogSignature(unsigned, key))
	})
}

func TestDetermineRiskLevel(t *testing.T) {
	cases := []struct {
		entity EntityType
		action Action
		want   RiskLevel
	}{
		{EntityTypeVersion, ActionPublish, RiskLevelHigh},
		{EntityTypeVersion, ActionArchive, RiskLevelHigh},
		{EntityTypeLock, ActionLockForceRelease, RiskLevelHigh},
		{EntityTypeUser, ActionCreate, RiskLevelHigh},
		{EntityTypeUser, ActionLogin, RiskLevelLow},
		{EntityTypeVersion, ActionSubmit, RiskLevelMedium},
		{EntityTypeVersion, ActionApprove, RiskLevelMedium},
		{EntityTypeVersion, ActionSave, RiskLevelLow},
		{EntityTypeVersion, ActionAutosave, RiskLevelLow},
		{EntityTypeLock, ActionLockAcquire, RiskLevelLow},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DetermineRiskLevel(c.entity, c.action), "%s/%s", c.entity, c.action)
	}
}
