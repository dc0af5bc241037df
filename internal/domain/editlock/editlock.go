package editlock

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
)

// Timeout bounds for a lock lease, in minutes.
const (
	DefaultTimeoutMinutes = 30
	MinTimeoutMinutes     = 5
	MaxTimeoutMinutes     = 120
)

// EditLock is an exclusive, time-bounded claim on one draft version. The
// storage layer enforces at most one row per version_id.
type EditLock struct {
	ID            int64     `json:"id"`
	VersionID     uuid.UUID `json:"versionId"`
	UserID        uuid.UUID `json:"userId"`
	LockToken     string    `json:"-"`
	AcquiredAt    time.Time `json:"acquiredAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
	LastHeartbeat time.Time `json:"lastHeartbeat"`
	SessionID     *string   `json:"sessionId,omitempty"`
	IPAddress     *string   `json:"ipAddress,omitempty"`
	UserAgent     *string   `json:"userAgent,omitempty"`
}

// IsExpired reports whether the lease has lapsed. Expiry is evaluated lazily
// at access time; no background sweeper is needed for correctness.
func (l *EditLock) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// Refresh extends the lease and records the heartbeat.
func (l *EditLock) Refresh(now time.Time, extend time.Duration) {
	l.ExpiresAt = now.Add(extend)
	l.LastHeartbeat = now
}

// ClampTimeout bounds a caller-supplied lease duration in minutes, falling
// back to the default when unset.
func ClampTimeout(minutes int) time.Duration {
	switch {
	case minutes <= 0:
		minutes = DefaultTimeoutMinutes
	case minutes < MinTimeoutMinutes:
		minutes = MinTimeoutMinutes
	case minutes > MaxTimeoutMinutes:
		minutes = MaxTimeoutMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// GenerateToken returns an opaque URL-safe lock token.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
