package editlock

import (
	"testing"
	"time"
)

func TestIsExpired(t *testing.T) {
	now := time.Now().UTC()
	l := &EditLock{ExpiresAt: now.Add(time.Minute)}
	if l.IsExpired(now) {
		t.Fatal("lock with future expiry must not be expired")
	}
	if l.IsExpired(now.Add(2*time.Minute)) != true {
		t.Fatal("lock past expiry must be expired")
	}
	// expiry is strict: now == expires_at is still live
	if l.IsExpired(l.ExpiresAt) {
		t.Fatal("lock at exact expiry instant is still live")
	}
}

func TestRefresh(t *testing.T) {
	now := time.Now().UTC()
	l := &EditLock{ExpiresAt: now.Add(time.Minute)}
	l.Refresh(now, 30*time.Minute)
	if !l.ExpiresAt.Equal(now.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry after refresh: %v", l.ExpiresAt)
	}
	if !l.LastHeartbeat.Equal(now) {
		t.Fatalf("unexpected heartbeat after refresh: %v", l.LastHeartbeat)
	}
}

func TestClampTimeout(t *testing.T) {
	cases := []struct {
		minutes int
		want    time.Duration
	}{
		{0, 30 * time.Minute},
		{-10, 30 * time.Minute},
		{1, 5 * time.Minute},
		{5, 5 * time.Minute},
		{45, 45 * time.Minute},
		{120, 120 * time.Minute},
		{500, 120 * time.Minute},
	}
	for _, c := range cases {
		if got := ClampTimeout(c.minutes); got != c.want {
			t.Fatalf("ClampTimeout(%d) = %v, want %v", c.minutes, got, c.want)
		}
	}
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := GenerateToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if a == b {
		t.Fatal("tokens must be unique")
	}
	if len(a) < 40 {
		t.Fatalf("token too short: %d", len(a))
	}
}
