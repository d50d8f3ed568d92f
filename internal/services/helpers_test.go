package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arzan03/CampusPortal/internal/auth"
	"github.com/arzan03/CampusPortal/internal/config"
	"github.com/arzan03/CampusPortal/internal/logging"
	"github.com/arzan03/CampusPortal/internal/mailer"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/arzan03/CampusPortal/internal/ratelimit"
	"github.com/arzan03/CampusPortal/internal/repository"
	"github.com/arzan03/CampusPortal/internal/repository/memory"
	"github.com/arzan03/CampusPortal/internal/storage"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail bool
	demo bool
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) DemoMode() bool { return m.demo }

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store   *repository.Store
	mail    *recordingMailer
	objects *storage.MemoryStore
	clock   *clock
	svc     *Services
	otpCode string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	c := &clock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	f := &fixture{
		store:   memory.NewStore(),
		mail:    &recordingMailer{},
		objects: storage.NewMemoryStore("test"),
		clock:   c,
		otpCode: "123456",
	}

	cfg := config.OTPConfig{TTL: 10 * time.Minute, MaxAttempts: 5, ResendCooldown: 30 * time.Second}
	limiter := ratelimit.NewMemoryLimiter().WithClock(c.Now)
	tokens := auth.NewTokenManager("test-secret", 24*time.Hour).WithClock(c.Now)

	f.svc = New(f.store, f.mail, limiter, tokens, f.objects, cfg, logging.Discard())
	f.svc.OTP.WithClock(c.Now)
	f.svc.OTP.generate = func() (string, error) { return f.otpCode, nil }
	f.svc.Auth.WithClock(c.Now)
	f.svc.Listings.WithClock(c.Now)
	f.svc.Notifications.WithClock(c.Now)
	return f
}

func (f *fixture) signup(t *testing.T, email, regdNo string) *models.User {
	t.Helper()
	_, err := f.svc.Auth.Signup(context.Background(), SignupInput{
		Name: "Asha", RegdNo: regdNo, Email: email, Phone: "9000000000", Password: "secret1",
	})
	require.NoError(t, err)
	u, err := f.store.Users.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return u
}

func (f *fixture) verifiedUser(t *testing.T, email, regdNo string) *models.User {
	t.Helper()
	f.signup(t, email, regdNo)
	s, err := f.svc.Auth.VerifyEmail(context.Background(), VerifyInput{Email: email, OTP: f.otpCode})
	require.NoError(t, err)
	return s.User
}

func (f *fixture) admin(t *testing.T) *models.User {
	t.Helper()
	u := f.verifiedUser(t, "admin@campus.edu", "ADM001")
	promoted, err := f.svc.Users.Promote(context.Background(), PromoteInput{Email: u.Email})
	require.NoError(t, err)
	return promoted
}
