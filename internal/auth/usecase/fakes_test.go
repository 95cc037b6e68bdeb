package usecase

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apikeyDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/apikey/domain"
	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	authDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/repository"
	authService "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/service"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/clock"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/ratelimit"
)

const testPassword = "SolarPanel2025!"

var controllerStart = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

// plainPasswords stands in for Argon2id so tests do not pay for real hashing.
type plainPasswords struct{}

func (plainPasswords) Hash(password string) (string, error) {
	return "plain$" + password, nil
}

func (plainPasswords) Verify(password, hash string) bool {
	return hash == "plain$"+password
}

// countingPasswords records Verify calls and can slow them down to widen race windows.
type countingPasswords struct {
	plainPasswords
	delay time.Duration

	mu       sync.Mutex
	verified []string
}

func (p *countingPasswords) Verify(password, hash string) bool {
	p.mu.Lock()
	p.verified = append(p.verified, hash)
	p.mu.Unlock()

	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return p.plainPasswords.Verify(password, hash)
}

func (p *countingPasswords) verifiedHashes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.verified...)
}

type authEvent struct {
	actor    auditDomain.Actor
	action   string
	success  bool
	metadata map[string]any
}

type authzEvent struct {
	actor       auditDomain.Actor
	resource    string
	permissions []string
	granted     bool
}

type securityEvent struct {
	action   string
	severity auditDomain.Severity
	metadata map[string]any
}

type userEvent struct {
	action        string
	userID        string
	before, after map[string]any
}

// recordingAudit captures what the access controller reports.
type recordingAudit struct {
	mu              sync.Mutex
	authentications []authEvent
	authorizations  []authzEvent
	security        []securityEvent
	users           []userEvent
}

func (r *recordingAudit) LogAuthentication(
	_ context.Context,
	actor auditDomain.Actor,
	action string,
	success bool,
	metadata map[string]any,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authentications = append(r.authentications, authEvent{
		actor: actor, action: action, success: success, metadata: metadata,
	})
}

func (r *recordingAudit) LogAuthorization(
	_ context.Context,
	actor auditDomain.Actor,
	resource string,
	permissions []string,
	granted bool,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authorizations = append(r.authorizations, authzEvent{
		actor: actor, resource: resource, permissions: permissions, granted: granted,
	})
}

func (r *recordingAudit) LogSecurityEvent(
	_ context.Context,
	_ auditDomain.Actor,
	action string,
	severity auditDomain.Severity,
	metadata map[string]any,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.security = append(r.security, securityEvent{action: action, severity: severity, metadata: metadata})
}

func (r *recordingAudit) LogUserEvent(
	_ context.Context,
	_ auditDomain.Actor,
	action, userID string,
	before, after map[string]any,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userEvent{action: action, userID: userID, before: before, after: after})
}

func (r *recordingAudit) lastAuthentication() authEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.authentications[len(r.authentications)-1]
}

func (r *recordingAudit) lastAuthorization() authzEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.authorizations[len(r.authorizations)-1]
}

func (r *recordingAudit) securityActions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, len(r.security))
	for i, e := range r.security {
		actions[i] = e.action
	}
	return actions
}

// countingUsers tracks whether the credential store was consulted.
type countingUsers struct {
	*repository.MemoryUserRepository
	mu         sync.Mutex
	getByEmail int
}

func (c *countingUsers) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	c.mu.Lock()
	c.getByEmail++
	c.mu.Unlock()
	return c.MemoryUserRepository.GetByEmail(ctx, email)
}

func (c *countingUsers) lookups() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getByEmail
}

type mockKeyVault struct {
	mock.Mock
}

func (m *mockKeyVault) CreateKey(
	ctx context.Context,
	userID uuid.UUID,
	input *apikeyDomain.CreateAPIKeyInput,
) (*apikeyDomain.CreateAPIKeyOutput, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apikeyDomain.CreateAPIKeyOutput), args.Error(1)
}

func (m *mockKeyVault) ValidateKey(
	ctx context.Context,
	plainKey string,
) (*apikeyDomain.ValidateAPIKeyOutput, error) {
	args := m.Called(ctx, plainKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apikeyDomain.ValidateAPIKeyOutput), args.Error(1)
}

type controllerFixture struct {
	controller AccessController
	users      *countingUsers
	sessions   *repository.MemorySessionStore
	lockouts   *repository.MemoryLockoutStore
	passwords  *countingPasswords
	limiter    *ratelimit.Store
	tokens     authService.TokenService
	vault      *mockKeyVault
	clock      *clock.Fake
	audit      *recordingAudit
}

func defaultControllerConfig() Config {
	return Config{
		TokenExpiration:    4 * time.Hour,
		SessionTimeout:     30 * time.Minute,
		LockoutMaxAttempts: 5,
		LockoutDuration:    15 * time.Minute,
		MFARequiredRoles:   []authDomain.Role{authDomain.RoleSuperAdmin},
		MFATokenExpiration: 5 * time.Minute,
		RateLimitEndpoints: map[string]int{"/api/auth/login": 2, "/api/*": 100},
	}
}

func newControllerFixture(t *testing.T, cfg Config) *controllerFixture {
	t.Helper()

	clk := clock.NewFake(controllerStart)
	tokens, err := authService.NewTokenService(bytes.Repeat([]byte("k"), 32), clk)
	require.NoError(t, err)

	f := &controllerFixture{
		users:     &countingUsers{MemoryUserRepository: repository.NewMemoryUserRepository()},
		sessions:  repository.NewMemorySessionStore(),
		lockouts:  repository.NewMemoryLockoutStore(),
		passwords: &countingPasswords{},
		limiter:   ratelimit.NewStore(clk, time.Hour),
		tokens:    tokens,
		vault:     &mockKeyVault{},
		clock:     clk,
		audit:     &recordingAudit{},
	}
	f.controller = NewAccessController(
		cfg,
		f.users,
		f.sessions,
		f.lockouts,
		f.passwords,
		tokens,
		authService.NewTOTPService("ZOE Solar", clk),
		f.vault,
		f.limiter,
		clk,
		f.audit,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

// addUser stores an active user whose password is testPassword.
func (f *controllerFixture) addUser(t *testing.T, email string, roles ...authDomain.Role) *authDomain.User {
	t.Helper()

	user := &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        email,
		PasswordHash: "plain$" + testPassword,
		Roles:        roles,
		IsActive:     true,
		CreatedAt:    f.clock.Now(),
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *controllerFixture) login(t *testing.T, email, address string) *authDomain.LoginOutput {
	t.Helper()

	output, err := f.controller.Login(context.Background(), email, testPassword, authDomain.RequestContext{
		IPAddress: address,
		UserAgent: "Mozilla/5.0",
	})
	require.NoError(t, err)
	return output
}

func fromAddress(address string) authDomain.RequestContext {
	return authDomain.RequestContext{IPAddress: address, UserAgent: "Mozilla/5.0"}
}
