package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aihotel/hotel-api/internal/domain/user"
	"github.com/aihotel/hotel-api/internal/pkg/jwt"
	"github.com/aihotel/hotel-api/internal/pkg/oauth"
	"github.com/aihotel/hotel-api/internal/pkg/password"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users []*user.User
}

func (r *fakeUserRepo) find(match func(*user.User) bool) *user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			copied := *u
			return &copied
		}
	}
	return nil
}

func (r *fakeUserRepo) update(id uuid.UUID, fn func(*user.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			fn(u)
			return nil
		}
	}
	return user.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	if r.find(func(x *user.User) bool { return strings.EqualFold(x.Email, u.Email) }) != nil {
		return user.ErrEmailAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *u
	r.users = append(r.users, &copied)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.ID == id }), nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *fakeUserRepo) GetByGoogleID(_ context.Context, id string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.GoogleID.Valid && u.GoogleID.String == id }), nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	return r.update(u.ID, func(x *user.User) { x.Name = u.Name })
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return r.update(id, func(x *user.User) { x.PasswordHash = hash })
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role user.Role) error {
	return r.update(id, func(x *user.User) { x.Role = role })
}

func (r *fakeUserRepo) UpdatePreferences(_ context.Context, u *user.User) error {
	return r.update(u.ID, func(x *user.User) { x.PreferredFloor = u.PreferredFloor })
}

func (r *fakeUserRepo) LinkGoogle(_ context.Context, id uuid.UUID, googleID string) error {
	return r.update(id, func(x *user.User) {
		x.GoogleID.String, x.GoogleID.Valid = googleID, true
		x.IsVerified = true
	})
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(x *user.User) { x.IsVerified = true })
}

func (r *fakeUserRepo) Search(context.Context, string) ([]*user.User, error) { return nil, nil }

func (r *fakeUserRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

type sentLink struct {
	to, name, link string
}

type fakeMailer struct {
	mu    sync.Mutex
	links []sentLink
}

func (m *fakeMailer) SendMagicLink(to, name, link, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, sentLink{to, name, link})
}

func (m *fakeMailer) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.links) == 0 {
		t.Fatal("no magic link sent")
	}
	u, err := url.Parse(m.links[len(m.links)-1].link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	return u.Query().Get("token")
}

type fakeGoogle struct {
	profile *oauth.GoogleProfile
	err     error
}

func (g *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (g *fakeGoogle) Exchange(context.Context, string) (*oauth.GoogleProfile, error) {
	return g.profile, g.err
}

type authFixture struct {
	svc    *Service
	repo   *fakeUserRepo
	mailer *fakeMailer
	google *fakeGoogle
	jwt    *jwt.Service
}

func newAuthFixture(t *testing.T, rdb *redis.Client) *authFixture {
	t.Helper()
	f := &authFixture{
		repo:   &fakeUserRepo{},
		mailer: &fakeMailer{},
		google: &fakeGoogle{},
		jwt:    jwt.NewService("test-secret", time.Hour, 15*time.Minute),
	}
	f.svc = NewService(f.repo, f.jwt, rdb, f.mailer, f.google, "http://frontend.test/")
	return f
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, &RegisterRequest{Name: "Ada", Email: "Ada@Example.com", Password: "secret1", ConfirmPassword: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.Email != "ada@example.com" || res.User.Role != user.RoleGuest || res.Tokens.AccessToken == "" {
		t.Fatalf("unexpected register response: %+v", res)
	}

	claims, err := f.jwt.ValidateAccessToken(res.Tokens.AccessToken)
	if err != nil || claims.UserID != res.User.ID || claims.Role != "guest" {
		t.Fatalf("unexpected claims %+v err=%v", claims, err)
	}

	if _, err := f.svc.Login(ctx, &LoginRequest{Email: "ADA@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := f.svc.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "nope"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.svc.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "secret1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterRejectsDuplicateAndBadPasswords(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, &RegisterRequest{Name: "A", Email: "a@example.com", Password: "abc", ConfirmPassword: "abc"}); !errors.Is(err, password.ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
	if _, err := f.svc.Register(ctx, &RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret2"}); !errors.Is(err, password.ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	if _, err := f.svc.Register(ctx, &RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.svc.Register(ctx, &RegisterRequest{Name: "B", Email: "A@example.com", Password: "secret1", ConfirmPassword: "secret1"}); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestMagicLinkCreatesVerifiedAccount(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	if err := f.svc.RequestMagicLink(ctx, " John.Smith@Example.com "); err != nil {
		t.Fatalf("request: %v", err)
	}
	sent := f.mailer.links[0]
	if sent.to != "john.smith@example.com" || sent.name != "John Smith" || !strings.HasPrefix(sent.link, "http://frontend.test/auth/magic?token=") {
		t.Fatalf("unexpected link: %+v", sent)
	}

	res, err := f.svc.VerifyMagicLink(ctx, f.mailer.lastToken(t))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.User.Name != "John Smith" || !res.User.IsVerified || res.User.HasPassword {
		t.Fatalf("unexpected user: %+v", res.User)
	}
	if n, _ := f.repo.Count(ctx); n != 1 {
		t.Fatalf("expected one account, got %d", n)
	}
}

func TestMagicLinkVerifiesExistingAccount(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	existing := user.New("Grace", "grace@example.com")
	f.repo.Create(ctx, existing)

	f.svc.RequestMagicLink(ctx, "grace@example.com")
	if f.mailer.links[0].name != "Grace" {
		t.Fatalf("expected account name in email, got %q", f.mailer.links[0].name)
	}

	res, err := f.svc.VerifyMagicLink(ctx, f.mailer.lastToken(t))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.User.ID != existing.ID || !res.User.IsVerified {
		t.Fatalf("expected existing account marked verified, got %+v", res.User)
	}
}

func TestMagicLinkRejectsForeignTokens(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	access, _ := f.jwt.GenerateAccessToken(uuid.New(), "guest")
	if _, err := f.svc.VerifyMagicLink(ctx, access); !errors.Is(err, ErrInvalidLink) {
		t.Fatalf("access token must not work as a magic link, got %v", err)
	}
	other := jwt.NewService("other-secret", time.Hour, time.Minute)
	forged, _ := other.GenerateMagicLinkToken("a@example.com")
	if _, err := f.svc.VerifyMagicLink(ctx, forged); !errors.Is(err, ErrInvalidLink) {
		t.Fatalf("expected ErrInvalidLink, got %v", err)
	}
}

func usedLinkKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "magic_link:used:" + hex.EncodeToString(sum[:])
}

func TestMagicLinkSingleUse(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	f := newAuthFixture(t, rdb)
	ctx := context.Background()
	f.svc.RequestMagicLink(ctx, "once@example.com")
	token := f.mailer.lastToken(t)
	key := usedLinkKey(token)

	mock.ExpectSetNX(key, 1, 15*time.Minute).SetVal(true)
	mock.ExpectSetNX(key, 1, 15*time.Minute).SetVal(false)

	if _, err := f.svc.VerifyMagicLink(ctx, token); err != nil {
		t.Fatalf("first use: %v", err)
	}
	if _, err := f.svc.VerifyMagicLink(ctx, token); !errors.Is(err, ErrLinkAlreadyUsed) {
		t.Fatalf("expected ErrLinkAlreadyUsed, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMagicLinkRedisErrorDoesNotBlockSignIn(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	f := newAuthFixture(t, rdb)
	ctx := context.Background()
	f.svc.RequestMagicLink(ctx, "flaky@example.com")
	token := f.mailer.lastToken(t)

	mock.ExpectSetNX(usedLinkKey(token), 1, 15*time.Minute).SetErr(errors.New("connection refused"))

	if _, err := f.svc.VerifyMagicLink(ctx, token); err != nil {
		t.Fatalf("expected sign-in despite redis error, got %v", err)
	}
}

func TestMagicLinkSingleUseWithRedis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_URL")
	if addr == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	f := newAuthFixture(t, rdb)
	ctx := context.Background()
	f.svc.RequestMagicLink(ctx, "once@example.com")
	token := f.mailer.lastToken(t)

	if _, err := f.svc.VerifyMagicLink(ctx, token); err != nil {
		t.Fatalf("first use: %v", err)
	}
	if _, err := f.svc.VerifyMagicLink(ctx, token); !errors.Is(err, ErrLinkAlreadyUsed) {
		t.Fatalf("expected ErrLinkAlreadyUsed, got %v", err)
	}
}

func googleState(t *testing.T, f *authFixture) string {
	t.Helper()
	raw, err := f.svc.GoogleAuthURL()
	if err != nil {
		t.Fatalf("auth url: %v", err)
	}
	u, _ := url.Parse(raw)
	return u.Query().Get("state")
}

func TestGoogleCallbackCreatesLinksAndFinds(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	existing := user.New("Ada", "ada@example.com")
	f.repo.Create(ctx, existing)

	f.google.profile = &oauth.GoogleProfile{ID: "g-ada", Email: "ada@example.com", VerifiedEmail: true, Name: "Ada L"}
	res, err := f.svc.GoogleCallback(ctx, "code", googleState(t, f))
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if res.User.ID != existing.ID || !res.User.GoogleLinked {
		t.Fatalf("expected existing account linked, got %+v", res.User)
	}

	res, err = f.svc.GoogleCallback(ctx, "code", googleState(t, f))
	if err != nil || res.User.ID != existing.ID {
		t.Fatalf("expected lookup by google id, got %+v err=%v", res, err)
	}

	f.google.profile = &oauth.GoogleProfile{ID: "g-new", Email: "new@example.com", VerifiedEmail: true}
	res, err = f.svc.GoogleCallback(ctx, "code", googleState(t, f))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.User.Name != "New" || !res.User.IsVerified || !res.User.GoogleLinked {
		t.Fatalf("unexpected new user: %+v", res.User)
	}
}

func TestGoogleCallbackRejectsBadState(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.google.profile = &oauth.GoogleProfile{ID: "g", Email: "g@example.com", VerifiedEmail: true}

	if _, err := f.svc.GoogleCallback(context.Background(), "code", "forged"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestGoogleDisabled(t *testing.T) {
	svc := NewService(&fakeUserRepo{}, jwt.NewService("s", time.Hour, time.Minute), nil, &fakeMailer{}, nil, "http://frontend.test")
	if _, err := svc.GoogleAuthURL(); !errors.Is(err, ErrGoogleDisabled) {
		t.Fatalf("expected ErrGoogleDisabled, got %v", err)
	}
}
