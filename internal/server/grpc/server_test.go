package grpc

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/authdir/internal/clock"
	"github.com/dmitrijs2005/authdir/internal/common"
	"github.com/dmitrijs2005/authdir/internal/logging"
	pb "github.com/dmitrijs2005/authdir/internal/proto"
	"github.com/dmitrijs2005/authdir/internal/server/auth"
	"github.com/dmitrijs2005/authdir/internal/server/models"
	"github.com/dmitrijs2005/authdir/internal/server/repositories/cache"
	"github.com/dmitrijs2005/authdir/internal/server/services"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv, err := NewGRPCServer("127.0.0.1:0", nopLogger{}, &fakeUser{}, nil, time.Second)
	if err != nil {
		t.Fatalf("NewGRPCServer error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv, err := NewGRPCServer("127.0.0.1:99999", nopLogger{}, &fakeUser{}, nil, time.Second)
	if err != nil {
		t.Fatalf("NewGRPCServer error (constructor should not fail here): %v", err)
	}

	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected listen error")
	}
}

// memUsers is an in-memory users table with a unique username.
type memUsers struct {
	mu   sync.Mutex
	rows map[string]models.User
}

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[u.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = int64(len(m.rows) + 1)
	m.rows[u.UserName] = *u
	return u, nil
}

func (m *memUsers) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

type e2e struct {
	conn   *grpc.ClientConn
	client pb.AuthenticationClient
	clock  *clock.MockClock
	redis  *miniredis.Miniredis
	users  *memUsers
}

func startE2E(t *testing.T, ttl time.Duration) *e2e {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := &memUsers{rows: map[string]models.User{}}
	mc := clock.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	codec, err := auth.NewTokenCodec([]byte("e2e-secret"), ttl, mc)
	require.NoError(t, err)

	store := services.NewCredentialStore(cache.NewRedisRepository(rdb, time.Second), users, nil, nopLogger{})
	us, err := services.NewUserService(store, hasher, codec)
	require.NoError(t, err)

	srv, err := NewGRPCServer("bufnet", nopLogger{}, us, nil, 5*time.Second)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &e2e{conn: conn, client: pb.NewAuthenticationClient(conn), clock: mc, redis: mr, users: users}
}

func TestEndToEnd_RegisterAuthenticateValidate(t *testing.T) {
	env := startE2E(t, time.Hour)
	ctx := context.Background()

	reg, err := env.client.Register(ctx, &pb.RegisterRequest{Username: "alice123", Password: "secret!", Role: "team_manager"})
	require.NoError(t, err)
	assert.True(t, reg.GetSuccess())
	assert.True(t, env.redis.Exists("user:alice123"))

	authResp, err := env.client.Authenticate(ctx, &pb.AuthenticateRequest{Username: "alice123", Password: "secret!"})
	require.NoError(t, err)
	require.NotEmpty(t, authResp.GetToken())

	val, err := env.client.ValidateToken(ctx, &pb.ValidateTokenRequest{Token: authResp.GetToken()})
	require.NoError(t, err)
	assert.Equal(t, "alice123", val.GetUsername())
	assert.Equal(t, "team_manager", val.GetRole())
	assert.Equal(t, strconv.FormatInt(env.clock.Now().Add(time.Hour).Unix(), 10), val.GetExpiration())

	_, err = env.client.Register(ctx, &pb.RegisterRequest{Username: "alice123", Password: "secret!", Role: "team_manager"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestEndToEnd_StatusCodes(t *testing.T) {
	env := startE2E(t, time.Hour)
	ctx := context.Background()

	_, err := env.client.Register(ctx, &pb.RegisterRequest{Username: "alice123", Password: "secret!", Role: "admin"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Empty(t, env.users.rows)

	_, err = env.client.Register(ctx, &pb.RegisterRequest{Username: "abc", Password: "secret!", Role: "insurance"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = env.client.Register(ctx, &pb.RegisterRequest{Username: "bob_smith", Password: "secret!", Role: "insurance"})
	require.NoError(t, err)

	_, wrong := env.client.Authenticate(ctx, &pb.AuthenticateRequest{Username: "bob_smith", Password: "nope-nope"})
	_, unknown := env.client.Authenticate(ctx, &pb.AuthenticateRequest{Username: "nobody1", Password: "secret!"})
	assert.Equal(t, codes.Unauthenticated, status.Code(wrong))
	assert.Equal(t, status.Convert(wrong).Message(), status.Convert(unknown).Message())
	assert.Equal(t, codes.Unauthenticated, status.Code(unknown))

	_, err = env.client.ValidateToken(ctx, &pb.ValidateTokenRequest{Token: "garbage"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "invalid token", status.Convert(err).Message())
}

func TestEndToEnd_TokenExpires(t *testing.T) {
	env := startE2E(t, time.Second)
	ctx := context.Background()

	_, err := env.client.Register(ctx, &pb.RegisterRequest{Username: "alice123", Password: "secret!", Role: "team_manager"})
	require.NoError(t, err)
	authResp, err := env.client.Authenticate(ctx, &pb.AuthenticateRequest{Username: "alice123", Password: "secret!"})
	require.NoError(t, err)

	env.clock.Advance(2 * time.Second)

	_, err = env.client.ValidateToken(ctx, &pb.ValidateTokenRequest{Token: authResp.GetToken()})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestEndToEnd_CacheMissRepopulates(t *testing.T) {
	env := startE2E(t, time.Hour)
	ctx := context.Background()

	_, err := env.client.Register(ctx, &pb.RegisterRequest{Username: "alice123", Password: "secret!", Role: "team_manager"})
	require.NoError(t, err)

	env.redis.FlushAll()

	_, err = env.client.Authenticate(ctx, &pb.AuthenticateRequest{Username: "alice123", Password: "secret!"})
	require.NoError(t, err)
	assert.True(t, env.redis.Exists("user:alice123"))
}

func TestEndToEnd_CacheDown(t *testing.T) {
	env := startE2E(t, time.Hour)
	ctx := context.Background()

	_, err := env.client.Register(ctx, &pb.RegisterRequest{Username: "alice123", Password: "secret!", Role: "team_manager"})
	require.NoError(t, err)

	env.redis.Close()

	_, err = env.client.Authenticate(ctx, &pb.AuthenticateRequest{Username: "alice123", Password: "secret!"})
	require.NoError(t, err)
}

func TestEndToEnd_RequestIDEchoed(t *testing.T) {
	env := startE2E(t, time.Hour)

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.RequestIDHeaderName, "trace-1")
	var header metadata.MD
	_, err := env.client.Ping(ctx, &pb.PingRequest{}, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"trace-1"}, header.Get(common.RequestIDHeaderName))
}

func TestEndToEnd_PlainProtobufClient(t *testing.T) {
	env := startE2E(t, time.Hour)

	err := env.conn.Invoke(context.Background(), pb.Authentication_Ping_FullMethodName, &emptypb.Empty{}, &emptypb.Empty{})
	require.NoError(t, err)
}

func TestEndToEnd_PasswordOverBcryptLimit(t *testing.T) {
	env := startE2E(t, time.Hour)
	ctx := context.Background()

	_, err := env.client.Register(ctx, &pb.RegisterRequest{Username: "alice123", Password: strings.Repeat("p", 80), Role: "insurance"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = env.client.Register(ctx, &pb.RegisterRequest{Username: "alice123", Password: strings.Repeat("p", 72), Role: "insurance"})
	require.NoError(t, err)
}
