package common

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	rcommon "github.com/bobmcallan/raymonds/internal/common"
)

const (
	surrealImage     = "surrealdb/surrealdb:v3.0.0"
	surrealRPCPort   = "8000/tcp"
	surrealUser      = "root"
	surrealPass      = "root"
	sessionNamespace = "raymonds_test"
)

var (
	sessionDBOnce sync.Once
	sessionDB     *SessionDB
	sessionDBErr  error
	databaseSeq   atomic.Int64
)

// SessionDB is a SurrealDB container holding the key/value session table
// for storage tests. One container serves the whole test process; each test
// gets its own database inside sessionNamespace.
type SessionDB struct {
	container testcontainers.Container
	address   string
}

// StartSessionDB starts (once) the SurrealDB container. Tests are skipped
// when no container runtime is available.
func StartSessionDB(t *testing.T) *SessionDB {
	t.Helper()

	sessionDBOnce.Do(func() {
		sessionDB, sessionDBErr = startSessionDB(context.Background())
	})
	if sessionDBErr != nil {
		t.Skipf("SurrealDB unavailable: %v", sessionDBErr)
	}
	return sessionDB
}

func startSessionDB(ctx context.Context) (*SessionDB, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        surrealImage,
			ExposedPorts: []string{surrealRPCPort},
			Cmd:          []string{"start", "--user", surrealUser, "--pass", surrealPass},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(surrealRPCPort),
				wait.ForLog("Started web server"),
			).WithDeadline(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start container: %w", err)
	}

	endpoint, err := container.PortEndpoint(ctx, surrealRPCPort, "ws")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("resolve rpc endpoint: %w", err)
	}

	return &SessionDB{container: container, address: endpoint + "/rpc"}, nil
}

// Address returns the WebSocket RPC address.
func (s *SessionDB) Address() string {
	return s.address
}

// StorageConfig returns a surrealdb storage section pointing at a fresh
// database named after the test.
func (s *SessionDB) StorageConfig(t *testing.T) rcommon.StorageConfig {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "-", "_").Replace(t.Name())
	return rcommon.StorageConfig{
		Backend:   "surrealdb",
		Address:   s.address,
		Namespace: sessionNamespace,
		Database:  fmt.Sprintf("kv_%s_%d", name, databaseSeq.Add(1)),
		Username:  surrealUser,
		Password:  surrealPass,
	}
}

// Terminate stops the container.
func (s *SessionDB) Terminate() {
	if s != nil && s.container != nil {
		s.container.Terminate(context.Background())
	}
}
