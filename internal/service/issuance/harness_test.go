package issuance

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/certichain-backend/internal/contentstore"
	"github.com/goodnatureofminers/certichain-backend/internal/journal"
	"github.com/goodnatureofminers/certichain-backend/internal/ledger/memory"
	"github.com/goodnatureofminers/certichain-backend/internal/metrics"
	"github.com/goodnatureofminers/certichain-backend/internal/model"
	"github.com/goodnatureofminers/certichain-backend/internal/repository/records"
)

const testIssuer = "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"

func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, Multiplier: 2}
}

func testConfig() Config {
	return Config{
		ContentRetry:        fastRetry(3),
		SubmitRetry:         fastRetry(2),
		TaskRetry:           RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Minute, MaxBackoff: time.Hour, Multiplier: 2},
		ConfirmationTimeout: 50 * time.Millisecond,
		TaskLease:           time.Minute,
		PollInterval:        10 * time.Millisecond,
		WorkerCount:         4,
		BatchSize:           10,
	}
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// harness wires the reconciler to an in-memory database, content store and ledger.
type harness struct {
	reconciler *Reconciler
	worker     *Worker
	records    *records.Repository
	ledger     *memory.Ledger
	clock      *testClock
}

func newHarness(t *testing.T, cfg Config, ledgerCfg memory.Config) *harness {
	t.Helper()
	return newHarnessWithLedger(t, cfg, ledgerCfg, nil)
}

// newHarnessWithLedger lets wrap intercept the reconciler's calls to the memory ledger.
func newHarnessWithLedger(t *testing.T, cfg Config, ledgerCfg memory.Config, wrap func(*memory.Ledger) LedgerClient) *harness {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, dialect, err := records.Open(fmt.Sprintf("sqlite://file:issuance_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	repo := records.NewRepository(db, metrics.NewRecordRepository(dialect), zap.NewNop())
	require.NoError(t, repo.Migrate(ctx))
	t.Cleanup(func() { _ = repo.Close() })

	store, err := contentstore.NewBadgerStore(contentstore.BadgerConfig{}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ledger := memory.New(ledgerCfg, zap.NewNop())
	var client LedgerClient = ledger
	if wrap != nil {
		client = wrap(ledger)
	}
	reconciler, err := NewReconciler(repo, store, client, journal.Nop{}, metrics.NewReconciler(), cfg, zap.NewNop())
	require.NoError(t, err)
	clock := &testClock{now: time.Now().UTC()}
	reconciler.now = clock.Now
	t.Cleanup(func() { _ = reconciler.Shutdown(ctx) })

	worker, err := NewWorker(reconciler, nil, zap.NewNop())
	require.NoError(t, err)
	worker.wait = func(context.Context, time.Duration, <-chan struct{}) error { return nil }

	return &harness{
		reconciler: reconciler,
		worker:     worker,
		records:    repo,
		ledger:     ledger,
		clock:      clock,
	}
}

// drain advances the clock past any scheduled attempt and runs one worker round.
func (h *harness) drain(t *testing.T) {
	t.Helper()
	h.clock.Advance(2 * time.Hour)
	require.NoError(t, h.worker.run(context.Background()))
}

func testRequest(artifact string) model.IssueRequest {
	return model.IssueRequest{
		Artifact:         []byte(artifact),
		ContentType:      "application/pdf",
		SubjectReference: "student-42",
		IssuerIdentity:   testIssuer,
		CourseMetadata: model.CourseMetadata{
			StudentName: "Ada",
			CourseName:  "Distributed Systems",
			Grade:       "A",
		},
	}
}
