package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docscan/internal/errors"
	"docscan/internal/events"
	"docscan/internal/repository"
	"docscan/internal/scanner"
)

type scanFixture struct {
	store     repository.Store
	ledger    LedgerService
	docs      DocumentStore
	publisher *recordingPublisher
	svc       *scanService
}

func newScanFixture(t *testing.T, opts ScanOptions) *scanFixture {
	t.Helper()
	store := newTestStore(t)
	ledger := NewLedgerService(store, 20, NewCalendar(time.UTC))
	docs := newTestDocs(t)
	publisher := &recordingPublisher{}
	svc := NewScanService(store, ledger, docs, publisher, opts).(*scanService)
	return &scanFixture{store: store, ledger: ledger, docs: docs, publisher: publisher, svc: svc}
}

func TestScanService_HelloWorldScenario(t *testing.T) {
	f := newScanFixture(t, ScanOptions{MaxDocumentBytes: 1 << 10, Timeout: time.Second})
	ctx := context.Background()
	user := seedUser(t, f.store, "alice", 20, time.Now())

	first, err := f.svc.Scan(ctx, user.ID, "doc1.txt", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, scanner.Match{}, first.BestMatch, "empty corpus has no match")
	assert.Equal(t, 19, first.RemainingCredits)
	assert.True(t, strings.HasSuffix(first.Document, "-doc1.txt"))

	second, err := f.svc.Scan(ctx, user.ID, "doc2.txt", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, first.Document, second.BestMatch.Filename)
	assert.Equal(t, 100.0, second.BestMatch.Similarity)
	assert.Equal(t, 18, second.RemainingCredits)

	docs, err := f.docs.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	top, err := f.store.ScanRecords().TopUsers(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(2), top[0].ScanCount)

	assert.Equal(t, []string{events.TypeScanCompleted, events.TypeScanCompleted}, f.publisher.types())
}

func TestScanService_SimilarityRounded(t *testing.T) {
	f := newScanFixture(t, ScanOptions{})
	ctx := context.Background()
	user := seedUser(t, f.store, "bob", 20, time.Now())

	_, err := f.svc.Scan(ctx, user.ID, "a.txt", []byte("abc"))
	require.NoError(t, err)
	res, err := f.svc.Scan(ctx, user.ID, "b.txt", []byte("abd"))
	require.NoError(t, err)
	assert.Equal(t, 66.67, res.BestMatch.Similarity)

	avg, err := f.store.ScanRecords().AverageSimilarity(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 33.335, avg, 0.001)
}

func TestScanService_InsufficientCreditsHasNoSideEffects(t *testing.T) {
	f := newScanFixture(t, ScanOptions{})
	ctx := context.Background()
	user := seedUser(t, f.store, "carol", 0, time.Now())

	_, err := f.svc.Scan(ctx, user.ID, "doc.txt", []byte("text"))
	assert.ErrorIs(t, err, errors.ErrInsufficientCredits)

	docs, err := f.docs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
	n, err := f.store.ScanRecords().CountSince(ctx, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.publisher.types())
}

func TestScanService_StaleBalanceIsResetBeforeCheck(t *testing.T) {
	f := newScanFixture(t, ScanOptions{})
	ctx := context.Background()
	user := seedUser(t, f.store, "dave", 0, time.Now().Add(-48*time.Hour))

	res, err := f.svc.Scan(ctx, user.ID, "doc.txt", []byte("text"))
	require.NoError(t, err)
	assert.Equal(t, 19, res.RemainingCredits)
}

func TestScanService_RejectsInvalidDocuments(t *testing.T) {
	f := newScanFixture(t, ScanOptions{MaxDocumentBytes: 8})
	ctx := context.Background()
	user := seedUser(t, f.store, "erin", 20, time.Now())

	_, err := f.svc.Scan(ctx, user.ID, "big.txt", []byte("more than eight bytes"))
	assert.ErrorIs(t, err, errors.ErrDocumentTooLarge)

	_, err = f.svc.Scan(ctx, user.ID, "bin.dat", []byte{0xff, 0xfe, 0x00})
	assert.ErrorIs(t, err, errors.ErrUnsupportedDocument)

	balance, _ := f.ledger.GetBalance(ctx, user.ID)
	assert.Equal(t, 20, balance)
}

func TestScanService_EmptyDocumentAgainstEmpty(t *testing.T) {
	f := newScanFixture(t, ScanOptions{})
	ctx := context.Background()
	user := seedUser(t, f.store, "frank", 20, time.Now())

	_, err := f.svc.Scan(ctx, user.ID, "empty1.txt", []byte{})
	require.NoError(t, err)
	res, err := f.svc.Scan(ctx, user.ID, "empty2.txt", []byte{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.BestMatch.Similarity)
}

func TestScanService_Timeout(t *testing.T) {
	f := newScanFixture(t, ScanOptions{Timeout: time.Nanosecond})
	ctx := context.Background()
	user := seedUser(t, f.store, "gina", 20, time.Now())

	long := strings.Repeat("abcdefgh", 512)
	// Seed a document directly so the scan has work to time out on.
	require.NoError(t, f.docs.Save("1600000000000-seed.txt", strings.NewReader(long)))

	_, err := f.svc.Scan(ctx, user.ID, "doc.txt", []byte(long))
	assert.ErrorIs(t, err, errors.ErrScanTimeout)

	balance, _ := f.ledger.GetBalance(ctx, user.ID)
	assert.Equal(t, 20, balance, "timed out scans are not charged")
}

func TestScanService_SameNameSameInstant(t *testing.T) {
	f := newScanFixture(t, ScanOptions{})
	ctx := context.Background()
	user := seedUser(t, f.store, "hank", 20, time.Now())
	fixed := time.UnixMilli(1700000000000)
	f.svc.now = func() time.Time { return fixed }

	a, err := f.svc.Scan(ctx, user.ID, "same.txt", []byte("one"))
	require.NoError(t, err)
	b, err := f.svc.Scan(ctx, user.ID, "same.txt", []byte("two"))
	require.NoError(t, err)

	assert.Equal(t, "1700000000000-same.txt", a.Document)
	assert.Equal(t, "1700000000001-same.txt", b.Document)
}

func TestScanService_UnknownUser(t *testing.T) {
	f := newScanFixture(t, ScanOptions{})

	_, err := f.svc.Scan(context.Background(), 404, "doc.txt", []byte("x"))
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}
