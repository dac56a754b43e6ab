package service

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"docscan/internal/errors"
	"docscan/internal/events"
	"docscan/internal/logger"
	"docscan/internal/metrics"
	"docscan/internal/model"
	"docscan/internal/repository"
	"docscan/internal/scanner"
	"docscan/internal/storage"
)

// DocumentStore holds uploaded documents.
type DocumentStore interface {
	Save(name string, data io.Reader) error
	Delete(name string) error
	List(ctx context.Context) ([]model.Document, error)
}

// ScanResult is returned to the uploader.
type ScanResult struct {
	Document         string        `json:"document"`
	BestMatch        scanner.Match `json:"bestMatch"`
	RemainingCredits int           `json:"remainingCredits"`
}

// ScanOptions bound a single scan.
type ScanOptions struct {
	MaxDocumentBytes int64
	Timeout          time.Duration
}

// ScanService charges a credit, compares the upload with the corpus and records the outcome.
type ScanService interface {
	Scan(ctx context.Context, userID uint, filename string, content []byte) (*ScanResult, error)
}

type scanService struct {
	store     repository.Store
	ledger    LedgerService
	docs      DocumentStore
	publisher events.Publisher
	opts      ScanOptions
	now       func() time.Time
}

// NewScanService creates a new scan service.
func NewScanService(store repository.Store, ledger LedgerService, docs DocumentStore, publisher events.Publisher, opts ScanOptions) ScanService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &scanService{
		store:     store,
		ledger:    ledger,
		docs:      docs,
		publisher: publisher,
		opts:      opts,
		now:       time.Now,
	}
}

// Scan rejects invalid uploads and empty balances before any side effect.
// The debit, the scan record and the stored file commit together.
func (s *scanService) Scan(ctx context.Context, userID uint, filename string, content []byte) (*ScanResult, error) {
	start := time.Now()
	result, err := s.scan(ctx, userID, filename, content)
	metrics.ObserveScan(scanOutcome(err), time.Since(start))
	return result, err
}

func (s *scanService) scan(ctx context.Context, userID uint, filename string, content []byte) (*ScanResult, error) {
	if err := validateDocument(content, s.opts.MaxDocumentBytes); err != nil {
		return nil, err
	}

	if _, err := s.ledger.ResetIfStale(ctx, userID, s.ledger.Today()); err != nil {
		return nil, err
	}
	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance <= 0 {
		return nil, errors.ErrInsufficientCredits
	}

	corpus, err := s.docs.List(ctx)
	if err != nil {
		return nil, errors.Storage("list documents", err)
	}

	scanCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		scanCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	at := s.now()
	match, err := scanner.Scan(scanCtx, string(content), corpus, "")
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, errors.ErrScanTimeout
		}
		return nil, err
	}
	similarity := decimal.NewFromFloat(match.Similarity).Round(2)
	match.Similarity = similarity.InexactFloat64()

	var (
		storedName string
		remaining  int
	)
	err = s.store.WithTransaction(ctx, func(tx repository.Store) error {
		if err := s.ledger.Tx(tx).TryDebit(ctx, userID); err != nil {
			return err
		}

		name, err := s.save(filename, content, at)
		if err != nil {
			return errors.Storage("save document", err)
		}
		storedName = name

		record := &model.ScanRecord{
			UserID:       userID,
			DocumentName: storedName,
			MatchedName:  match.Filename,
			Similarity:   similarity,
		}
		if err := tx.ScanRecords().Create(ctx, record); err != nil {
			return errors.Storage("insert scan record", err)
		}

		remaining, err = s.ledger.Tx(tx).GetBalance(ctx, userID)
		return err
	})
	if err != nil {
		if storedName != "" {
			if delErr := s.docs.Delete(storedName); delErr != nil {
				logger.Error("remove orphaned document", zap.String("document", storedName), zap.Error(delErr))
			}
		}
		return nil, err
	}

	result := &ScanResult{
		Document:         storedName,
		BestMatch:        match,
		RemainingCredits: remaining,
	}
	s.publisher.Publish(events.TypeScanCompleted, map[string]interface{}{
		"user_id":    userID,
		"document":   storedName,
		"bestMatch":  match,
		"scanned_at": at.UTC(),
	})
	return result, nil
}

// save stores content under a timestamped name, moving forward a millisecond
// when an upload with the same name landed in the same instant.
func (s *scanService) save(filename string, content []byte, at time.Time) (string, error) {
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		name := storage.StoredName(filename, at.Add(time.Duration(attempt)*time.Millisecond))
		if err = s.docs.Save(name, bytes.NewReader(content)); err == nil {
			return name, nil
		}
		if !stderrors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
	return "", err
}

func scanOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.ScanOK
	case stderrors.Is(err, errors.ErrInsufficientCredits):
		return metrics.ScanNoCredits
	case stderrors.Is(err, errors.ErrScanTimeout):
		return metrics.ScanTimeout
	case stderrors.Is(err, errors.ErrDocumentTooLarge), stderrors.Is(err, errors.ErrUnsupportedDocument):
		return metrics.ScanInvalid
	default:
		return metrics.ScanStorageError
	}
}
