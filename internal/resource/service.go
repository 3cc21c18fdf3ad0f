package resource

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/abduss/studynotes/internal/logger"
	"github.com/abduss/studynotes/internal/metrics"
	"github.com/abduss/studynotes/internal/objectstore"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	compensationTimeout = 30 * time.Second
	defaultSweepLimit   = 500
)

type metadataStore interface {
	CreatePending(ctx context.Context, res Resource) (Resource, error)
	Promote(ctx context.Context, id uuid.UUID, fileURL string) (Resource, error)
	DiscardPending(ctx context.Context, id uuid.UUID, cleanup func(context.Context, Resource) error) (bool, error)
	ListByYear(ctx context.Context, year string) ([]Resource, error)
	ListAll(ctx context.Context) ([]Resource, error)
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]Resource, error)
	Get(ctx context.Context, id uuid.UUID) (Resource, error)
	Delete(ctx context.Context, id uuid.UUID) (Resource, error)
}

// Service runs the ingestion saga and serves resource queries.
type Service struct {
	repo     metadataStore
	objects  objectstore.Store
	maxBytes int64
	logger   *zap.Logger
	nowFunc  func() time.Time
}

// NewService constructs a resource service. maxBytes caps a single upload.
func NewService(repo metadataStore, objects objectstore.Store, maxBytes int64, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		objects:  objects,
		maxBytes: maxBytes,
		logger:   log,
		nowFunc:  time.Now,
	}
}

// MaxBytes reports the configured upload cap.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Upload stores the file and records its metadata.
//
// A pending row is written before the object store is touched and promoted
// once the upload succeeds. When either step fails the object is removed
// while the pending row is deleted; if the removal fails the row stays behind
// for SweepPending. A row that turns out to be promoted despite the error is
// returned as a successful upload.
func (s *Service) Upload(ctx context.Context, in Upload) (Resource, error) {
	log := logger.Ctx(ctx, s.logger)

	if in.Body == nil {
		metrics.ObserveUpload(metrics.UploadRejected)
		return Resource{}, ErrNoFile
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		metrics.ObserveUpload(metrics.UploadRejected)
		return Resource{}, ErrFileTooLarge
	}

	fields := in.Fields.withDefaults(in.Filename)
	id := uuid.New()
	draft := Resource{
		ID:          id,
		Title:       fields.Title,
		Year:        fields.Year,
		Subject:     fields.Subject,
		Course:      fields.Course,
		Type:        fields.Type,
		Folder:      fields.Folder,
		ContentType: detectContentType(in.ContentType, in.Filename),
		SizeBytes:   in.Size,
		// The object store folder defaults to "uploads", not to the
		// metadata folder default.
		ObjectKey: objectstore.Key(in.Fields.Folder, id, in.Filename),
	}

	pending, err := s.repo.CreatePending(ctx, draft)
	if err != nil {
		metrics.ObserveUpload(metrics.UploadFailed)
		return Resource{}, fmt.Errorf("%w: record pending upload: %w", ErrUploadFailed, err)
	}

	fileURL, err := s.objects.Put(ctx, objectstore.Object{
		Key:         pending.ObjectKey,
		Body:        in.Body,
		Size:        in.Size,
		ContentType: pending.ContentType,
	})
	if err != nil {
		// A timed out attempt may still have stored the object.
		s.compensate(ctx, log, pending, err)
		metrics.ObserveUpload(metrics.UploadFailed)
		return Resource{}, fmt.Errorf("%w: store object: %w", ErrUploadFailed, err)
	}

	stored, err := s.repo.Promote(ctx, pending.ID, fileURL)
	if err != nil {
		if stored, ok := s.compensate(ctx, log, pending, err); ok {
			return s.uploaded(log, stored), nil
		}
		metrics.ObserveUpload(metrics.UploadFailed)
		return Resource{}, fmt.Errorf("%w: promote resource: %w", ErrUploadFailed, err)
	}

	return s.uploaded(log, stored), nil
}

func (s *Service) uploaded(log *zap.Logger, stored Resource) Resource {
	metrics.ObserveUpload(metrics.UploadSucceeded)
	log.Info("resource uploaded",
		zap.String("resource_id", stored.ID.String()),
		zap.String("object_key", stored.ObjectKey),
		zap.Int64("size_bytes", stored.SizeBytes),
	)
	return stored
}

// ListByYear returns resources whose year matches exactly.
func (s *Service) ListByYear(ctx context.Context, year string) ([]Resource, error) {
	return s.repo.ListByYear(ctx, year)
}

// ListAll returns every ready resource.
func (s *Service) ListAll(ctx context.Context) ([]Resource, error) {
	return s.repo.ListAll(ctx)
}

// ListGrouped returns the category/folder view. A nil year lists everything.
func (s *Service) ListGrouped(ctx context.Context, year *string) (Grouped, error) {
	var (
		list []Resource
		err  error
	)
	if year != nil {
		list, err = s.repo.ListByYear(ctx, *year)
	} else {
		list, err = s.repo.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return GroupByCategory(list), nil
}

// Get returns a single resource.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Resource, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes the resource row and then its stored object. A failed object
// removal is logged and leaves the row deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if err := s.objects.Remove(ctx, res.ObjectKey); err != nil {
		logger.Ctx(ctx, s.logger).Error("remove object of deleted resource",
			zap.String("resource_id", res.ID.String()),
			zap.String("object_key", res.ObjectKey),
			zap.Error(err),
		)
	}
	return nil
}

// SweepResult summarizes one SweepPending run.
type SweepResult struct {
	Examined int
	Removed  int
	Failed   int
}

// SweepPending reaps uploads left pending for longer than maxAge: their
// objects are removed and the rows discarded. limit <= 0 uses a default batch.
func (s *Service) SweepPending(ctx context.Context, maxAge time.Duration, limit int) (SweepResult, error) {
	if limit <= 0 {
		limit = defaultSweepLimit
	}
	log := logger.Ctx(ctx, s.logger)

	stale, err := s.repo.ListStalePending(ctx, s.nowFunc().Add(-maxAge), limit)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Examined: len(stale)}
	for _, res := range stale {
		discarded, err := s.repo.DiscardPending(ctx, res.ID, s.removeObject)
		switch {
		case err != nil:
			result.Failed++
			log.Warn("sweep: discard pending upload", zap.String("resource_id", res.ID.String()), zap.Error(err))
		case discarded:
			result.Removed++
		}
	}
	return result, nil
}

// compensate undoes a failed upload. The pending row is deleted and its
// object removed in one step; a failed removal keeps the row for
// SweepPending. It returns the record, true when the row was promoted after
// all and the upload therefore stands.
func (s *Service) compensate(ctx context.Context, log *zap.Logger, pending Resource, cause error) (Resource, bool) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	fields := []zap.Field{
		zap.String("resource_id", pending.ID.String()),
		zap.String("object_key", pending.ObjectKey),
		zap.NamedError("cause", cause),
	}

	discarded, err := s.repo.DiscardPending(cctx, pending.ID, s.removeObject)
	if err != nil {
		metrics.ObserveCompensation(metrics.CompensationLeftPending)
		log.Error("compensation failed, pending row kept for sweeper", append(fields, zap.Error(err))...)
		return Resource{}, false
	}
	if discarded {
		metrics.ObserveCompensation(metrics.CompensationRemoved)
		return Resource{}, false
	}

	stored, err := s.repo.Get(cctx, pending.ID)
	if err != nil {
		// Neither pending nor ready: nothing references the object.
		metrics.ObserveCompensation(metrics.CompensationLeftPending)
		log.Error("compensation found no row", append(fields, zap.Error(err))...)
		return Resource{}, false
	}
	metrics.ObserveCompensation(metrics.CompensationPromoted)
	log.Warn("upload promoted despite error, keeping it", fields...)
	return stored, true
}

func (s *Service) removeObject(ctx context.Context, res Resource) error {
	return s.objects.Remove(ctx, res.ObjectKey)
}

func detectContentType(declared, filename string) string {
	if declared = strings.TrimSpace(declared); declared != "" {
		return declared
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}
