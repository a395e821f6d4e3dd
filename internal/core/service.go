package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"agricore/internal/analysis"
	blobcore "agricore/internal/blob/core"
	"agricore/internal/infra/persistence/memory"
	"agricore/pkg/domain"

	"github.com/google/uuid"
)

// Service exposes higher-level transactional registry operations plus insight
// computation. Every mutating operation is a discrete, nameable event
// observed by the configured logger, audit recorder, metrics recorder, and
// tracer.
type Service struct {
	store   domain.PersistentStore
	blobs   blobcore.Store
	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
	nowFn   func() time.Time
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger sets the structured logger. Defaults to a noop logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAuditRecorder sets the audit trail recorder.
func WithAuditRecorder(a AuditRecorder) Option {
	return func(s *Service) { s.audit = a }
}

// WithMetricsRecorder sets the metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer sets the operation tracer.
func WithTracer(t Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithBlobStore attaches an object store for entity photos.
func WithBlobStore(b blobcore.Store) Option {
	return func(s *Service) { s.blobs = b }
}

// WithClock overrides the service clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: noopLogger{},
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the given
// rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// observe wraps one named operation: span, duration metric, audit entry, and
// a log line on failure.
func (s *Service) observe(ctx context.Context, operation string, entity domain.EntityType, entityID *string, fn func(ctx context.Context) error) error {
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	started := time.Now()
	err := fn(ctx)
	elapsed := time.Since(started)
	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, elapsed)
	}
	if s.audit != nil {
		entry := AuditEntry{
			Operation:  operation,
			Entity:     entity,
			Status:     AuditSucceeded,
			OccurredAt: s.nowFn(),
		}
		if entityID != nil {
			entry.EntityID = *entityID
		}
		if err != nil {
			entry.Status = AuditFailed
			entry.Error = err.Error()
		}
		s.audit.Record(ctx, entry)
	}
	if err != nil {
		s.logger.Warn("registry operation failed", "operation", operation, "entity", string(entity), "error", err)
	} else {
		id := ""
		if entityID != nil {
			id = *entityID
		}
		s.logger.Debug("registry operation", "operation", operation, "entity", string(entity), "id", id)
	}
	return err
}

// AddCrop validates and registers a new crop.
func (s *Service) AddCrop(ctx context.Context, crop Crop) (Crop, Result, error) {
	var created Crop
	var res Result
	err := s.observe(ctx, OpEntityAdded, EntityCrop, &created.ID, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			created, txErr = tx.CreateCrop(crop)
			return txErr
		})
		return err
	})
	return created, res, err
}

// UpdateCrop mutates a crop using the provided mutator. Invariants, including
// stage monotonicity, are re-checked; on failure nothing is applied.
func (s *Service) UpdateCrop(ctx context.Context, id string, mutator func(*Crop) error) (Crop, Result, error) {
	var updated Crop
	var res Result
	err := s.observe(ctx, OpEntityUpdated, EntityCrop, &id, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateCrop(id, mutator)
			return txErr
		})
		return err
	})
	return updated, res, err
}

// RemoveCrop deletes a crop and returns the removed record.
func (s *Service) RemoveCrop(ctx context.Context, id string) (Crop, Result, error) {
	var removed Crop
	var res Result
	err := s.observe(ctx, OpEntityRemoved, EntityCrop, &id, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			removed, txErr = tx.DeleteCrop(id)
			return txErr
		})
		return err
	})
	return removed, res, err
}

// GetCrop retrieves a crop from committed state.
func (s *Service) GetCrop(id string) (Crop, error) {
	crop, ok := s.store.GetCrop(id)
	if !ok {
		return Crop{}, domain.ErrNotFound{Entity: EntityCrop, ID: id}
	}
	return crop, nil
}

// ListCrops returns crops matching the filter. Ordering is not defined.
func (s *Service) ListCrops(filter domain.CropFilter) []Crop {
	return s.store.ListCrops(filter)
}

// AddForest validates and registers a new forest stand.
func (s *Service) AddForest(ctx context.Context, forest Forest) (Forest, Result, error) {
	var created Forest
	var res Result
	err := s.observe(ctx, OpEntityAdded, EntityForest, &created.ID, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			created, txErr = tx.CreateForest(forest)
			return txErr
		})
		return err
	})
	return created, res, err
}

// UpdateForest mutates a forest stand using the provided mutator.
func (s *Service) UpdateForest(ctx context.Context, id string, mutator func(*Forest) error) (Forest, Result, error) {
	var updated Forest
	var res Result
	err := s.observe(ctx, OpEntityUpdated, EntityForest, &id, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateForest(id, mutator)
			return txErr
		})
		return err
	})
	return updated, res, err
}

// RemoveForest deletes a forest stand and returns the removed record.
func (s *Service) RemoveForest(ctx context.Context, id string) (Forest, Result, error) {
	var removed Forest
	var res Result
	err := s.observe(ctx, OpEntityRemoved, EntityForest, &id, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			removed, txErr = tx.DeleteForest(id)
			return txErr
		})
		return err
	})
	return removed, res, err
}

// GetForest retrieves a forest stand from committed state.
func (s *Service) GetForest(id string) (Forest, error) {
	forest, ok := s.store.GetForest(id)
	if !ok {
		return Forest{}, domain.ErrNotFound{Entity: EntityForest, ID: id}
	}
	return forest, nil
}

// ListForests returns forest stands matching the filter.
func (s *Service) ListForests(filter domain.ForestFilter) []Forest {
	return s.store.ListForests(filter)
}

// ComputeInsights runs the analyzer over the full registry contents.
func (s *Service) ComputeInsights(ctx context.Context, policy analysis.Policy) (analysis.Analysis, error) {
	var report analysis.Analysis
	err := s.observe(ctx, OpInsightComputed, "", nil, func(context.Context) error {
		entities := collectEntities(s.store.ListCrops(nil), s.store.ListForests(nil))
		report = analysis.Analyze(entities, policy, s.nowFn())
		return nil
	})
	return report, err
}

// EntityInsight computes the yield estimate and recommendation for a single
// registered entity.
func (s *Service) EntityInsight(ctx context.Context, id string, policy analysis.Policy) (analysis.Insight, error) {
	var insight analysis.Insight
	err := s.observe(ctx, OpInsightComputed, "", &id, func(context.Context) error {
		entity, err := s.findEntity(id)
		if err != nil {
			return err
		}
		insight, err = analysis.InsightFor(entity, policy, s.nowFn())
		return err
	})
	return insight, err
}

func (s *Service) findEntity(id string) (domain.Entity, error) {
	if crop, ok := s.store.GetCrop(id); ok {
		return crop, nil
	}
	if forest, ok := s.store.GetForest(id); ok {
		return forest, nil
	}
	return nil, domain.ErrNotFound{Entity: EntityCrop, ID: id}
}

func collectEntities(crops []Crop, forests []Forest) []domain.Entity {
	out := make([]domain.Entity, 0, len(crops)+len(forests))
	for _, c := range crops {
		out = append(out, c)
	}
	for _, f := range forests {
		out = append(out, f)
	}
	return out
}

// AttachPhoto stores a photo for the entity in the configured blob store and
// links it via the entity's photo key.
func (s *Service) AttachPhoto(ctx context.Context, entityID string, r io.Reader, contentType string) (blobcore.Info, error) {
	if s.blobs == nil {
		return blobcore.Info{}, fmt.Errorf("no blob store configured")
	}
	key := fmt.Sprintf("photos/%s/%s", entityID, uuid.NewString())
	var info blobcore.Info
	err := s.observe(ctx, OpEntityUpdated, "", &entityID, func(ctx context.Context) error {
		if _, err := s.findEntity(entityID); err != nil {
			return err
		}
		var err error
		info, err = s.blobs.Put(ctx, key, r, blobcore.PutOptions{ContentType: contentType})
		if err != nil {
			return err
		}
		if err := s.linkPhoto(ctx, entityID, key); err != nil {
			if _, delErr := s.blobs.Delete(ctx, key); delErr != nil {
				s.logger.Warn("orphaned photo blob", "key", key, "error", delErr)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return blobcore.Info{}, err
	}
	return info, nil
}

func (s *Service) linkPhoto(ctx context.Context, entityID, key string) error {
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, ok := tx.FindCrop(entityID); ok {
			_, txErr := tx.UpdateCrop(entityID, func(c *Crop) error {
				c.PhotoKey = &key
				return nil
			})
			return txErr
		}
		if _, ok := tx.FindForest(entityID); ok {
			_, txErr := tx.UpdateForest(entityID, func(f *Forest) error {
				f.PhotoKey = &key
				return nil
			})
			return txErr
		}
		return domain.ErrNotFound{Entity: EntityCrop, ID: entityID}
	})
	return err
}

// PhotoURL returns a presigned (or local) URL for the entity's linked photo.
func (s *Service) PhotoURL(ctx context.Context, entityID string, expiry time.Duration) (string, error) {
	if s.blobs == nil {
		return "", fmt.Errorf("no blob store configured")
	}
	entity, err := s.findEntity(entityID)
	if err != nil {
		return "", err
	}
	var key *string
	switch e := entity.(type) {
	case Crop:
		key = e.PhotoKey
	case Forest:
		key = e.PhotoKey
	}
	if key == nil {
		return "", domain.ErrInsufficientData{Entity: entity.Kind(), ID: entityID, Missing: "photo"}
	}
	return s.blobs.PresignURL(ctx, *key, blobcore.SignedURLOptions{Method: "GET", Expiry: expiry})
}
