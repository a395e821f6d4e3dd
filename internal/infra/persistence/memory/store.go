// Package memory implements the authoritative in-memory registry store.
// Transactions operate on a cloned copy of the state; registered rules are
// evaluated against the snapshot before commit so no partial mutation is
// ever visible.
package memory

import (
	"context"
	"sync"
	"time"

	"agricore/pkg/domain"

	"github.com/google/uuid"
)

type state struct {
	crops   map[string]domain.Crop
	forests map[string]domain.Forest
}

func newState() state {
	return state{
		crops:   make(map[string]domain.Crop),
		forests: make(map[string]domain.Forest),
	}
}

func (s state) clone() state {
	cloned := newState()
	for k, v := range s.crops {
		cloned.crops[k] = cloneCrop(v)
	}
	for k, v := range s.forests {
		cloned.forests[k] = cloneForest(v)
	}
	return cloned
}

func cloneCrop(c domain.Crop) domain.Crop {
	cp := c
	cp.ExpectedHarvestAt = cloneTimePtr(c.ExpectedHarvestAt)
	cp.LastYieldTonnes = cloneFloatPtr(c.LastYieldTonnes)
	cp.PhotoKey = cloneStringPtr(c.PhotoKey)
	return cp
}

func cloneForest(f domain.Forest) domain.Forest {
	cp := f
	cp.LastInventoryAt = cloneTimePtr(f.LastInventoryAt)
	cp.PhotoKey = cloneStringPtr(f.PhotoKey)
	return cp
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func cloneFloatPtr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	cp := *f
	return &cp
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// Store provides an in-memory transactional registry for crops and forests.
type Store struct {
	mu     sync.RWMutex
	state  state
	engine *domain.RulesEngine
	nowFn  func() time.Time
}

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// NewStore constructs an in-memory registry backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the store clock. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = now
}

func newID() string { return uuid.NewString() }

// transaction is a mutation set applied to a cloned copy of the store state.
type transaction struct {
	state   state
	changes []domain.Change
	now     time.Time
}

var _ domain.Transaction = (*transaction)(nil)

// view exposes a read-only snapshot of transactional state to rules.
type view struct {
	state *state
}

var _ domain.TransactionView = view{}

// ListCrops returns all crops within the snapshot.
func (v view) ListCrops() []domain.Crop {
	out := make([]domain.Crop, 0, len(v.state.crops))
	for _, c := range v.state.crops {
		out = append(out, cloneCrop(c))
	}
	return out
}

// ListForests returns all forests within the snapshot.
func (v view) ListForests() []domain.Forest {
	out := make([]domain.Forest, 0, len(v.state.forests))
	for _, f := range v.state.forests {
		out = append(out, cloneForest(f))
	}
	return out
}

// FindCrop retrieves a crop by ID from the snapshot.
func (v view) FindCrop(id string) (domain.Crop, bool) {
	c, ok := v.state.crops[id]
	if !ok {
		return domain.Crop{}, false
	}
	return cloneCrop(c), true
}

// FindForest retrieves a forest by ID from the snapshot.
func (v view) FindForest(id string) (domain.Forest, bool) {
	f, ok := v.state.forests[id]
	if !ok {
		return domain.Forest{}, false
	}
	return cloneForest(f), true
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Rules are evaluated over the resulting snapshot; blocking violations abort
// the commit with a RuleViolationError.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, view{state: &tx.state}, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(view{state: &snapshot})
}

// Snapshot returns a read-only view of the transactional state.
func (tx *transaction) Snapshot() domain.TransactionView {
	return view{state: &tx.state}
}

func (tx *transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// CreateCrop validates and stores a new crop within the transaction.
func (tx *transaction) CreateCrop(c domain.Crop) (domain.Crop, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	if _, exists := tx.state.crops[c.ID]; exists {
		return domain.Crop{}, domain.ErrDuplicateID{Entity: domain.EntityCrop, ID: c.ID}
	}
	if err := c.Validate(tx.now); err != nil {
		return domain.Crop{}, err
	}
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.crops[c.ID] = cloneCrop(c)
	tx.recordChange(domain.Change{Entity: domain.EntityCrop, Action: domain.ActionCreate, After: cloneCrop(c)})
	return cloneCrop(c), nil
}

// UpdateCrop mutates a crop using the provided mutator function. The change
// set is re-validated in full; identifier and growth-stage monotonicity are
// enforced regardless of what the mutator wrote.
func (tx *transaction) UpdateCrop(id string, mutator func(*domain.Crop) error) (domain.Crop, error) {
	current, ok := tx.state.crops[id]
	if !ok {
		return domain.Crop{}, domain.ErrNotFound{Entity: domain.EntityCrop, ID: id}
	}
	before := cloneCrop(current)
	if err := mutator(&current); err != nil {
		return domain.Crop{}, err
	}
	current.ID = id
	if !domain.StageTransitionAllowed(before.Stage, current.Stage) {
		return domain.Crop{}, domain.ErrInvalidState{
			Entity: domain.EntityCrop,
			ID:     id,
			Reason: "stage cannot regress from " + string(before.Stage) + " to " + string(current.Stage),
		}
	}
	if err := current.Validate(tx.now); err != nil {
		return domain.Crop{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.crops[id] = cloneCrop(current)
	tx.recordChange(domain.Change{Entity: domain.EntityCrop, Action: domain.ActionUpdate, Before: before, After: cloneCrop(current)})
	return cloneCrop(current), nil
}

// DeleteCrop removes a crop from the transaction state and returns it.
func (tx *transaction) DeleteCrop(id string) (domain.Crop, error) {
	current, ok := tx.state.crops[id]
	if !ok {
		return domain.Crop{}, domain.ErrNotFound{Entity: domain.EntityCrop, ID: id}
	}
	delete(tx.state.crops, id)
	removed := cloneCrop(current)
	tx.recordChange(domain.Change{Entity: domain.EntityCrop, Action: domain.ActionDelete, Before: removed})
	return removed, nil
}

// CreateForest validates and stores a new forest stand.
func (tx *transaction) CreateForest(f domain.Forest) (domain.Forest, error) {
	if f.ID == "" {
		f.ID = newID()
	}
	if _, exists := tx.state.forests[f.ID]; exists {
		return domain.Forest{}, domain.ErrDuplicateID{Entity: domain.EntityForest, ID: f.ID}
	}
	if err := f.Validate(tx.now); err != nil {
		return domain.Forest{}, err
	}
	f.CreatedAt = tx.now
	f.UpdatedAt = tx.now
	tx.state.forests[f.ID] = cloneForest(f)
	tx.recordChange(domain.Change{Entity: domain.EntityForest, Action: domain.ActionCreate, After: cloneForest(f)})
	return cloneForest(f), nil
}

// UpdateForest mutates a forest stand using the provided mutator function.
func (tx *transaction) UpdateForest(id string, mutator func(*domain.Forest) error) (domain.Forest, error) {
	current, ok := tx.state.forests[id]
	if !ok {
		return domain.Forest{}, domain.ErrNotFound{Entity: domain.EntityForest, ID: id}
	}
	before := cloneForest(current)
	if err := mutator(&current); err != nil {
		return domain.Forest{}, err
	}
	current.ID = id
	if err := current.Validate(tx.now); err != nil {
		return domain.Forest{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.forests[id] = cloneForest(current)
	tx.recordChange(domain.Change{Entity: domain.EntityForest, Action: domain.ActionUpdate, Before: before, After: cloneForest(current)})
	return cloneForest(current), nil
}

// DeleteForest removes a forest stand from the transaction state and returns it.
func (tx *transaction) DeleteForest(id string) (domain.Forest, error) {
	current, ok := tx.state.forests[id]
	if !ok {
		return domain.Forest{}, domain.ErrNotFound{Entity: domain.EntityForest, ID: id}
	}
	delete(tx.state.forests, id)
	removed := cloneForest(current)
	tx.recordChange(domain.Change{Entity: domain.EntityForest, Action: domain.ActionDelete, Before: removed})
	return removed, nil
}

// FindCrop retrieves a crop by ID from the transactional state.
func (tx *transaction) FindCrop(id string) (domain.Crop, bool) {
	c, ok := tx.state.crops[id]
	if !ok {
		return domain.Crop{}, false
	}
	return cloneCrop(c), true
}

// FindForest retrieves a forest by ID from the transactional state.
func (tx *transaction) FindForest(id string) (domain.Forest, bool) {
	f, ok := tx.state.forests[id]
	if !ok {
		return domain.Forest{}, false
	}
	return cloneForest(f), true
}

// Read helpers ---------------------------------------------------------------

// GetCrop retrieves a crop by ID from committed state.
func (s *Store) GetCrop(id string) (domain.Crop, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.crops[id]
	if !ok {
		return domain.Crop{}, false
	}
	return cloneCrop(c), true
}

// ListCrops returns all crops matching the filter from committed state.
// Ordering is not defined; callers sort when they need stable output.
func (s *Store) ListCrops(filter domain.CropFilter) []domain.Crop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Crop, 0, len(s.state.crops))
	for _, c := range s.state.crops {
		if filter != nil && !filter(c) {
			continue
		}
		out = append(out, cloneCrop(c))
	}
	return out
}

// GetForest retrieves a forest by ID from committed state.
func (s *Store) GetForest(id string) (domain.Forest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.state.forests[id]
	if !ok {
		return domain.Forest{}, false
	}
	return cloneForest(f), true
}

// ListForests returns all forests matching the filter from committed state.
func (s *Store) ListForests(filter domain.ForestFilter) []domain.Forest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Forest, 0, len(s.state.forests))
	for _, f := range s.state.forests {
		if filter != nil && !filter(f) {
			continue
		}
		out = append(out, cloneForest(f))
	}
	return out
}

// Snapshot is a serializable copy of the full registry state used by the
// durable backends.
type Snapshot struct {
	Crops   []domain.Crop   `json:"crops"`
	Forests []domain.Forest `json:"forests"`
}

// ExportState copies the committed state into a Snapshot.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Crops:   make([]domain.Crop, 0, len(s.state.crops)),
		Forests: make([]domain.Forest, 0, len(s.state.forests)),
	}
	for _, c := range s.state.crops {
		snap.Crops = append(snap.Crops, cloneCrop(c))
	}
	for _, f := range s.state.forests {
		snap.Forests = append(snap.Forests, cloneForest(f))
	}
	return snap
}

// ImportState replaces the committed state with the snapshot contents.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := newState()
	for _, c := range snap.Crops {
		next.crops[c.ID] = cloneCrop(c)
	}
	for _, f := range snap.Forests {
		next.forests[f.ID] = cloneForest(f)
	}
	s.state = next
}
