package domain

import "context"

// CropFilter selects crops from a listing. A nil filter matches everything.
type CropFilter func(Crop) bool

// ForestFilter selects forests from a listing. A nil filter matches everything.
type ForestFilter func(Forest) bool

// Transaction exposes the registry operations that a persistence
// implementation must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateCrop(Crop) (Crop, error)
	UpdateCrop(id string, mutator func(*Crop) error) (Crop, error)
	DeleteCrop(id string) (Crop, error)
	CreateForest(Forest) (Forest, error)
	UpdateForest(id string, mutator func(*Forest) error) (Forest, error)
	DeleteForest(id string) (Forest, error)
	FindCrop(id string) (Crop, bool)
	FindForest(id string) (Forest, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	RuleView
}

// PersistentStore is a minimal abstraction over registry backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetCrop(id string) (Crop, bool)
	ListCrops(filter CropFilter) []Crop
	GetForest(id string) (Forest, bool)
	ListForests(filter ForestFilter) []Forest
}
