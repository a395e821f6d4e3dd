package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"agricore/pkg/domain"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(nil)
	s.SetClock(func() time.Time { return testNow })
	return s
}

func seedCrop() domain.Crop {
	return domain.Crop{
		Base: domain.Base{
			Name:         "North Field Wheat",
			OwnerID:      "owner-1",
			AreaHectares: 10,
			PlantedAt:    testNow.AddDate(0, -3, 0),
			Status:       domain.StatusGrowing,
		},
		Type:  domain.CropTypeGrain,
		Stage: domain.StageGrowing,
	}
}

func seedForest() domain.Forest {
	return domain.Forest{
		Base: domain.Base{
			Name:         "Ridge Pine Stand",
			OwnerID:      "owner-1",
			AreaHectares: 25,
			PlantedAt:    testNow.AddDate(-5, 0, 0),
			Status:       domain.StatusGrowing,
		},
		Species:           "pine",
		StandAgeYears:     5,
		DensityPerHectare: 400,
	}
}

func mustCreateCrop(t *testing.T, s *Store, c domain.Crop) domain.Crop {
	t.Helper()
	var created domain.Crop
	if _, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateCrop(c)
		return err
	}); err != nil {
		t.Fatalf("create crop: %v", err)
	}
	return created
}

func mustCreateForest(t *testing.T, s *Store, f domain.Forest) domain.Forest {
	t.Helper()
	var created domain.Forest
	if _, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateForest(f)
		return err
	}); err != nil {
		t.Fatalf("create forest: %v", err)
	}
	return created
}

func TestCreateAndGetCrop(t *testing.T) {
	s := newTestStore(t)
	created := mustCreateCrop(t, s, seedCrop())

	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if !created.CreatedAt.Equal(testNow) || !created.UpdatedAt.Equal(testNow) {
		t.Fatalf("timestamps not stamped: %v %v", created.CreatedAt, created.UpdatedAt)
	}

	fetched, ok := s.GetCrop(created.ID)
	if !ok {
		t.Fatal("created crop not found")
	}
	if fetched.Name != created.Name || fetched.Type != created.Type || fetched.Stage != created.Stage {
		t.Fatalf("fetched crop differs: %+v vs %+v", fetched, created)
	}
}

func TestCreateCropDuplicateID(t *testing.T) {
	s := newTestStore(t)
	crop := seedCrop()
	crop.ID = "crop-1"
	mustCreateCrop(t, s, crop)

	_, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateCrop(crop)
		return err
	})
	var dup domain.ErrDuplicateID
	if !errors.As(err, &dup) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	// Original record untouched.
	if got, _ := s.GetCrop("crop-1"); got.Name != crop.Name {
		t.Fatalf("existing record modified: %+v", got)
	}
	if n := len(s.ListCrops(nil)); n != 1 {
		t.Fatalf("expected 1 crop, got %d", n)
	}
}

func TestCreateCropValidationRollsBack(t *testing.T) {
	s := newTestStore(t)
	bad := seedCrop()
	bad.AreaHectares = -1

	_, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateCrop(bad)
		return err
	})
	var invalid domain.ErrInvalidState
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if n := len(s.ListCrops(nil)); n != 0 {
		t.Fatalf("failed transaction leaked state: %d crops", n)
	}
}

func TestUpdateCropNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.UpdateCrop("missing", func(c *domain.Crop) error { return nil })
		return err
	})
	var nf domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateCropStageRegressionRejected(t *testing.T) {
	s := newTestStore(t)
	crop := seedCrop()
	crop.Stage = domain.StageMature
	created := mustCreateCrop(t, s, crop)

	_, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.UpdateCrop(created.ID, func(c *domain.Crop) error {
			c.Stage = domain.StageSeedling
			return nil
		})
		return err
	})
	var invalid domain.ErrInvalidState
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	current, _ := s.GetCrop(created.ID)
	if current.Stage != domain.StageMature {
		t.Fatalf("failed update applied: stage %s", current.Stage)
	}
}

func TestUpdateCropCannotChangeID(t *testing.T) {
	s := newTestStore(t)
	created := mustCreateCrop(t, s, seedCrop())

	var updated domain.Crop
	if _, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateCrop(created.ID, func(c *domain.Crop) error {
			c.ID = "hijacked"
			c.Name = "Renamed Field"
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("identifier changed to %s", updated.ID)
	}
	if updated.Name != "Renamed Field" {
		t.Fatalf("mutation not applied: %s", updated.Name)
	}
	if _, ok := s.GetCrop("hijacked"); ok {
		t.Fatal("hijacked id present in store")
	}
}

func TestDeleteCropThenGetFails(t *testing.T) {
	s := newTestStore(t)
	created := mustCreateCrop(t, s, seedCrop())

	var removed domain.Crop
	if _, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		removed, err = tx.DeleteCrop(created.ID)
		return err
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed.ID != created.ID {
		t.Fatalf("removed wrong record %s", removed.ID)
	}
	if _, ok := s.GetCrop(created.ID); ok {
		t.Fatal("deleted crop still present")
	}

	_, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.DeleteCrop(created.ID)
		return err
	})
	var nf domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestForestLifecycle(t *testing.T) {
	s := newTestStore(t)
	created := mustCreateForest(t, s, seedForest())

	inventory := testNow.AddDate(0, -1, 0)
	var updated domain.Forest
	if _, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateForest(created.ID, func(f *domain.Forest) error {
			f.LastInventoryAt = &inventory
			f.StandAgeYears = 6
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("update forest: %v", err)
	}
	if updated.StandAgeYears != 6 || updated.LastInventoryAt == nil {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.DeleteForest(created.ID)
		return err
	}); err != nil {
		t.Fatalf("delete forest: %v", err)
	}
	if _, ok := s.GetForest(created.ID); ok {
		t.Fatal("deleted forest still present")
	}
}

func TestListCropsFilter(t *testing.T) {
	s := newTestStore(t)
	grain := seedCrop()
	mustCreateCrop(t, s, grain)

	veg := seedCrop()
	veg.Name = "South Field Carrots"
	veg.Type = domain.CropTypeVegetable
	mustCreateCrop(t, s, veg)

	all := s.ListCrops(nil)
	if len(all) != 2 {
		t.Fatalf("expected 2 crops, got %d", len(all))
	}
	grains := s.ListCrops(func(c domain.Crop) bool { return c.Type == domain.CropTypeGrain })
	if len(grains) != 1 || grains[0].Name != grain.Name {
		t.Fatalf("filter returned %+v", grains)
	}
}

func TestClonedReadsDoNotAliasState(t *testing.T) {
	s := newTestStore(t)
	crop := seedCrop()
	yield := 4.2
	crop.Stage = domain.StageHarvested
	crop.Status = domain.StatusHarvested
	crop.LastYieldTonnes = &yield
	created := mustCreateCrop(t, s, crop)

	fetched, _ := s.GetCrop(created.ID)
	*fetched.LastYieldTonnes = 99

	again, _ := s.GetCrop(created.ID)
	if *again.LastYieldTonnes != 4.2 {
		t.Fatalf("store state mutated through returned pointer: %v", *again.LastYieldTonnes)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	mustCreateCrop(t, s, seedCrop())
	mustCreateForest(t, s, seedForest())

	snap := s.ExportState()
	if len(snap.Crops) != 1 || len(snap.Forests) != 1 {
		t.Fatalf("unexpected snapshot sizes: %d crops %d forests", len(snap.Crops), len(snap.Forests))
	}

	restored := newTestStore(t)
	restored.ImportState(snap)
	if len(restored.ListCrops(nil)) != 1 || len(restored.ListForests(nil)) != 1 {
		t.Fatal("import did not restore state")
	}
}

type blockAllRule struct{}

func (blockAllRule) Name() string { return "block-all" }

func (blockAllRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	var res domain.Result
	for range changes {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "block-all",
			Severity: domain.SeverityBlock,
			Message:  "nothing may change",
		})
	}
	return res, nil
}

func TestBlockingRuleAbortsCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockAllRule{})
	s := NewStore(engine)
	s.SetClock(func() time.Time { return testNow })

	_, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateCrop(seedCrop())
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if n := len(s.ListCrops(nil)); n != 0 {
		t.Fatalf("blocked transaction committed: %d crops", n)
	}
}

func TestViewSeesCommittedState(t *testing.T) {
	s := newTestStore(t)
	created := mustCreateCrop(t, s, seedCrop())

	err := s.View(context.Background(), func(v domain.TransactionView) error {
		if _, ok := v.FindCrop(created.ID); !ok {
			t.Fatal("view missing committed crop")
		}
		if len(v.ListCrops()) != 1 {
			t.Fatal("view listing incomplete")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}
