package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"blocapp/internal/core"
	"blocapp/internal/storage"
)

// StructureService manages the association hierarchy: associations own
// blocks, blocks own stairs, stairs own apartments.
type StructureService struct {
	storage *storage.SQLiteRepository
}

func NewStructureService(storage *storage.SQLiteRepository) *StructureService {
	return &StructureService{storage: storage}
}

func (s *StructureService) CreateAssociation(ctx context.Context, name string) (core.Association, error) {
	a := core.Association{ID: uuid.NewString(), Name: name}
	if err := a.Validate(); err != nil {
		return core.Association{}, err
	}
	if err := s.storage.CreateAssociation(ctx, a); err != nil {
		return core.Association{}, fmt.Errorf("create association: %w", err)
	}
	return a, nil
}

func (s *StructureService) GetAssociation(ctx context.Context, id string) (core.Association, error) {
	return s.storage.GetAssociation(ctx, id)
}

func (s *StructureService) ListAssociations(ctx context.Context) ([]core.Association, error) {
	return s.storage.ListAssociations(ctx)
}

func (s *StructureService) RenameAssociation(ctx context.Context, id, name string) (core.Association, error) {
	a := core.Association{ID: id, Name: name}
	if err := a.Validate(); err != nil {
		return core.Association{}, err
	}
	if err := s.storage.UpdateAssociation(ctx, a); err != nil {
		return core.Association{}, fmt.Errorf("rename association: %w", err)
	}
	return a, nil
}

func (s *StructureService) DeleteAssociation(ctx context.Context, id string) error {
	return s.storage.DeleteAssociation(ctx, id)
}

func (s *StructureService) CreateBlock(ctx context.Context, associationID, name string) (core.Block, error) {
	b := core.Block{ID: uuid.NewString(), AssociationID: associationID, Name: name}
	if err := b.Validate(); err != nil {
		return core.Block{}, err
	}
	if err := s.storage.CreateBlock(ctx, b); err != nil {
		return core.Block{}, fmt.Errorf("create block: %w", err)
	}
	return b, nil
}

func (s *StructureService) ListBlocks(ctx context.Context, associationID string) ([]core.Block, error) {
	return s.storage.ListBlocks(ctx, associationID)
}

func (s *StructureService) DeleteBlock(ctx context.Context, id string) error {
	return s.storage.DeleteBlock(ctx, id)
}

func (s *StructureService) CreateStair(ctx context.Context, blockID, name string) (core.Stair, error) {
	st := core.Stair{ID: uuid.NewString(), BlockID: blockID, Name: name}
	if err := st.Validate(); err != nil {
		return core.Stair{}, err
	}
	if err := s.storage.CreateStair(ctx, st); err != nil {
		return core.Stair{}, fmt.Errorf("create stair: %w", err)
	}
	return st, nil
}

func (s *StructureService) ListStairs(ctx context.Context, associationID string) ([]core.Stair, error) {
	return s.storage.ListStairs(ctx, associationID)
}

func (s *StructureService) DeleteStair(ctx context.Context, id string) error {
	return s.storage.DeleteStair(ctx, id)
}

func (s *StructureService) CreateApartment(ctx context.Context, a core.Apartment) (core.Apartment, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := a.Validate(); err != nil {
		return core.Apartment{}, err
	}
	if err := s.storage.CreateApartment(ctx, a); err != nil {
		return core.Apartment{}, fmt.Errorf("create apartment: %w", err)
	}
	return a, nil
}

// ImportApartments validates and bulk-inserts apartments parsed from an
// uploaded workbook. All rows go in one transaction so a mid-file failure
// leaves nothing behind.
func (s *StructureService) ImportApartments(ctx context.Context, stairID string, apartments []core.Apartment) ([]core.Apartment, error) {
	for i := range apartments {
		apartments[i].ID = uuid.NewString()
		apartments[i].StairID = stairID
		if err := apartments[i].Validate(); err != nil {
			return nil, fmt.Errorf("apartment %d: %w", apartments[i].Number, err)
		}
	}
	if err := s.storage.CreateApartments(ctx, apartments); err != nil {
		return nil, fmt.Errorf("import apartments: %w", err)
	}
	return apartments, nil
}

func (s *StructureService) GetApartment(ctx context.Context, id string) (core.Apartment, error) {
	return s.storage.GetApartment(ctx, id)
}

func (s *StructureService) ListApartments(ctx context.Context, associationID string) ([]core.Apartment, error) {
	return s.storage.ListApartments(ctx, associationID)
}

func (s *StructureService) UpdateApartment(ctx context.Context, a core.Apartment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return s.storage.UpdateApartment(ctx, a)
}

func (s *StructureService) DeleteApartment(ctx context.Context, id string) error {
	return s.storage.DeleteApartment(ctx, id)
}

// DeleteImpact reports the children a delete would remove, for
// confirmation prompts in the client.
func (s *StructureService) AssociationDeleteImpact(ctx context.Context, id string) (storage.DeleteCounts, error) {
	return s.storage.AssociationDeleteCounts(ctx, id)
}

func (s *StructureService) BlockDeleteImpact(ctx context.Context, id string) (storage.DeleteCounts, error) {
	return s.storage.BlockDeleteCounts(ctx, id)
}

func (s *StructureService) StairDeleteImpact(ctx context.Context, id string) (storage.DeleteCounts, error) {
	return s.storage.StairDeleteCounts(ctx, id)
}
