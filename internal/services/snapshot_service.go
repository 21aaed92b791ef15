// internal/services/snapshot_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/atelier-backend/internal/models"
	"github.com/javajoker/atelier-backend/internal/workflow"
)

// SnapshotService builds the per-request read model every dashboard surface
// consumes. Nothing is cached between requests.
type SnapshotService struct {
	db      *gorm.DB
	storage *StorageService
	clock   Clock
}

type SnapshotFilter struct {
	CollectionID *uuid.UUID
	ClientID     *uuid.UUID
	Stage        string
	Priority     models.Priority
	Tag          string
	Overdue      *bool
}

// ReadModel is one consistent snapshot pass plus the reference rows the
// aggregations need.
type ReadModel struct {
	Today       time.Time
	Snapshots   []workflow.ProductWithStage
	Clients     []models.Client
	Collections []models.Collection
	Stylists    []models.Stylist
}

func NewSnapshotService(db *gorm.DB, storage *StorageService, clock Clock) *SnapshotService {
	return &SnapshotService{
		db:      db,
		storage: storage,
		clock:   clock,
	}
}

// Load reads every product with its stages, files and joins.
func (s *SnapshotService) Load(ctx context.Context) (*ReadModel, error) {
	return s.load(ctx, nil)
}

// List returns snapshots matching filter, ordered by product code.
func (s *SnapshotService) List(ctx context.Context, filter SnapshotFilter) ([]workflow.ProductWithStage, error) {
	rm, err := s.load(ctx, filter.CollectionID)
	if err != nil {
		return nil, err
	}
	return filter.apply(rm), nil
}

func (s *SnapshotService) load(ctx context.Context, collectionID *uuid.UUID) (*ReadModel, error) {
	db := s.db.WithContext(ctx)

	var src workflow.SnapshotSource
	products := db.Order("code ASC")
	if collectionID != nil {
		products = products.Where("collection_id = ?", *collectionID)
	}
	if err := products.Find(&src.Products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	if len(src.Products) > 0 {
		ids := make([]uuid.UUID, len(src.Products))
		for i, p := range src.Products {
			ids[i] = p.ID
		}
		if err := db.Where("product_id IN ?", ids).Find(&src.Stages).Error; err != nil {
			return nil, fmt.Errorf("failed to load stages: %w", err)
		}
		if err := db.Where("product_id IN ?", ids).Find(&src.Files).Error; err != nil {
			return nil, fmt.Errorf("failed to load product files: %w", err)
		}
	}

	if err := db.Find(&src.Collections).Error; err != nil {
		return nil, fmt.Errorf("failed to load collections: %w", err)
	}
	if err := db.Order("name ASC").Find(&src.Clients).Error; err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	if err := db.Order("name ASC").Find(&src.Stylists).Error; err != nil {
		return nil, fmt.Errorf("failed to load stylists: %w", err)
	}

	var fileURL workflow.FileURLFunc
	if s.storage.Enabled() {
		fileURL = s.storage.FileURL
	}

	return &ReadModel{
		Today:       s.clock.Today(),
		Snapshots:   workflow.BuildSnapshots(src, fileURL),
		Clients:     src.Clients,
		Collections: src.Collections,
		Stylists:    src.Stylists,
	}, nil
}

func (f SnapshotFilter) apply(rm *ReadModel) []workflow.ProductWithStage {
	collectionClient := make(map[uuid.UUID]*uuid.UUID, len(rm.Collections))
	for _, c := range rm.Collections {
		collectionClient[c.ID] = c.ClientID
	}

	out := make([]workflow.ProductWithStage, 0, len(rm.Snapshots))
	for _, p := range rm.Snapshots {
		if f.ClientID != nil && !belongsToClient(p, *f.ClientID, collectionClient) {
			continue
		}
		if f.Priority != "" && p.Priority != f.Priority {
			continue
		}
		if f.Tag != "" && !p.HasTag(f.Tag) {
			continue
		}
		if f.Stage != "" && (p.CurrentStage == nil || p.CurrentStage.StageName != f.Stage) {
			continue
		}
		if f.Overdue != nil && workflow.IsOverdue(p, rm.Today) != *f.Overdue {
			continue
		}
		out = append(out, p)
	}
	return out
}

func belongsToClient(p workflow.ProductWithStage, clientID uuid.UUID, collectionClient map[uuid.UUID]*uuid.UUID) bool {
	if p.ClientID != nil {
		return *p.ClientID == clientID
	}
	if p.CollectionID != nil {
		if id := collectionClient[*p.CollectionID]; id != nil {
			return *id == clientID
		}
	}
	return false
}
