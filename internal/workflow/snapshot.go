package workflow

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/atelier-backend/internal/models"
)

// Labels used when a product's joined collection or client is absent.
const (
	PlaceholderCollection = "Sem coleção"
	PlaceholderClient     = "Sem cliente"
	PlaceholderStylist    = "Sem estilista"
)

type FileSummary struct {
	ID       uuid.UUID `json:"id"`
	FileName string    `json:"file_name"`
	FileType string    `json:"file_type"`
	Size     int64     `json:"size"`
	URL      string    `json:"url,omitempty"`
}

// ProductWithStage is the denormalized read model every dashboard surface consumes.
type ProductWithStage struct {
	ID             uuid.UUID                `json:"id"`
	Name           string                   `json:"name"`
	Code           string                   `json:"code"`
	Priority       models.Priority          `json:"priority"`
	ImageURL       string                   `json:"image_url"`
	Status         models.ProductStatus     `json:"status"`
	CollectionID   *uuid.UUID               `json:"collection_id"`
	ClientID       *uuid.UUID               `json:"client_id"`
	Tags           []string                 `json:"tags"`
	CollectionName string                   `json:"collection_name"`
	ClientName     string                   `json:"client_name"`
	StylistName    string                   `json:"stylist_name"`
	CurrentStage   *models.ProductionStage  `json:"current_stage"`
	Stages         []models.ProductionStage `json:"stages"`
	Files          []FileSummary            `json:"files"`
}

// HasStages is false for products whose pipeline was never created.
func (p ProductWithStage) HasStages() bool {
	return p.CurrentStage != nil
}

// Completed reports whether every stage of the product is concluida.
func (p ProductWithStage) Completed() bool {
	return AllCompleted(p.Stages)
}

// HasTag reports whether the product carries tag, ignoring case.
func (p ProductWithStage) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// StageByName returns the product's record for name, or nil.
func (p ProductWithStage) StageByName(name string) *models.ProductionStage {
	return findStage(p.Stages, func(st models.ProductionStage) bool {
		return st.StageName == name
	})
}

// SnapshotSource holds the raw rows a snapshot pass joins. Rows whose parent is
// missing are ignored.
type SnapshotSource struct {
	Products    []models.Product
	Stages      []models.ProductionStage
	Files       []models.ProductFile
	Collections []models.Collection
	Clients     []models.Client
	Stylists    []models.Stylist
}

// FileURLFunc resolves a download link for an attachment; it may return "".
type FileURLFunc func(models.ProductFile) string

// BuildSnapshots joins src into one ProductWithStage per product, preserving
// product order. It never fails: absent joins fall back to placeholder labels.
func BuildSnapshots(src SnapshotSource, fileURL FileURLFunc) []ProductWithStage {
	stagesByProduct := make(map[uuid.UUID][]models.ProductionStage)
	for _, st := range src.Stages {
		stagesByProduct[st.ProductID] = append(stagesByProduct[st.ProductID], st)
	}
	filesByProduct := make(map[uuid.UUID][]models.ProductFile)
	for _, f := range src.Files {
		filesByProduct[f.ProductID] = append(filesByProduct[f.ProductID], f)
	}
	collections := make(map[uuid.UUID]models.Collection, len(src.Collections))
	for _, c := range src.Collections {
		collections[c.ID] = c
	}
	clients := make(map[uuid.UUID]models.Client, len(src.Clients))
	for _, c := range src.Clients {
		clients[c.ID] = c
	}
	stylists := make(map[uuid.UUID]models.Stylist, len(src.Stylists))
	for _, s := range src.Stylists {
		stylists[s.ID] = s
	}

	out := make([]ProductWithStage, 0, len(src.Products))
	for _, p := range src.Products {
		snap := ProductWithStage{
			ID:             p.ID,
			Name:           p.Name,
			Code:           p.Code,
			Priority:       p.Priority,
			ImageURL:       p.ImageURL,
			Status:         p.Status,
			CollectionID:   p.CollectionID,
			ClientID:       p.ClientID,
			Tags:           append([]string{}, p.Tags...),
			CollectionName: PlaceholderCollection,
			ClientName:     PlaceholderClient,
			StylistName:    PlaceholderStylist,
			Stages:         SortStages(stagesByProduct[p.ID]),
			Files:          []FileSummary{},
		}
		snap.CurrentStage = CurrentStage(snap.Stages)

		clientID := p.ClientID
		if p.CollectionID != nil {
			if col, ok := collections[*p.CollectionID]; ok {
				snap.CollectionName = col.Name
				if clientID == nil {
					clientID = col.ClientID
				}
				if col.StylistID != nil {
					if st, ok := stylists[*col.StylistID]; ok {
						snap.StylistName = st.Name
					}
				}
			}
		}
		if clientID != nil {
			if cl, ok := clients[*clientID]; ok {
				snap.ClientName = cl.Name
			}
		}

		files := filesByProduct[p.ID]
		sort.SliceStable(files, func(i, j int) bool {
			return files[i].CreatedAt.Before(files[j].CreatedAt)
		})
		for _, f := range files {
			fs := FileSummary{ID: f.ID, FileName: f.FileName, FileType: f.FileType, Size: f.Size}
			if fileURL != nil {
				fs.URL = fileURL(f)
			}
			snap.Files = append(snap.Files, fs)
		}

		out = append(out, snap)
	}
	return out
}
