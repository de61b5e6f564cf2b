package activity

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/pagination"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

// Action labels shared by every service that writes to the journal.
const (
	ActionLogin          = "Connexion"
	ActionLogout         = "Déconnexion"
	ActionNavigation     = "Navigation"
	ActionModeChange     = "Changement de mode"
	ActionArticleAdd     = "Ajout d'article"
	ActionArticleUpdate  = "Modification d'article"
	ActionArticleDelete  = "Suppression d'article"
	ActionOrderAdd       = "Ajout de commande"
	ActionOrderCancel    = "Annulation de commande"
	ActionPayment        = "Paiement enregistré"
	ActionTableCreate    = "Création de table"
	ActionTableDelete    = "Suppression de table"
	ActionEmployeeAdd    = "Ajout d'employé"
	ActionEmployeeDelete = "Suppression d'employé"
	ActionAccessCode     = "Modification de code"
)

// Recorder is the write side handed to other services.
type Recorder interface {
	Record(ctx context.Context, role, action, details string) error
}

// Service defines the activity journal operations.
type Service interface {
	Recorder
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// ListParams filters and pages the journal.
type ListParams struct {
	Role   string
	Limit  int
	Cursor string
}

// ListResult wraps returned entries and the cursor for the next page.
type ListResult struct {
	Items  []models.ActivityLog `json:"items"`
	Cursor string               `json:"cursor"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the activity journal.
func NewService(repo Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) Record(ctx context.Context, role, action, details string) error {
	role = strings.TrimSpace(role)
	if role == "" {
		role = models.UnknownRecorder
	}
	entry := &models.ActivityLog{
		Role:      role,
		Timestamp: s.now().UTC(),
		Action:    action,
		Details:   details,
	}
	return store.Classify(s.repo.Append(ctx, entry), "record activity")
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, store.Classify(err, "list activity")
	}

	role := strings.TrimSpace(params.Role)
	filtered := entries[:0]
	for _, entry := range entries {
		if role == "" || entry.Role == role {
			filtered = append(filtered, entry)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.Timestamp.Equal(b.Timestamp) {
			return a.ID > b.ID
		}
		return a.Timestamp.After(b.Timestamp)
	})

	page, cursor, err := pagination.Page(filtered, pagination.Params{Limit: params.Limit, Cursor: params.Cursor}, entryCursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return &ListResult{Items: page, Cursor: cursor}, nil
}

func entryCursor(entry models.ActivityLog) pagination.Cursor {
	return pagination.Cursor{At: entry.Timestamp, ID: entry.ID}
}
