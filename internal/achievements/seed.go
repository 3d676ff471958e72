package achievements

import (
	"context"
	"fmt"

	"studytrack-backend/internal/models"
)

type DefinitionStore interface {
	UpsertDefinition(ctx context.Context, rec *models.AchievementRecord) error
}

// Record converts a definition to its stored form.
func Record(def Definition) (*models.AchievementRecord, error) {
	cond, err := MarshalCondition(def.Condition)
	if err != nil {
		return nil, fmt.Errorf("encode condition for %s: %w", def.ID, err)
	}
	return &models.AchievementRecord{
		ID:            def.ID,
		Name:          def.Name,
		Description:   def.Description,
		Category:      string(def.Category),
		Rarity:        string(def.Rarity),
		Icon:          def.Icon,
		ConditionJSON: cond,
	}, nil
}

// Seed upserts every catalog entry so award rows can reference them.
func Seed(ctx context.Context, store DefinitionStore, catalog *Catalog) (int, error) {
	n := 0
	for _, def := range catalog.defs {
		rec, err := Record(def)
		if err != nil {
			return n, err
		}
		if err := store.UpsertDefinition(ctx, rec); err != nil {
			return n, fmt.Errorf("upsert %s: %w", def.ID, err)
		}
		n++
	}
	return n, nil
}

type DefinitionLister interface {
	ListDefinitions(ctx context.Context) ([]*models.AchievementRecord, error)
}

// Orphaned lists stored definitions the catalog no longer ships. Their award
// rows stay valid but the badges can no longer be earned.
func Orphaned(ctx context.Context, store DefinitionLister, catalog *Catalog) ([]string, error) {
	recs, err := store.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	var out []string
	for _, rec := range recs {
		if _, ok := catalog.Lookup(rec.ID); !ok {
			out = append(out, rec.ID)
		}
	}
	return out, nil
}
