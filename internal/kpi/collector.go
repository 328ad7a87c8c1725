package kpi

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/cementplant-backend/internal/data/repos"
	"github.com/yungbote/cementplant-backend/internal/pkg/dbctx"
)

// Collector loads Sources from the store. All tables are read concurrently; any
// read error fails the whole collection so a tick never runs on partial data
// it mistook for absence.
type Collector struct {
	readings       repos.ReadingRepo
	utilitiesLimit int
}

func NewCollector(readings repos.ReadingRepo, utilitiesLimit int) *Collector {
	if utilitiesLimit < 1 {
		utilitiesLimit = 10
	}
	return &Collector{readings: readings, utilitiesLimit: utilitiesLimit}
}

func (c *Collector) Collect(ctx context.Context) (Sources, error) {
	var src Sources
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}

	g.Go(func() error {
		rows, err := c.readings.RecentRawMaterial(dbc, 1)
		if err != nil {
			return fmt.Errorf("raw_material_feed: %w", err)
		}
		src.RawMaterial = first(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := c.readings.RecentGrinding(dbc, 1)
		if err != nil {
			return fmt.Errorf("grinding_operations: %w", err)
		}
		src.Grinding = first(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := c.readings.RecentKiln(dbc, 1)
		if err != nil {
			return fmt.Errorf("kiln_operations: %w", err)
		}
		src.Kiln = first(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := c.readings.RecentQuality(dbc, 1)
		if err != nil {
			return fmt.Errorf("quality_control: %w", err)
		}
		src.Quality = first(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := c.readings.RecentAlternativeFuels(dbc, 1)
		if err != nil {
			return fmt.Errorf("alternative_fuels: %w", err)
		}
		src.AlternativeFuel = first(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := c.readings.RecentUtilities(dbc, c.utilitiesLimit)
		if err != nil {
			return fmt.Errorf("utilities_monitoring: %w", err)
		}
		src.Utilities = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return Sources{}, err
	}
	return src, nil
}

func first[T any](rows []*T) *T {
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}
