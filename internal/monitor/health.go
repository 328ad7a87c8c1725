package monitor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yungbote/cementplant-backend/internal/calc"
	"github.com/yungbote/cementplant-backend/internal/domain/plant"
	"github.com/yungbote/cementplant-backend/internal/kpi"
	"github.com/yungbote/cementplant-backend/internal/pkg/dbctx"
	"github.com/yungbote/cementplant-backend/internal/recommend"
)

const (
	healthWindow       = 20
	healthRulePrefix   = "equipment_health:"
	maintenancePrioLow = 6
	maintenancePrioHi  = 8
	healthCritical     = 40.0
)

type EquipmentStatus struct {
	EquipmentName        string     `json:"equipment_name"`
	HealthScore          kpi.Metric `json:"health_score"`
	PowerKW              *float64   `json:"power_kw"`
	BaselinePowerKW      *float64   `json:"baseline_power_kw"`
	DaysSinceMaintenance *int       `json:"days_since_maintenance"`
	NeedsMaintenance     bool       `json:"needs_maintenance"`
	ReadingAt            time.Time  `json:"reading_at"`
}

// EquipmentHealth scores the newest reading of each piece of equipment.
func (s *Service) EquipmentHealth(ctx context.Context) ([]EquipmentStatus, error) {
	rows, err := s.readings.RecentUtilities(dbctx.Context{Ctx: ctx}, healthWindow)
	if err != nil {
		return nil, fmt.Errorf("recent utilities: %w", err)
	}
	seen := map[string]bool{}
	out := []EquipmentStatus{}
	for _, u := range rows {
		if u == nil || u.EquipmentName == "" || seen[u.EquipmentName] {
			continue
		}
		seen[u.EquipmentName] = true
		st := EquipmentStatus{
			EquipmentName:        u.EquipmentName,
			HealthScore:          equipmentScore(u),
			PowerKW:              u.PowerKW,
			BaselinePowerKW:      u.BaselinePowerKW,
			DaysSinceMaintenance: u.DaysSinceMaintenance,
			ReadingAt:            u.CreatedAt,
		}
		if v, ok := st.HealthScore.Float(); ok && v < s.cfg.HealthThreshold {
			st.NeedsMaintenance = true
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EquipmentName < out[j].EquipmentName })
	return out, nil
}

func equipmentScore(u *plant.UtilitiesMonitoring) kpi.Metric {
	switch {
	case u.PowerKW == nil:
		return kpi.Unavailable("utilities_monitoring.power_kw missing")
	case u.BaselinePowerKW == nil:
		return kpi.Unavailable("utilities_monitoring.baseline_power_kw missing")
	case u.DaysSinceMaintenance == nil:
		return kpi.Unavailable("utilities_monitoring.days_since_maintenance missing")
	}
	v, err := calc.EquipmentHealth(*u.PowerKW, *u.BaselinePowerKW, *u.DaysSinceMaintenance)
	if err != nil {
		return kpi.Invalid(err.Error())
	}
	return kpi.Available(v)
}

// RunEquipmentHealth raises a maintenance recommendation for every piece of
// equipment scoring below the threshold, at most once per HealthCooldown.
func (s *Service) RunEquipmentHealth(ctx context.Context) error {
	statuses, err := s.EquipmentHealth(ctx)
	if err != nil {
		return err
	}
	var (
		candidates []*plant.Recommendation
		names      []string
	)
	now := s.now()
	for _, st := range statuses {
		if !st.NeedsMaintenance {
			continue
		}
		score, _ := st.HealthScore.Float()
		prio := maintenancePrioLow
		if score < healthCritical {
			prio = maintenancePrioHi
		}
		name := healthRulePrefix + st.EquipmentName
		names = append(names, name)
		candidates = append(candidates, &plant.Recommendation{
			ProcessArea:        plant.AreaUtilities,
			RecommendationType: "maintenance",
			Priority:           prio,
			Description:        fmt.Sprintf("Schedule maintenance for %s - health score %.0f", st.EquipmentName, score),
			Source:             plant.SourceRule,
			RuleName:           name,
			CreatedAt:          now,
		})
	}
	if len(candidates) == 0 {
		return nil
	}

	dbc := dbctx.Context{Ctx: ctx}
	open, err := s.recs.LatestOpenByRule(dbc, names, now.Add(-s.cfg.HealthCooldown))
	if err != nil {
		return fmt.Errorf("maintenance cooldown: %w", err)
	}
	fresh := candidates[:0]
	for _, c := range candidates {
		if _, ok := open[c.RuleName]; !ok {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		return nil
	}
	saved, err := s.recs.Create(dbc, fresh)
	if err != nil {
		return fmt.Errorf("persist maintenance recommendations: %w", err)
	}
	for _, r := range saved {
		s.metrics.RecommendationCreated(r.Source, recommend.Band(r.Priority))
	}
	s.log.Info("Maintenance recommendations raised", "count", len(saved))
	s.publishAlerts(ctx, saved)
	return nil
}
