package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yungbote/cementplant-backend/internal/domain/plant"
	"github.com/yungbote/cementplant-backend/internal/kpi"
)

// TextGenerator is a hosted language model reduced to prompt in, text out.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ErrShapeMismatch is returned when generated text has no usable recommendation.
var ErrShapeMismatch = errors.New("recommend: generated text has no recommendation")

const maxAIDescription = 1000

// AIText is the structured form of a generated recommendation.
type AIText struct {
	Description string
	SavingsKWh  *float64
	Priority    int
	ProcessArea string
}

// ParseAIText accepts either labelled lines
//
//	RECOMMENDATION: ...
//	ESTIMATED_SAVINGS_KWH: 120
//	PRIORITY: 6
//	PROCESS_AREA: grinding
//
// or plain prose, which becomes the description as-is.
func ParseAIText(text string) (AIText, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return AIText{}, ErrShapeMismatch
	}
	var (
		out      AIText
		labelled bool
	)
	for _, line := range strings.Split(text, "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		key = strings.ToUpper(strings.Trim(strings.TrimSpace(key), "*# "))
		val = strings.TrimSpace(val)
		switch key {
		case "RECOMMENDATION":
			labelled = true
			out.Description = val
		case "ESTIMATED_SAVINGS_KWH":
			labelled = true
			if fields := strings.Fields(strings.ReplaceAll(val, ",", "")); len(fields) > 0 {
				if f, err := strconv.ParseFloat(fields[0], 64); err == nil && f >= 0 {
					out.SavingsKWh = &f
				}
			}
		case "PRIORITY":
			labelled = true
			if p, err := strconv.Atoi(val); err == nil && p >= 1 && p <= 10 {
				out.Priority = p
			}
		case "PROCESS_AREA":
			labelled = true
			out.ProcessArea = strings.ToLower(val)
		}
	}
	if !labelled {
		out.Description = text
	}
	if out.Description == "" {
		return AIText{}, ErrShapeMismatch
	}
	out.Description = truncateUTF8(out.Description, maxAIDescription)
	return out, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// BuildPrompt renders the KPI snapshot and the rules that already fired.
func BuildPrompt(k kpi.KPIs, fired []*plant.Recommendation, area string) string {
	var b strings.Builder
	b.WriteString("You are a cement plant process engineer. Current plant KPIs:\n")
	for _, line := range kpiLines(k) {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if len(fired) > 0 {
		b.WriteString("Threshold alerts already raised:\n")
		for _, r := range fired {
			fmt.Fprintf(&b, "- [%s, priority %d] %s\n", r.ProcessArea, r.Priority, r.Description)
		}
	}
	if area != "" {
		fmt.Fprintf(&b, "Focus on the %s process area.\n", area)
	}
	b.WriteString("Give the single most valuable optimization action. Answer exactly in this format:\n")
	b.WriteString("RECOMMENDATION: <one or two sentences>\n")
	b.WriteString("ESTIMATED_SAVINGS_KWH: <number per hour, 0 if none>\n")
	b.WriteString("PRIORITY: <1-10>\n")
	b.WriteString("PROCESS_AREA: <raw_material|grinding|clinkering|quality|alternative_fuel|utilities|plant>\n")
	return b.String()
}

func kpiLines(k kpi.KPIs) []string {
	names := []string{
		kpi.MetricLSFPct, kpi.MetricSilicaModulus, kpi.MetricAluminaModulus, kpi.MetricC3S,
		kpi.MetricSpecificEnergy, kpi.MetricVRMDifferential, kpi.MetricBurningZoneTemp,
		kpi.MetricSpecificHeat, kpi.MetricThermalSubstitution, kpi.MetricQualityScore,
		kpi.MetricStrength28d, kpi.MetricSoundness, kpi.MetricCementFineness,
		kpi.MetricUtilitiesPower,
	}
	lines := make([]string, 0, len(names))
	for _, n := range names {
		m, _ := k.Lookup(n)
		if v, ok := m.Float(); ok {
			lines = append(lines, fmt.Sprintf("%s: %.2f", n, v))
		}
	}
	sort.Strings(lines)
	return lines
}
