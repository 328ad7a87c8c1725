package recommend

import "strings"

// Severity bands over the 1..10 priority scale.
const (
	BandCritical = "critical"
	BandWarning  = "warning"
	BandInfo     = "info"
)

func Band(priority int) string {
	switch {
	case priority >= 8:
		return BandCritical
	case priority >= 6:
		return BandWarning
	default:
		return BandInfo
	}
}

// BandRange returns the inclusive priority range for a band name.
func BandRange(band string) (min, max int, ok bool) {
	switch strings.ToLower(strings.TrimSpace(band)) {
	case BandCritical:
		return 8, 10, true
	case BandWarning:
		return 6, 7, true
	case BandInfo:
		return 1, 5, true
	}
	return 0, 0, false
}
