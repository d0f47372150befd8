package recommend

import (
	"strings"

	"github.com/muesli/clusters"
)

// clusterLabel names a cluster from its center using a 2x2 rating/duration
// quadrant:
//
//   - High rating + Long  = "Long favorites"
//   - High rating + Short = "Quick favorites"
//   - Low rating  + Long  = "Long misses"
//   - Low rating  + Short = "Quick misses"
//
// Centers in the middle of the rating scale are "Mixed long" or "Mixed quick".
func clusterLabel(center clusters.Coordinates) string {
	if len(center) < 2 {
		return "Unlabeled"
	}
	rating, duration := center[0], center[1]

	length := "Quick"
	if duration > 0.5 {
		length = "Long"
	}

	switch {
	case rating > 0.7:
		return length + " favorites"
	case rating < 0.4:
		return length + " misses"
	default:
		return "Mixed " + strings.ToLower(length)
	}
}
