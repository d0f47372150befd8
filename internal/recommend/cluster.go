// Package recommend suggests catalog content from a user's viewing history.
package recommend

import (
	"cmp"
	"errors"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/moodflix/moodflix/internal/db"
)

// maxRating is the top of the activity rating scale.
const maxRating = 5.0

// Config holds clustering parameters.
type Config struct {
	NumClusters int // Number of clusters to create (default: 3)
	MaxMoods    int // Moods taken from the preferred cluster (default: 3)
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumClusters: 3,
		MaxMoods:    3,
	}
}

// TasteCluster is a group of activities with similar rating and length.
type TasteCluster struct {
	Label      string // "Long favorites", "Quick misses", ...
	Activities []db.Activity
	MeanRating float64
	Center     clusters.Coordinates // (rating, duration), both scaled to [0, 1]
}

// Partitioner splits observations into k clusters.
type Partitioner func(obs clusters.Observations, k int) (clusters.Clusters, error)

// KMeans partitions with muesli/kmeans using its default settings.
func KMeans(obs clusters.Observations, k int) (clusters.Clusters, error) {
	return kmeans.New().Partition(obs, k)
}

// activityObservation wraps an Activity to implement clusters.Observation.
type activityObservation struct {
	activity *db.Activity
	coords   clusters.Coordinates
}

func (o activityObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o activityObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// ClusterActivities groups activities by (rating, duration). Clusters come
// back best first: highest mean rating, then largest. Empty clusters are
// dropped.
func ClusterActivities(activities []db.Activity, k int, partition Partitioner) ([]TasteCluster, error) {
	if len(activities) == 0 {
		return nil, nil
	}
	if k <= 0 {
		k = DefaultConfig().NumClusters
	}
	if len(activities) < k {
		return nil, errors.New("fewer activities than clusters")
	}
	if partition == nil {
		partition = KMeans
	}

	maxDuration := 0
	for _, a := range activities {
		maxDuration = max(maxDuration, a.Duration)
	}

	obs := make(clusters.Observations, len(activities))
	for i := range activities {
		obs[i] = activityObservation{
			activity: &activities[i],
			coords:   extractFeatures(&activities[i], maxDuration),
		}
	}

	result, err := partition(obs, k)
	if err != nil {
		return nil, err
	}

	var out []TasteCluster
	for _, cluster := range result {
		var members []db.Activity
		var total float64
		for _, o := range cluster.Observations {
			if ao, ok := o.(activityObservation); ok {
				members = append(members, *ao.activity)
				total += ao.activity.Rating
			}
		}
		if len(members) == 0 {
			continue
		}

		out = append(out, TasteCluster{
			Label:      clusterLabel(cluster.Center),
			Activities: members,
			MeanRating: total / float64(len(members)),
			Center:     cluster.Center,
		})
	}

	slices.SortStableFunc(out, func(a, b TasteCluster) int {
		if c := cmp.Compare(b.MeanRating, a.MeanRating); c != 0 {
			return c
		}
		return cmp.Compare(len(b.Activities), len(a.Activities))
	})
	return out, nil
}

// extractFeatures scales rating and duration into [0, 1].
func extractFeatures(a *db.Activity, maxDuration int) clusters.Coordinates {
	rating := min(max(a.Rating, 0), maxRating) / maxRating
	duration := 0.0
	if maxDuration > 0 {
		duration = float64(max(a.Duration, 0)) / float64(maxDuration)
	}
	return clusters.Coordinates{rating, duration}
}

// RankMoods orders the moods of activities by how often they occur, most
// frequent first, ties broken by name. At most limit moods are returned
// when limit is positive.
func RankMoods(activities []db.Activity, limit int) []string {
	counts := make(map[string]int)
	for _, a := range activities {
		if a.Mood != "" {
			counts[a.Mood]++
		}
	}

	moods := make([]string, 0, len(counts))
	for m := range counts {
		moods = append(moods, m)
	}
	slices.SortFunc(moods, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	if limit > 0 && len(moods) > limit {
		moods = moods[:limit]
	}
	return moods
}
