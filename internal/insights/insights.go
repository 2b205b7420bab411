package insights

import (
	"log/slog"
	"sort"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"attune/internal/descriptor"
	"attune/internal/features"
	"attune/internal/logging"
	"attune/internal/scoring"
)

const component = "insights"

const (
	// DefaultGroups is the cluster count when none is configured.
	DefaultGroups = 3
	// DefaultMinGroupSize folds smaller clusters into the outliers.
	DefaultMinGroupSize = 2
)

// Config holds grouping parameters. Zero values mean the defaults.
type Config struct {
	Groups       int
	MinGroupSize int
}

func (c Config) withDefaults() Config {
	if c.Groups <= 0 {
		c.Groups = DefaultGroups
	}
	if c.MinGroupSize <= 0 {
		c.MinGroupSize = DefaultMinGroupSize
	}
	return c
}

// Group is a cluster of candidates with similar sound.
type Group struct {
	Name string
	// Centroid holds the cluster center keyed by descriptor axis name.
	Centroid map[string]float64
	Members  []features.Record
}

// recordObservation adapts a record's projection to the clustering
// interface.
type recordObservation struct {
	record *features.Record
	coords clusters.Coordinates
}

func (o recordObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o recordObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// GroupCandidates clusters records by descriptor-space position and
// returns named groups plus the outliers that fit nowhere.
func GroupCandidates(records []features.Record, cfg Config, logger *slog.Logger) ([]Group, []features.Record) {
	log := logging.NewComponentLogger(logger, component)
	if len(records) == 0 {
		return nil, nil
	}
	cfg = cfg.withDefaults()

	var (
		valid    []*features.Record
		coords   []clusters.Coordinates
		outliers []features.Record
	)
	for i := range records {
		rec := &records[i]
		vec, ok := scoring.Project(*rec)
		if !ok {
			outliers = append(outliers, *rec)
			continue
		}
		valid = append(valid, rec)
		coords = append(coords, clusters.Coordinates(vec))
	}

	if len(valid) < cfg.Groups {
		for _, rec := range valid {
			outliers = append(outliers, *rec)
		}
		return nil, outliers
	}

	var obs clusters.Observations
	for i, rec := range valid {
		obs = append(obs, recordObservation{record: rec, coords: coords[i]})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.Groups)
	if err != nil {
		logging.WarnWithContext(log, "clustering failed", "insights_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "try a smaller group count"),
			logging.String(logging.FieldImpact, "all candidates reported as outliers"))
		for _, rec := range valid {
			outliers = append(outliers, *rec)
		}
		return nil, outliers
	}

	var groups []Group
	for _, cluster := range result {
		var members []features.Record
		for _, o := range cluster.Observations {
			if ro, ok := o.(recordObservation); ok {
				members = append(members, *ro.record)
			}
		}
		if len(members) < cfg.MinGroupSize {
			outliers = append(outliers, members...)
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			return members[i].Name < members[j].Name
		})
		centroid := make(map[string]float64, descriptor.Axes)
		for i := 0; i < descriptor.Axes && i < len(cluster.Center); i++ {
			centroid[descriptor.AxisName(i)] = cluster.Center[i]
		}
		groups = append(groups, Group{
			Name:     profileName(cluster.Center),
			Centroid: centroid,
			Members:  members,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Members) != len(groups[j].Members) {
			return len(groups[i].Members) > len(groups[j].Members)
		}
		return groups[i].Name < groups[j].Name
	})

	log.Debug("candidates grouped",
		logging.Args(
			logging.Int("groups", len(groups)),
			logging.Int("outliers", len(outliers)),
		)...)
	return groups, outliers
}

// profileName places a cluster center in a pace/level quadrant. The
// first two axes track tempo and loudness in the statistical
// projection, which dominates fallback libraries; the names are
// descriptive labels, not measurements.
func profileName(center clusters.Coordinates) string {
	if len(center) < 2 {
		return "Mixed Profile"
	}
	fast := center[0] > 0.5
	loud := center[1] > 0.5

	var base string
	switch {
	case !fast && !loud:
		base = "Still & Restful"
	case !fast && loud:
		base = "Deep & Enveloping"
	case fast && !loud:
		base = "Light & Flowing"
	default:
		base = "Bright & Energetic"
	}

	if len(center) > descriptor.AxisTexture && center[descriptor.AxisTexture] > 0.6 {
		return base + " (Layered)"
	}
	return base
}
