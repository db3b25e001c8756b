package service

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
)

// ReduceSnapshot filters malformed records out of snap and selects the one
// with the greatest timestamp. Ties keep the record seen first. The returned
// history holds every valid record ordered by timestamp. ok is false when no
// valid record remains.
func ReduceSnapshot(snap domain.Snapshot) (domain.Reduction, bool) {
	var red domain.Reduction
	found := false

	history := make([]domain.Position, 0, len(snap.Records))
	for _, rec := range snap.Records {
		p, valid := parseRecord(rec)
		if !valid {
			red.Discarded++
			continue
		}
		history = append(history, p)
		if !found || p.Timestamp > red.Latest.Timestamp {
			red.Latest = p
			found = true
		}
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp < history[j].Timestamp
	})
	red.History = history
	return red, found
}

func parseRecord(rec domain.PositionRecord) (domain.Position, bool) {
	if rec.Latitude == nil || rec.Longitude == nil {
		return domain.Position{}, false
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(rec.Key), 10, 64)
	if err != nil {
		return domain.Position{}, false
	}
	lat, lon := *rec.Latitude, *rec.Longitude
	if math.IsInf(lat, 0) || math.IsInf(lon, 0) || !domain.ValidCoordinate(lat, lon) {
		return domain.Position{}, false
	}
	return domain.Position{Lat: lat, Lon: lon, Timestamp: ts}, true
}
