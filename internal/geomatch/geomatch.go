// Package geomatch derives router/site evidence from spatial proximity
// between Starlink device coordinates and Nox router coordinates.
package geomatch

import (
	"math"
	"sort"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/starlinker/internal/directory"
)

// ProximityMeters is the candidate threshold: a device closer than this to an
// ISP-member router is a candidate match.
const ProximityMeters = 300.0

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Candidate is one device/router pairing within the proximity threshold.
type Candidate struct {
	RouterID   string
	RouterCode string
	Site       string
	Sln        string
	Distance   float64
}

// Match is an accepted geo assignment for one device.
type Match struct {
	RouterCode string
	Site       string
	Distance   float64
}

// Distance computes the great-circle distance in meters between two lon/lat
// coordinates using the haversine formula.
func Distance(a, b geom.Coord) float64 {
	lat1 := a[1] * math.Pi / 180
	lon1 := a[0] * math.Pi / 180
	lat2 := b[1] * math.Pi / 180
	lon2 := b[0] * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// Candidates computes every device/router pairing within ProximityMeters.
// Pairs where either side has no coordinates are skipped, as are routers
// whose code is not in the ISP set. Router ids and slns are iterated in
// sorted order so the candidate list is reproducible.
func Candidates(idx *directory.Index, deviceCoords map[string]geom.Coord, ispRouters map[string]bool) []Candidate {
	slns := make([]string, 0, len(deviceCoords))
	for sln := range deviceCoords {
		slns = append(slns, sln)
	}
	sort.Strings(slns)

	var cands []Candidate
	for _, id := range idx.RouterIDs() {
		info := idx.Routers[id]
		if info.Coord == nil || !ispRouters[info.Code] {
			continue
		}
		for _, sln := range slns {
			coord := deviceCoords[sln]
			if coord == nil {
				continue
			}
			d := Distance(info.Coord, coord)
			if d < ProximityMeters {
				cands = append(cands, Candidate{
					RouterID:   id,
					RouterCode: info.Code,
					Site:       info.Site,
					Sln:        sln,
					Distance:   d,
				})
			}
		}
	}
	return cands
}

// Assign resolves candidate contention by a greedy fold over candidates
// sorted by ascending distance (ties broken by router id, then sln): the
// closest pairing wins, and both its router code and its device are then
// claimed. Each device ends up with at most one match and each router code
// with at most one device, so no assignment is ever silently displaced.
func Assign(cands []Candidate) map[string]Match {
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Distance != sorted[j].Distance {
			return sorted[i].Distance < sorted[j].Distance
		}
		if sorted[i].RouterID != sorted[j].RouterID {
			return sorted[i].RouterID < sorted[j].RouterID
		}
		return sorted[i].Sln < sorted[j].Sln
	})

	claimedRouters := make(map[string]bool)
	matches := make(map[string]Match)
	for _, c := range sorted {
		if claimedRouters[c.RouterCode] {
			continue
		}
		if _, taken := matches[c.Sln]; taken {
			continue
		}
		claimedRouters[c.RouterCode] = true
		matches[c.Sln] = Match{
			RouterCode: c.RouterCode,
			Site:       c.Site,
			Distance:   c.Distance,
		}
	}
	return matches
}

// Run computes the full geo evidence pass: candidate generation followed by
// greedy assignment.
func Run(idx *directory.Index, deviceCoords map[string]geom.Coord, ispRouters map[string]bool) map[string]Match {
	return Assign(Candidates(idx, deviceCoords, ispRouters))
}
