package track

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/couchcryptid/storm-vortex-track/internal/domain"
	"github.com/couchcryptid/storm-vortex-track/internal/geodesy"
)

// positionFingerprint hashes the longitude and latitude columns in row order.
func positionFingerprint(table domain.RecordTable) uint64 {
	d := xxhash.New()
	var buf [16]byte
	for _, f := range table {
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(f.Longitude))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(f.Latitude))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

type motion struct {
	speed     float64
	direction float64
}

// computeVelocity derives speed and direction for every row of the table.
// Rows are clustered by record type; within a cluster the first row of each
// distinct timestamp represents that timestamp and is paired with the
// representative of the preceding timestamp. The result is written to every
// row of the cluster sharing the timestamp. The leading timestamp of each
// cluster has no predecessor and gets zero speed and direction.
func computeVelocity(table domain.RecordTable) {
	var order []string
	clusters := make(map[string][]int)
	for i, f := range table {
		if _, ok := clusters[f.RecordType]; !ok {
			order = append(order, f.RecordType)
		}
		clusters[f.RecordType] = append(clusters[f.RecordType], i)
	}

	for _, recordType := range order {
		rows := clusters[recordType]

		var representatives []int
		seen := make(map[int64]bool, len(rows))
		for _, i := range rows {
			key := table[i].Time.UnixNano()
			if !seen[key] {
				seen[key] = true
				representatives = append(representatives, i)
			}
		}

		motions := make(map[int64]motion, len(representatives))
		for k, i := range representatives {
			var m motion
			if k > 0 {
				m = between(table[representatives[k-1]], table[i])
			}
			motions[table[i].Time.UnixNano()] = m
		}

		for _, i := range rows {
			m := motions[table[i].Time.UnixNano()]
			table[i].Speed = m.speed
			table[i].Direction = m.direction
		}
	}
}

// between returns the motion from prev to cur in knots and degrees.
func between(prev, cur domain.Fix) motion {
	from := geodesy.Point{Lon: prev.Longitude, Lat: prev.Latitude}
	to := geodesy.Point{Lon: cur.Longitude, Lat: cur.Latitude}
	azimuth, _, distance := geodesy.Inverse(from, to)

	elapsed := cur.Time.Sub(prev.Time)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	if elapsed == 0 || distance == 0 {
		return motion{}
	}
	seconds := elapsed.Seconds()
	return motion{
		speed:     distance / seconds * geodesy.KnotsPerMeterPerSecond,
		direction: geodesy.NormalizeAzimuth(azimuth),
	}
}
