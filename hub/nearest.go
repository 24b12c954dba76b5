package hub

// Nearest returns the hub closest to the given point, skipping hubs without
// coordinates. Distance is squared Euclidean over raw lat/lon, which is fine
// at campus scale. Ties go to the first hub encountered in iteration order;
// that is stable but carries no meaning.
func Nearest(hubs []Hub, lat, lon float64) (Hub, bool) {
	best := -1
	var bestDist float64

	for i, h := range hubs {
		if !h.Latitude.Valid || !h.Longitude.Valid {
			continue
		}

		dLat := lat - h.Latitude.Float64
		dLon := lon - h.Longitude.Float64
		dist := dLat*dLat + dLon*dLon

		if best == -1 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}

	if best == -1 {
		return Hub{}, false
	}
	return hubs[best], true
}
