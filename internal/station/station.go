// Package station defines the data structures for radio-browser directory stations.
package station

import "strings"

// Station represents a single entry from the radio-browser.info directory.
type Station struct {
	UUID        string   `json:"stationuuid"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	URLResolved string   `json:"url_resolved"` // playlist URLs resolved to the actual stream
	Homepage    string   `json:"homepage"`
	Favicon     string   `json:"favicon"`
	Country     string   `json:"country"`
	CountryCode string   `json:"countrycode"`
	State       string   `json:"state"`
	Language    string   `json:"language"`
	Tags        string   `json:"tags"` // comma-separated
	Codec       string   `json:"codec"`
	Bitrate     int      `json:"bitrate"` // kbit/s, 0 when unknown
	Votes       int      `json:"votes"`
	GeoLat      *float64 `json:"geo_lat"`
	GeoLong     *float64 `json:"geo_long"`
}

// StreamURL returns the playable URL, preferring the resolved one when the
// directory has already followed the station's playlist indirection.
func (s *Station) StreamURL() string {
	if s.URLResolved != "" {
		return s.URLResolved
	}
	return s.URL
}

// Location joins state and country into a display string.
func (s *Station) Location() string {
	parts := make([]string, 0, 2)
	if s.State != "" {
		parts = append(parts, s.State)
	}
	if s.Country != "" && s.Country != "Unknown" {
		parts = append(parts, s.Country)
	}
	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, ", ")
}

// TagList splits the comma-separated tag string into trimmed tags.
func (s *Station) TagList() []string {
	if s.Tags == "" {
		return nil
	}
	raw := strings.Split(s.Tags, ",")
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// DedupeByBitrate keeps one station per name — the one with the highest
// bitrate. The directory lists the same station many times at different
// qualities; listeners only want the best one. Order is preserved, and for
// equal bitrates the first occurrence wins.
func DedupeByBitrate(stations []Station) []Station {
	result := make([]Station, 0, len(stations))
	index := make(map[string]int, len(stations))

	for _, s := range stations {
		if i, ok := index[s.Name]; ok {
			if s.Bitrate > result[i].Bitrate {
				result[i] = s
			}
			continue
		}
		index[s.Name] = len(result)
		result = append(result, s)
	}

	return result
}
