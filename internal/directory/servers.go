package directory

import (
	"math/rand"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// lookupHost resolves to every currently available radio-browser server.
	lookupHost = "all.api.radio-browser.info"
	// fallbackServer is a round-robin alias that works when per-server
	// discovery fails (e.g. reverse DNS blocked).
	fallbackServer = "https://" + lookupHost

	requestTimeout = 10 * time.Second
	userAgent      = "RadioBrowse/1.0"
)

// DiscoverServers resolves the radio-browser server pool: look up every
// address behind the discovery alias, reverse-resolve each to its hostname,
// and return the sorted unique HTTPS base URLs.
func DiscoverServers() []string {
	ips, err := net.LookupIP(lookupHost)
	if err != nil {
		log.Debug().Err(err).Msg("Server discovery lookup failed")
		return nil
	}

	seen := make(map[string]bool)
	var servers []string
	for _, ip := range ips {
		names, err := net.LookupAddr(ip.String())
		if err != nil {
			continue
		}
		for _, name := range names {
			name = strings.TrimSuffix(name, ".")
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			servers = append(servers, "https://"+name)
		}
	}

	sort.Strings(servers)
	return servers
}

// PickServer selects a random server from the discovered pool, spreading
// load the way the directory project asks API clients to. Falls back to the
// well-known alias when discovery yields nothing.
func PickServer() string {
	servers := DiscoverServers()
	if len(servers) == 0 {
		log.Debug().Str("server", fallbackServer).Msg("No servers discovered, using fallback")
		return fallbackServer
	}

	server := servers[rand.Intn(len(servers))]
	log.Debug().Str("server", server).Int("pool", len(servers)).Msg("Directory server selected")
	return server
}
