package main

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

type Config struct {
	Host           string        `env:"HOST,notEmpty"`
	Port           string        `env:"PORT"            envDefault:"7094"`
	Zones          []int         `env:"ZONES,notEmpty"`
	ZoneNames      []string      `env:"ZONE_NAMES"`
	PollInterval   time.Duration `env:"POLL_INTERVAL"   envDefault:"10s"`
	Events         bool          `env:"EVENTS"          envDefault:"true"`
	EventCatalog   string        `env:"EVENT_CATALOG"`
	Logging        bool          `env:"LOGGING"         envDefault:"true"`
	Debug          bool          `env:"DEBUG"`
	BusyRetries    uint64        `env:"BUSY_RETRIES"    envDefault:"5"`
	SendInterval   time.Duration `env:"SEND_INTERVAL"   envDefault:"1s"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"2s"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT"    envDefault:"30s"`
	Address        string        `env:"LISTEN"          envDefault:":9009"`
}

type zoneConfig struct {
	number int
	name   string
}

// zoneName returns the configured name of zone n, or an empty string when
// it should be read from the panel.
func (c Config) zoneName(n int) string {
	names := c.ZoneNames
	if len(names) > n-1 {
		return names[n-1]
	}
	return ""
}

type allZoneConfigs []zoneConfig

func (a allZoneConfigs) String() string {
	var zones []string
	for _, zone := range a {
		name := zone.name
		if name == "" {
			name = "(from panel)"
		}
		zones = append(zones, fmt.Sprintf("zone %d: %q", zone.number, name))
	}
	return strings.Join(zones, "\n")
}

func (c Config) allZones() []zoneConfig {
	numbers := slices.Clone(c.Zones)
	slices.Sort(numbers)
	numbers = slices.Compact(numbers)

	var zones []zoneConfig
	for _, n := range numbers {
		zones = append(zones, zoneConfig{
			number: n,
			name:   c.zoneName(n),
		})
	}
	return zones
}
