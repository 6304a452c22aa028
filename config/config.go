// Package config holds the static configuration for a groundctl deployment:
// the component-name table, the role permission table, scheduler bounds, and
// the default restricted zones loaded at startup. Configuration is passed
// explicitly at construction; there are no process-wide globals.
package config

import (
	"fmt"
	"time"

	"github.com/c360/groundctl/errors"
)

// Well-known component names. These are the keys under which components
// register their mailboxes; messages address components by these names.
const (
	SecurityMonitorName = "security_monitor"
	OpticsControlName   = "optics_control"
	CameraName          = "camera"
	RendererName        = "renderer"
	DispatcherName      = "dispatcher"
	ArchiveName         = "archive"
	OrbitControlName    = "orbit_control"
	NATSBridgeName      = "nats_bridge"
)

// Role is the privilege level attached to a command submitter.
type Role int

const (
	RoleClient Role = 1
	RoleVIP    Role = 2
	RoleAdmin  Role = 3
)

// String returns the role's display name.
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleVIP:
		return "vip"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r >= RoleClient && r <= RoleAdmin
}

// Command names accepted by the command gate.
const (
	CmdMakePhoto  = "MAKE PHOTO"
	CmdOrbit      = "ORBIT"
	CmdAddZone    = "ADD ZONE"
	CmdRemoveZone = "REMOVE ZONE"
)

// Scheduler bounds. Intervals outside [MinPhotoInterval, MaxPhotoInterval]
// are rejected and the prior interval is retained.
const (
	MinPhotoInterval = 0.5
	MaxPhotoInterval = 30.0
)

// Orbit altitude bounds in meters, checked by the command gate.
const (
	MinOrbitAltitude = 160000.0
	MaxOrbitAltitude = 2000000.0
)

// Zone describes one restricted zone as configured: two corners of an
// axis-aligned lat/lon box plus metadata. Corners need not be ordered; the
// hub normalizes them on upsert.
type Zone struct {
	ID            int     `json:"id"`
	Lat1          float64 `json:"lat1"`
	Lon1          float64 `json:"lon1"`
	Lat2          float64 `json:"lat2"`
	Lon2          float64 `json:"lon2"`
	SeverityLevel int     `json:"severity_level"`
	Description   string  `json:"description"`
}

// Config is the complete groundctl configuration.
type Config struct {
	// Permissions maps a command name to the roles allowed to invoke it.
	Permissions map[string][]Role

	// DefaultZones are loaded through the security hub at startup.
	DefaultZones []Zone

	// PhotoIntervalSeconds is the scheduler's initial minimum inter-capture
	// interval.
	PhotoIntervalSeconds float64

	// PhotoLogPath is the append-only photo log file.
	PhotoLogPath string

	// TickInterval is the component runtime's inter-tick yield.
	TickInterval time.Duration
}

// Default returns the stock configuration: the original permission table,
// the three default restricted zones, and a 1 second capture interval.
func Default() *Config {
	return &Config{
		Permissions: map[string][]Role{
			CmdMakePhoto:  {RoleClient, RoleVIP, RoleAdmin},
			CmdOrbit:      {RoleVIP, RoleAdmin},
			CmdAddZone:    {RoleAdmin},
			CmdRemoveZone: {RoleAdmin},
		},
		DefaultZones: []Zone{
			{ID: 1001, Lat1: -40, Lon1: -30, Lat2: -10, Lon2: -10, SeverityLevel: 2},
			{ID: 1002, Lat1: 50, Lon1: 60, Lat2: 55, Lon2: 70, SeverityLevel: 1},
			{ID: 1003, Lat1: -20, Lon1: -60, Lat2: -10, Lon2: -40, SeverityLevel: 3},
		},
		PhotoIntervalSeconds: 1.0,
		PhotoLogPath:         "photos.log",
		TickInterval:         10 * time.Millisecond,
	}
}

// Allowed reports whether role may invoke the named command.
func (c *Config) Allowed(role Role, command string) bool {
	for _, r := range c.Permissions[command] {
		if r == role {
			return true
		}
	}
	return false
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c == nil {
		return errors.WrapFatal(errors.ErrMissingConfig, "Config", "Validate", "nil config")
	}
	if len(c.Permissions) == 0 {
		return errors.WrapFatal(errors.ErrMissingConfig, "Config", "Validate", "permission table is empty")
	}
	for cmd, roles := range c.Permissions {
		if len(roles) == 0 {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				fmt.Sprintf("command %q allows no roles", cmd))
		}
		for _, r := range roles {
			if !r.Valid() {
				return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
					fmt.Sprintf("command %q references unknown role %d", cmd, int(r)))
			}
		}
	}
	if c.PhotoIntervalSeconds < MinPhotoInterval || c.PhotoIntervalSeconds > MaxPhotoInterval {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("photo interval %.2f outside [%.1f, %.1f]",
				c.PhotoIntervalSeconds, MinPhotoInterval, MaxPhotoInterval))
	}
	if c.PhotoLogPath == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "photo log path is empty")
	}
	if c.TickInterval <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "tick interval must be positive")
	}
	seen := make(map[int]bool, len(c.DefaultZones))
	for _, z := range c.DefaultZones {
		if seen[z.ID] {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				fmt.Sprintf("duplicate default zone id %d", z.ID))
		}
		seen[z.ID] = true
	}
	return nil
}
