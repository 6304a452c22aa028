// Package security implements the routing hub every cross-component message
// passes through. The hub owns the restricted-zone table and the policy set;
// it validates each inbound message and forwards only what passes. Denials
// are silent drops from the routee's perspective.
package security

import (
	"fmt"

	"github.com/c360/groundctl/config"
	"github.com/c360/groundctl/message"
)

// RestrictedZone is an axis-aligned lat/lon box a captured point must not
// fall inside. Bounds are kept normalized (min <= max on both axes).
type RestrictedZone struct {
	ID            int
	LatMin        float64
	LatMax        float64
	LonMin        float64
	LonMax        float64
	SeverityLevel int
	Description   string
}

// NewRestrictedZone builds a zone from two arbitrary corners, normalizing
// so that LatMin <= LatMax and LonMin <= LonMax.
func NewRestrictedZone(id int, lat1, lon1, lat2, lon2 float64, severity int, description string) RestrictedZone {
	z := RestrictedZone{
		ID:            id,
		LatMin:        lat1,
		LatMax:        lat2,
		LonMin:        lon1,
		LonMax:        lon2,
		SeverityLevel: severity,
		Description:   description,
	}
	if z.LatMin > z.LatMax {
		z.LatMin, z.LatMax = z.LatMax, z.LatMin
	}
	if z.LonMin > z.LonMax {
		z.LonMin, z.LonMax = z.LonMax, z.LonMin
	}
	return z
}

// zoneFromSpec converts a message payload into a normalized zone.
func zoneFromSpec(spec message.ZoneSpec) RestrictedZone {
	return NewRestrictedZone(spec.ID, spec.LatMin, spec.LonMin, spec.LatMax, spec.LonMax,
		spec.SeverityLevel, spec.Description)
}

// ZoneFromConfig converts a configured zone into a normalized zone. cmd uses
// it to build the startup OpAddZone messages.
func ZoneFromConfig(z config.Zone) RestrictedZone {
	return NewRestrictedZone(z.ID, z.Lat1, z.Lon1, z.Lat2, z.Lon2, z.SeverityLevel, z.Description)
}

// Contains reports whether the point lies inside the zone. Boundaries are
// inclusive: a point exactly on an edge is inside.
func (z RestrictedZone) Contains(lat, lon float64) bool {
	return lat >= z.LatMin && lat <= z.LatMax &&
		lon >= z.LonMin && lon <= z.LonMax
}

// Spec converts the zone back into its message payload form.
func (z RestrictedZone) Spec() message.ZoneSpec {
	return message.ZoneSpec{
		ID:            z.ID,
		LatMin:        z.LatMin,
		LonMin:        z.LonMin,
		LatMax:        z.LatMax,
		LonMax:        z.LonMax,
		SeverityLevel: z.SeverityLevel,
		Description:   z.Description,
	}
}

func (z RestrictedZone) String() string {
	return fmt.Sprintf("zone %d [%.4f,%.4f]x[%.4f,%.4f]", z.ID, z.LatMin, z.LatMax, z.LonMin, z.LonMax)
}
