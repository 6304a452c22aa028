package message

import (
	"fmt"
	"math"
	"time"

	"github.com/c360/groundctl/errors"
)

// Envelope validation errors.
var (
	ErrMissingSource      = errors.New("message source is required")
	ErrMissingDestination = errors.New("message destination is required")
	ErrMissingOperation   = errors.New("message operation is required")
)

// Payload is the operation-specific body of a Message. Each Operation maps
// to exactly one concrete payload type; see PayloadFor.
type Payload interface {
	// Validate checks payload field constraints.
	Validate() error
}

// PhotoPoint is a captured (or to-be-persisted) geographic point.
type PhotoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks coordinate ranges.
func (p *PhotoPoint) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return errors.WrapInvalid(
			fmt.Errorf("latitude %v out of range [-90, 90]", p.Lat),
			"PhotoPoint", "Validate", "latitude check")
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return errors.WrapInvalid(
			fmt.Errorf("longitude %v out of range [-180, 180]", p.Lon),
			"PhotoPoint", "Validate", "longitude check")
	}
	return nil
}

// CaptureRequest asks for a photo capture, optionally at a specific time.
type CaptureRequest struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Validate always succeeds; an absent timestamp means "as soon as allowed".
func (c *CaptureRequest) Validate() error {
	return nil
}

// IntervalChange carries a new minimum inter-capture interval in seconds.
// Range enforcement (0.5-30.0) is the scheduler's responsibility so an
// out-of-range request can be rejected while the prior interval is retained.
type IntervalChange struct {
	Seconds float64 `json:"seconds"`
}

// Validate rejects values that cannot possibly be an interval.
func (i *IntervalChange) Validate() error {
	if math.IsNaN(i.Seconds) || i.Seconds <= 0 {
		return errors.WrapInvalid(
			fmt.Errorf("interval %v is not positive", i.Seconds),
			"IntervalChange", "Validate", "interval check")
	}
	return nil
}

// ZoneSpec is a full restricted-zone definition. The bounding box must be
// normalized: LatMin <= LatMax and LonMin <= LonMax.
type ZoneSpec struct {
	ID            int     `json:"id"`
	LatMin        float64 `json:"lat_min"`
	LonMin        float64 `json:"lon_min"`
	LatMax        float64 `json:"lat_max"`
	LonMax        float64 `json:"lon_max"`
	SeverityLevel int     `json:"severity_level"`
	Description   string  `json:"description,omitempty"`
}

// Validate checks the zone key and box normalization.
func (z *ZoneSpec) Validate() error {
	if z.ID <= 0 {
		return errors.WrapInvalid(
			fmt.Errorf("zone id %d must be positive", z.ID),
			"ZoneSpec", "Validate", "id check")
	}
	if z.LatMin > z.LatMax || z.LonMin > z.LonMax {
		return errors.WrapInvalid(
			fmt.Errorf("zone %d box is not normalized", z.ID),
			"ZoneSpec", "Validate", "box check")
	}
	return nil
}

// ZoneID references an existing restricted zone.
type ZoneID struct {
	ID int `json:"id"`
}

// Validate checks the zone key.
func (z *ZoneID) Validate() error {
	if z.ID <= 0 {
		return errors.WrapInvalid(
			fmt.Errorf("zone id %d must be positive", z.ID),
			"ZoneID", "Validate", "id check")
	}
	return nil
}

// OrbitChange requests a new orbit for the satellite collaborator.
type OrbitChange struct {
	Altitude    float64 `json:"altitude"`
	RAAN        float64 `json:"raan"`
	Inclination float64 `json:"inclination"`
}

// Validate checks basic physical plausibility. The command gate enforces the
// stricter operational altitude window before a message is ever built.
func (o *OrbitChange) Validate() error {
	if math.IsNaN(o.Altitude) || o.Altitude <= 0 {
		return errors.WrapInvalid(
			fmt.Errorf("altitude %v is not positive", o.Altitude),
			"OrbitChange", "Validate", "altitude check")
	}
	return nil
}

// StatusReport is the scheduler's reply to OpGetStatus.
type StatusReport struct {
	QueueDepth      int       `json:"queue_depth"`
	Busy            bool      `json:"busy"`
	IntervalSeconds float64   `json:"interval_seconds"`
	LastDispatch    time.Time `json:"last_dispatch"`
}

// Validate always succeeds; a zero LastDispatch means nothing dispatched yet.
func (s *StatusReport) Validate() error {
	return nil
}

// Empty is the payload for operations that carry no body.
type Empty struct{}

// Validate always succeeds.
func (e *Empty) Validate() error {
	return nil
}

// PayloadFor returns a zero payload of the concrete type registered for the
// operation, or nil for unknown operations. Used when decoding wire messages.
func PayloadFor(op Operation) Payload {
	switch op {
	case OpRequestPhoto:
		return &CaptureRequest{}
	case OpPostPhoto, OpUpdatePhotoMap, OpSavePhoto, OpAddPhoto:
		return &PhotoPoint{}
	case OpSetPhotoInterval:
		return &IntervalChange{}
	case OpGetStatus:
		return &Empty{}
	case OpStatusReport:
		return &StatusReport{}
	case OpAddZone, OpDrawZone:
		return &ZoneSpec{}
	case OpRemoveZone, OpClearZone:
		return &ZoneID{}
	case OpChangeOrbit:
		return &OrbitChange{}
	default:
		return nil
	}
}
