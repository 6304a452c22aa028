package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhotoPointValidate(t *testing.T) {
	assert.NoError(t, (&PhotoPoint{Lat: 0, Lon: 0}).Validate())
	assert.NoError(t, (&PhotoPoint{Lat: -90, Lon: 180}).Validate())
	assert.Error(t, (&PhotoPoint{Lat: 91, Lon: 0}).Validate())
	assert.Error(t, (&PhotoPoint{Lat: 0, Lon: -181}).Validate())
}

func TestZoneSpecValidate(t *testing.T) {
	valid := &ZoneSpec{ID: 1001, LatMin: -40, LonMin: -30, LatMax: -10, LonMax: -10, SeverityLevel: 2}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&ZoneSpec{ID: 0, LatMax: 1, LonMax: 1}).Validate(), "zone id must be positive")

	denormalized := &ZoneSpec{ID: 5, LatMin: 10, LatMax: -10, LonMin: 0, LonMax: 1}
	assert.Error(t, denormalized.Validate(), "box must be normalized")
}

func TestIntervalChangeValidate(t *testing.T) {
	assert.NoError(t, (&IntervalChange{Seconds: 5.0}).Validate())
	// Out-of-bounds but positive values pass payload validation; the
	// scheduler rejects them while retaining its prior interval.
	assert.NoError(t, (&IntervalChange{Seconds: 99.0}).Validate())
	assert.Error(t, (&IntervalChange{Seconds: 0}).Validate())
	assert.Error(t, (&IntervalChange{Seconds: -2}).Validate())
}

func TestOrbitChangeValidate(t *testing.T) {
	assert.NoError(t, (&OrbitChange{Altitude: 700000, RAAN: 0, Inclination: 0.1}).Validate())
	assert.Error(t, (&OrbitChange{Altitude: 0}).Validate())
}

func TestPayloadFor(t *testing.T) {
	tests := []struct {
		op   Operation
		want Payload
	}{
		{OpRequestPhoto, &CaptureRequest{}},
		{OpPostPhoto, &PhotoPoint{}},
		{OpUpdatePhotoMap, &PhotoPoint{}},
		{OpSavePhoto, &PhotoPoint{}},
		{OpAddPhoto, &PhotoPoint{}},
		{OpSetPhotoInterval, &IntervalChange{}},
		{OpGetStatus, &Empty{}},
		{OpStatusReport, &StatusReport{}},
		{OpAddZone, &ZoneSpec{}},
		{OpDrawZone, &ZoneSpec{}},
		{OpRemoveZone, &ZoneID{}},
		{OpClearZone, &ZoneID{}},
		{OpChangeOrbit, &OrbitChange{}},
	}

	for _, tt := range tests {
		assert.IsType(t, tt.want, PayloadFor(tt.op), "operation %s", tt.op)
	}

	assert.Nil(t, PayloadFor(Operation("warp_drive")))
}
