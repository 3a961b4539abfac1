package reconciler

import (
	"strings"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
)

// MaxCount is the largest value the count selectors offer.
const MaxCount = intake.MaxCount

func clampCount(n int) int { return min(max(n, 0), MaxCount) }

// LicenseStates are the values offered by the license state selector.
var LicenseStates = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
	"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
	"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
	"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY", "DC",
}

// IsLicenseState reports whether s is empty or one of LicenseStates.
func IsLicenseState(s string) bool {
	if s == "" {
		return true
	}
	for _, st := range LicenseStates {
		if st == s {
			return true
		}
	}
	return false
}

// driverCard is the view-model behind one rendered driver card.
type driverCard struct {
	entry intake.DriverEntry
}

func newDriverCard(seed intake.DriverEntry) *driverCard {
	return &driverCard{entry: seed}
}

// licenseComposite joins state and number, skipping empty parts.
func (c *driverCard) licenseComposite() string {
	parts := make([]string, 0, 2)
	if c.entry.LicenseState != "" {
		parts = append(parts, c.entry.LicenseState)
	}
	if c.entry.License != "" {
		parts = append(parts, c.entry.License)
	}
	return strings.Join(parts, " ")
}

// vehicleCard holds the VIN exactly as typed; normalization happens when the
// card is read into a document or decoded.
type vehicleCard struct {
	vin     string
	decoded string
	// vinChanged is set by edits and cleared once a decode starts.
	vinChanged bool
	// decodeSeq identifies the most recent decode; older results are dropped.
	decodeSeq uint64
	pending   bool
}

func newVehicleCard(seed intake.VehicleEntry) *vehicleCard {
	seed = seed.Normalize()
	return &vehicleCard{vin: seed.VIN, decoded: seed.Decoded}
}

func (c *vehicleCard) entry() intake.VehicleEntry {
	return intake.VehicleEntry{VIN: intake.NormalizeVIN(c.vin), Decoded: c.displayDecoded()}
}

func (c *vehicleCard) displayDecoded() string {
	if c.decoded == "" {
		return intake.DecodedPlaceholder
	}
	return c.decoded
}

// DriverView and VehicleView are read-only copies of the rendered cards.
type DriverView struct {
	Index int `json:"index"`
	intake.DriverEntry
}

type VehicleView struct {
	Index   int    `json:"index"`
	VIN     string `json:"vin"`
	Decoded string `json:"decoded"`
	Pending bool   `json:"pending"`
}

// View is the full rendered state of the form.
type View struct {
	Customer intake.Customer `json:"customer"`
	Counts   intake.Counts   `json:"counts"`
	Drivers  []DriverView    `json:"drivers"`
	Vehicles []VehicleView   `json:"vehicles"`
}
