package intake

import "time"

// SchemaVersion is carried in every document's meta block.
const SchemaVersion = 1

// MaxCount bounds counts.drivers and counts.vehicles.
const MaxCount = 10

// DecodedPlaceholder is shown for a vehicle that has never been decoded.
const DecodedPlaceholder = "—"

// Document is the canonical snapshot of one quote intake. It is what gets
// written to the durable cache, to user-chosen files and to the JSON buffer.
type Document struct {
	Customer Customer       `json:"customer" bson:"customer"`
	Counts   Counts         `json:"counts" bson:"counts"`
	Drivers  []DriverEntry  `json:"drivers" bson:"drivers"`
	Vehicles []VehicleEntry `json:"vehicles" bson:"vehicles"`
	Meta     Meta           `json:"meta" bson:"meta"`
}

type Customer struct {
	Name  string `json:"name" bson:"name"`
	Phone string `json:"phone" bson:"phone"`
	Email string `json:"email" bson:"email"`
}

// Counts drive the length of Drivers and Vehicles, never the reverse.
type Counts struct {
	Drivers  int `json:"drivers" bson:"drivers"`
	Vehicles int `json:"vehicles" bson:"vehicles"`
}

type DriverEntry struct {
	Name         string `json:"name" bson:"name"`
	DOB          string `json:"dob" bson:"dob"`
	LicenseState string `json:"licenseState" bson:"licenseState"`
	License      string `json:"license" bson:"license"`
}

type VehicleEntry struct {
	VIN     string `json:"vin" bson:"vin"`
	Decoded string `json:"decoded" bson:"decoded"`
}

type Meta struct {
	Version   int       `json:"version" bson:"version"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NewBlank returns the document a fresh intake starts from: one blank driver
// and one blank vehicle.
func NewBlank(now time.Time) Document {
	return Document{
		Counts:   Counts{Drivers: 1, Vehicles: 1},
		Drivers:  []DriverEntry{{}},
		Vehicles: []VehicleEntry{BlankVehicle()},
		Meta:     Meta{Version: SchemaVersion, UpdatedAt: now.UTC()},
	}
}

// BlankVehicle is a vehicle entry with no VIN and the placeholder decode text.
func BlankVehicle() VehicleEntry {
	return VehicleEntry{Decoded: DecodedPlaceholder}
}

// Clone returns a deep copy so callers can hand documents across goroutines.
func (d Document) Clone() Document {
	out := d
	out.Drivers = append([]DriverEntry(nil), d.Drivers...)
	out.Vehicles = append([]VehicleEntry(nil), d.Vehicles...)
	return out
}

// Normalize enforces the read-side rules on a document: counts are clamped
// to 0..MaxCount, VINs are normalized and empty decode text becomes the
// placeholder. Array lengths are left alone; the reconciler owns those.
func (d Document) Normalize() Document {
	out := d.Clone()
	out.Counts.Drivers = min(max(out.Counts.Drivers, 0), MaxCount)
	out.Counts.Vehicles = min(max(out.Counts.Vehicles, 0), MaxCount)
	for i := range out.Vehicles {
		out.Vehicles[i] = out.Vehicles[i].Normalize()
	}
	if out.Meta.Version == 0 {
		out.Meta.Version = SchemaVersion
	}
	return out
}

// Normalize returns v with a normalized VIN and a non-empty decode text.
func (v VehicleEntry) Normalize() VehicleEntry {
	v.VIN = NormalizeVIN(v.VIN)
	if v.Decoded == "" {
		v.Decoded = DecodedPlaceholder
	}
	return v
}
