package reconciler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/vin"
)

var (
	ErrNoSuchCard    = errors.New("reconciler: no such card")
	ErrUnknownField  = errors.New("reconciler: unknown field")
	ErrNothingToCopy = errors.New("reconciler: nothing to copy")
)

// Status texts reported through the change hook.
const (
	StatusTyping          = "Typing..."
	StatusChanged         = "Changed"
	StatusUpdatedDrivers  = "Updated drivers"
	StatusUpdatedVehicles = "Updated vehicles"
	StatusDecoded         = "Auto-saved"
)

// Change describes one recognized edit. Typing is true for keystroke-style
// edits and false for control changes (selects, dates, counts, decodes).
type Change struct {
	Status string
	Typing bool
}

// Form owns the editable state of one intake: customer fields, the count
// selectors and the driver/vehicle cards. It is the single source the
// document snapshot is read from.
type Form struct {
	mu       sync.Mutex
	customer intake.Customer
	counts   intake.Counts
	drivers  []*driverCard
	vehicles []*vehicleCard

	lookup    vin.Decoder
	clipboard Clipboard
	onChange  func(Change)
	now       func() time.Time
}

type Option func(*Form)

// WithClipboard sets where copy actions write to. Without one, copy actions
// only return the text.
func WithClipboard(c Clipboard) Option { return func(f *Form) { f.clipboard = c } }

// WithClock overrides the timestamp source used for meta.updatedAt.
func WithClock(now func() time.Time) Option { return func(f *Form) { f.now = now } }

// NewForm returns a form rendered with one blank driver and one blank vehicle.
func NewForm(lookup vin.Decoder, opts ...Option) *Form {
	f := &Form{lookup: lookup, now: time.Now, onChange: func(Change) {}}
	for _, o := range opts {
		o(f)
	}
	blank := intake.NewBlank(f.now())
	f.applyLocked(blank)
	return f
}

// OnChange registers the hook called after every recognized edit. The hook
// runs without the form lock held.
func (f *Form) OnChange(fn func(Change)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fn == nil {
		fn = func(Change) {}
	}
	f.onChange = fn
}

func (f *Form) emit(c Change) {
	f.mu.Lock()
	fn := f.onChange
	f.mu.Unlock()
	fn(c)
}

// Snapshot reads the rendered state into a fresh Document. VINs are
// normalized here rather than on every keystroke.
func (f *Form) Snapshot() intake.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Form) snapshotLocked() intake.Document {
	doc := intake.Document{
		Customer: f.customer,
		Counts:   f.counts,
		Drivers:  make([]intake.DriverEntry, len(f.drivers)),
		Vehicles: make([]intake.VehicleEntry, len(f.vehicles)),
		Meta:     intake.Meta{Version: intake.SchemaVersion, UpdatedAt: f.now().UTC()},
	}
	for i, c := range f.drivers {
		doc.Drivers[i] = c.entry
	}
	for i, c := range f.vehicles {
		doc.Vehicles[i] = c.entry()
	}
	return doc
}

// Apply replaces everything rendered with doc. The document is the source of
// truth: cards are built from its arrays, never from what was on screen.
func (f *Form) Apply(doc intake.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyLocked(doc.Normalize())
}

func (f *Form) applyLocked(doc intake.Document) {
	f.customer = doc.Customer
	f.renderDriversFromDataLocked(doc.Counts.Drivers, doc.Drivers)
	f.renderVehiclesFromDataLocked(doc.Counts.Vehicles, doc.Vehicles)
}

// View returns a copy of the rendered cards with VINs as typed.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := View{
		Customer: f.customer,
		Counts:   f.counts,
		Drivers:  make([]DriverView, len(f.drivers)),
		Vehicles: make([]VehicleView, len(f.vehicles)),
	}
	for i, c := range f.drivers {
		v.Drivers[i] = DriverView{Index: i, DriverEntry: c.entry}
	}
	for i, c := range f.vehicles {
		v.Vehicles[i] = VehicleView{Index: i, VIN: c.vin, Decoded: c.displayDecoded(), Pending: c.pending}
	}
	return v
}

// RenderDriversFromSnapshot re-renders count driver cards, reusing the cards
// already on screen for indices below count. Trailing cards are dropped and
// new ones start blank.
func (f *Form) RenderDriversFromSnapshot(count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renderDriversFromSnapshotLocked(count)
}

// RenderDriversFromData re-renders count driver cards seeded from data;
// indices past the end of data start blank.
func (f *Form) RenderDriversFromData(count int, data []intake.DriverEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renderDriversFromDataLocked(count, data)
}

// RenderVehiclesFromSnapshot is the vehicle counterpart of RenderDriversFromSnapshot.
// Reused cards keep their identity, so a decode in flight still lands on them.
func (f *Form) RenderVehiclesFromSnapshot(count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renderVehiclesFromSnapshotLocked(count)
}

// RenderVehiclesFromData is the vehicle counterpart of RenderDriversFromData.
// All cards are new; decodes still in flight for the old cards are discarded.
func (f *Form) RenderVehiclesFromData(count int, data []intake.VehicleEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renderVehiclesFromDataLocked(count, data)
}

func (f *Form) renderDriversFromSnapshotLocked(count int) {
	count = clampCount(count)
	next := make([]*driverCard, count)
	for i := range next {
		if i < len(f.drivers) {
			next[i] = f.drivers[i]
		} else {
			next[i] = newDriverCard(intake.DriverEntry{})
		}
	}
	f.drivers = next
	f.counts.Drivers = count
}

func (f *Form) renderDriversFromDataLocked(count int, data []intake.DriverEntry) {
	count = clampCount(count)
	next := make([]*driverCard, count)
	for i := range next {
		var seed intake.DriverEntry
		if i < len(data) {
			seed = data[i]
		}
		next[i] = newDriverCard(seed)
	}
	f.drivers = next
	f.counts.Drivers = count
}

func (f *Form) renderVehiclesFromSnapshotLocked(count int) {
	count = clampCount(count)
	next := make([]*vehicleCard, count)
	for i := range next {
		if i < len(f.vehicles) {
			next[i] = f.vehicles[i]
		} else {
			next[i] = newVehicleCard(intake.BlankVehicle())
		}
	}
	f.vehicles = next
	f.counts.Vehicles = count
}

func (f *Form) renderVehiclesFromDataLocked(count int, data []intake.VehicleEntry) {
	count = clampCount(count)
	next := make([]*vehicleCard, count)
	for i := range next {
		seed := intake.BlankVehicle()
		if i < len(data) {
			seed = data[i]
		}
		next[i] = newVehicleCard(seed)
	}
	f.vehicles = next
	f.counts.Vehicles = count
}

// SetDriverCount changes the driver count without losing entered data.
func (f *Form) SetDriverCount(count int) {
	f.RenderDriversFromSnapshot(count)
	f.emit(Change{Status: StatusUpdatedDrivers})
}

// SetVehicleCount changes the vehicle count without losing entered data.
func (f *Form) SetVehicleCount(count int) {
	f.RenderVehiclesFromSnapshot(count)
	f.emit(Change{Status: StatusUpdatedVehicles})
}

// SetCustomerField updates one customer field ("name", "phone" or "email").
func (f *Form) SetCustomerField(field, value string) error {
	f.mu.Lock()
	switch field {
	case "name":
		f.customer.Name = value
	case "phone":
		f.customer.Phone = value
	case "email":
		f.customer.Email = value
	default:
		f.mu.Unlock()
		return fmt.Errorf("%w: customer.%s", ErrUnknownField, field)
	}
	f.mu.Unlock()
	f.emit(Change{Status: StatusTyping, Typing: true})
	return nil
}

// SetDriverField updates one field of driver card i. Text fields count as
// typing; dob and licenseState are control changes.
func (f *Form) SetDriverField(i int, field, value string) error {
	f.mu.Lock()
	if i < 0 || i >= len(f.drivers) {
		f.mu.Unlock()
		return fmt.Errorf("%w: driver %d", ErrNoSuchCard, i)
	}
	e := &f.drivers[i].entry
	change := Change{Status: StatusTyping, Typing: true}
	switch field {
	case "name":
		e.Name = value
	case "license":
		e.License = value
	case "dob":
		e.DOB = value
		change = Change{Status: StatusChanged}
	case "licenseState":
		e.LicenseState = value
		change = Change{Status: StatusChanged}
	default:
		f.mu.Unlock()
		return fmt.Errorf("%w: driver.%s", ErrUnknownField, field)
	}
	f.mu.Unlock()
	f.emit(change)
	return nil
}

// SetVehicleVIN stores the VIN of card i as typed.
func (f *Form) SetVehicleVIN(i int, raw string) error {
	f.mu.Lock()
	if i < 0 || i >= len(f.vehicles) {
		f.mu.Unlock()
		return fmt.Errorf("%w: vehicle %d", ErrNoSuchCard, i)
	}
	c := f.vehicles[i]
	if c.vin != raw {
		c.vin = raw
		c.vinChanged = true
	}
	f.mu.Unlock()
	f.emit(Change{Status: StatusTyping, Typing: true})
	return nil
}
