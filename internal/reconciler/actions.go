package reconciler

import (
	"context"
	"fmt"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/vin"
)

// Clipboard receives text from the copy actions.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// DecodeVehicle decodes the VIN of vehicle card i. The card shows the pending
// text while the lookup runs and the lookup message afterwards; both outcomes
// count as a change. Decodes on different cards do not block each other.
func (f *Form) DecodeVehicle(ctx context.Context, i int) (vin.Result, error) {
	f.mu.Lock()
	if i < 0 || i >= len(f.vehicles) {
		f.mu.Unlock()
		return vin.Result{}, fmt.Errorf("%w: vehicle %d", ErrNoSuchCard, i)
	}
	c := f.vehicles[i]
	v := intake.NormalizeVIN(c.vin)
	c.vin = v
	c.vinChanged = false
	c.decoded = vin.MsgPending
	c.pending = true
	c.decodeSeq++
	seq := c.decodeSeq
	f.mu.Unlock()

	var res vin.Result
	if len(v) != intake.VINLength {
		res = vin.Result{OK: false, Text: vin.MsgBadLength}
	} else {
		res = f.lookup.Decode(ctx, v)
	}

	f.mu.Lock()
	// c may have been dropped by a reload meanwhile; writing to it is harmless
	if c.decodeSeq == seq {
		c.decoded = res.Text
		c.pending = false
	}
	f.mu.Unlock()

	f.emit(Change{Status: StatusDecoded})
	return res, nil
}

// BlurVehicle handles the VIN field losing focus. A changed VIN counts as a
// control change and, once it is decodable, triggers a decode. decoded is
// false when no decode ran.
func (f *Form) BlurVehicle(ctx context.Context, i int) (res vin.Result, decoded bool, err error) {
	f.mu.Lock()
	if i < 0 || i >= len(f.vehicles) {
		f.mu.Unlock()
		return vin.Result{}, false, fmt.Errorf("%w: vehicle %d", ErrNoSuchCard, i)
	}
	c := f.vehicles[i]
	changed := c.vinChanged
	decodable := intake.IsDecodableVIN(c.vin)
	f.mu.Unlock()

	if !changed {
		return vin.Result{}, false, nil
	}
	f.emit(Change{Status: StatusChanged})
	if !decodable {
		return vin.Result{}, false, nil
	}
	res, err = f.DecodeVehicle(ctx, i)
	return res, err == nil, err
}

// CopyLicense copies "<state> <license>" of driver card i, skipping empty parts.
func (f *Form) CopyLicense(ctx context.Context, i int) (string, error) {
	f.mu.Lock()
	if i < 0 || i >= len(f.drivers) {
		f.mu.Unlock()
		return "", fmt.Errorf("%w: driver %d", ErrNoSuchCard, i)
	}
	text := f.drivers[i].licenseComposite()
	f.mu.Unlock()
	return text, f.copy(ctx, text)
}

// CopyVIN copies the normalized VIN of vehicle card i.
func (f *Form) CopyVIN(ctx context.Context, i int) (string, error) {
	f.mu.Lock()
	if i < 0 || i >= len(f.vehicles) {
		f.mu.Unlock()
		return "", fmt.Errorf("%w: vehicle %d", ErrNoSuchCard, i)
	}
	text := intake.NormalizeVIN(f.vehicles[i].vin)
	f.mu.Unlock()
	return text, f.copy(ctx, text)
}

func (f *Form) copy(ctx context.Context, text string) error {
	if text == "" {
		return ErrNothingToCopy
	}
	if f.clipboard == nil {
		return nil
	}
	return f.clipboard.WriteText(ctx, text)
}

// DecoderURL returns the public decoder page for vehicle card i.
func (f *Form) DecoderURL(i int) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= len(f.vehicles) {
		return "", false, fmt.Errorf("%w: vehicle %d", ErrNoSuchCard, i)
	}
	u, ok := vin.DecoderPageURL(f.vehicles[i].vin)
	return u, ok, nil
}
