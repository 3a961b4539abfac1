package reconciler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/vin"
)

// fakeDecoder answers from a map and counts calls; gate, when set, blocks
// Decode until a value is received for that VIN.
type fakeDecoder struct {
	mu      sync.Mutex
	answers map[string]vin.Result
	calls   []string
	gate    map[string]chan struct{}
}

func (d *fakeDecoder) Decode(ctx context.Context, v string) vin.Result {
	d.mu.Lock()
	d.calls = append(d.calls, v)
	g := d.gate[v]
	d.mu.Unlock()
	if g != nil {
		<-g
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.answers[v]; ok {
		return r
	}
	return vin.Result{OK: false, Text: vin.MsgNetworkError}
}

func (d *fakeDecoder) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

type recordingClipboard struct{ texts []string }

func (c *recordingClipboard) WriteText(_ context.Context, text string) error {
	c.texts = append(c.texts, text)
	return nil
}

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestForm(d vin.Decoder, opts ...Option) *Form {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewForm(d, opts...)
}

func TestNewFormIsBlankIntake(t *testing.T) {
	f := newTestForm(&fakeDecoder{})
	require.Equal(t, intake.NewBlank(fixedNow), f.Snapshot())
}

func TestCountChangesPreserveEnteredData(t *testing.T) {
	for _, tc := range []struct{ from, to int }{{1, 3}, {3, 1}, {4, 0}, {0, 2}, {2, 2}, {5, 10}} {
		f := newTestForm(&fakeDecoder{})
		f.RenderDriversFromSnapshot(tc.from)
		f.RenderVehiclesFromSnapshot(tc.from)
		for i := 0; i < tc.from; i++ {
			require.NoError(t, f.SetDriverField(i, "name", "driver"+string(rune('A'+i))))
			require.NoError(t, f.SetDriverField(i, "licenseState", "TX"))
			require.NoError(t, f.SetVehicleVIN(i, "vin"+string(rune('a'+i))))
		}

		f.SetDriverCount(tc.to)
		f.SetVehicleCount(tc.to)

		doc := f.Snapshot()
		require.Len(t, doc.Drivers, tc.to)
		require.Len(t, doc.Vehicles, tc.to)
		require.Equal(t, intake.Counts{Drivers: tc.to, Vehicles: tc.to}, doc.Counts)
		for i := 0; i < tc.to; i++ {
			if i < tc.from {
				assert.Equal(t, "driver"+string(rune('A'+i)), doc.Drivers[i].Name)
				assert.Equal(t, "TX", doc.Drivers[i].LicenseState)
				assert.Equal(t, "VIN"+string(rune('A'+i)), doc.Vehicles[i].VIN)
			} else {
				assert.Equal(t, intake.DriverEntry{}, doc.Drivers[i])
				assert.Equal(t, intake.BlankVehicle(), doc.Vehicles[i])
			}
		}
	}
}

func TestRenderFromDataSeedsAndPads(t *testing.T) {
	f := newTestForm(&fakeDecoder{})
	require.NoError(t, f.SetDriverField(0, "name", "on screen"))

	f.RenderDriversFromData(3, []intake.DriverEntry{{Name: "seeded"}})
	doc := f.Snapshot()
	require.Equal(t, []intake.DriverEntry{{Name: "seeded"}, {}, {}}, doc.Drivers)

	f.RenderDriversFromData(1, nil)
	require.Equal(t, []intake.DriverEntry{{}}, f.Snapshot().Drivers)

	f.RenderVehiclesFromData(1, []intake.VehicleEntry{{VIN: "abc-1", Decoded: ""}})
	require.Equal(t, []intake.VehicleEntry{{VIN: "ABC1", Decoded: intake.DecodedPlaceholder}}, f.Snapshot().Vehicles)
}

func TestApplySnapshotRoundTrip(t *testing.T) {
	f := newTestForm(&fakeDecoder{})
	require.NoError(t, f.SetCustomerField("name", "Jane"))
	require.NoError(t, f.SetCustomerField("email", "jane@example.com"))
	f.SetDriverCount(2)
	require.NoError(t, f.SetDriverField(1, "dob", "1990-04-01"))
	require.NoError(t, f.SetVehicleVIN(0, "1hgcm82633a123456 "))

	first := f.Snapshot()
	f.Apply(first)
	second := f.Snapshot()
	require.Equal(t, first, second)

	f.Apply(second)
	require.Equal(t, second, f.Snapshot())
}

func TestApplyCountsAreAuthoritative(t *testing.T) {
	f := newTestForm(&fakeDecoder{})
	f.Apply(intake.Document{
		Counts:   intake.Counts{Drivers: 1, Vehicles: 2},
		Drivers:  []intake.DriverEntry{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		Vehicles: []intake.VehicleEntry{{VIN: "x", Decoded: "2001 X Y"}},
	})
	doc := f.Snapshot()
	require.Equal(t, []intake.DriverEntry{{Name: "a"}}, doc.Drivers)
	require.Equal(t, []intake.VehicleEntry{{VIN: "X", Decoded: "2001 X Y"}, intake.BlankVehicle()}, doc.Vehicles)
}

func TestSnapshotNormalizesVINButViewKeepsTyping(t *testing.T) {
	f := newTestForm(&fakeDecoder{})
	require.NoError(t, f.SetVehicleVIN(0, "1hg-cm8"))
	require.Equal(t, "1hg-cm8", f.View().Vehicles[0].VIN)
	require.Equal(t, "1HGCM8", f.Snapshot().Vehicles[0].VIN)
}

func TestDecodeVehicle(t *testing.T) {
	d := &fakeDecoder{answers: map[string]vin.Result{
		"1HGCM82633A123456": {OK: true, Text: "2003 HONDA Accord"},
	}}
	f := newTestForm(d)
	var changes []Change
	f.OnChange(func(c Change) { changes = append(changes, c) })

	require.NoError(t, f.SetVehicleVIN(0, "1hgcm82633a123456 "))
	res, err := f.DecodeVehicle(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, "2003 HONDA Accord", res.Text)

	snap := f.Snapshot()
	require.Equal(t, intake.VehicleEntry{VIN: "1HGCM82633A123456", Decoded: "2003 HONDA Accord"}, snap.Vehicles[0])
	require.Equal(t, "1HGCM82633A123456", f.View().Vehicles[0].VIN)
	require.Equal(t, []Change{{Status: StatusTyping, Typing: true}, {Status: StatusDecoded}}, changes)
}

func TestDecodeShortVINSkipsLookup(t *testing.T) {
	d := &fakeDecoder{}
	f := newTestForm(d)
	changed := 0
	f.OnChange(func(Change) { changed++ })
	require.NoError(t, f.SetVehicleVIN(0, "1HGCM82633A12345"))

	res, err := f.DecodeVehicle(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, vin.Result{OK: false, Text: vin.MsgBadLength}, res)
	require.Zero(t, d.callCount())
	require.Equal(t, vin.MsgBadLength, f.Snapshot().Vehicles[0].Decoded)
	require.Equal(t, 2, changed)
}

func TestDecodePendingIndicatorAndIndependentCards(t *testing.T) {
	const vinA, vinB = "AAAAAAAAAAAAAAAAA", "BBBBBBBBBBBBBBBBB"
	d := &fakeDecoder{
		answers: map[string]vin.Result{vinA: {OK: true, Text: "A car"}, vinB: {OK: true, Text: "B car"}},
		gate:    map[string]chan struct{}{vinA: make(chan struct{}), vinB: make(chan struct{})},
	}
	f := newTestForm(d)
	f.SetVehicleCount(2)
	require.NoError(t, f.SetVehicleVIN(0, vinA))
	require.NoError(t, f.SetVehicleVIN(1, vinB))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = f.DecodeVehicle(context.Background(), i)
		}(i)
	}
	require.Eventually(t, func() bool { return d.callCount() == 2 }, time.Second, 5*time.Millisecond)

	view := f.View()
	require.True(t, view.Vehicles[0].Pending)
	require.Equal(t, vin.MsgPending, view.Vehicles[0].Decoded)

	// B finishes first; A is still pending and unaffected.
	close(d.gate[vinB])
	require.Eventually(t, func() bool { return f.Snapshot().Vehicles[1].Decoded == "B car" }, time.Second, 5*time.Millisecond)
	require.Equal(t, vin.MsgPending, f.Snapshot().Vehicles[0].Decoded)

	close(d.gate[vinA])
	wg.Wait()
	snap := f.Snapshot()
	require.Equal(t, "A car", snap.Vehicles[0].Decoded)
	require.Equal(t, "B car", snap.Vehicles[1].Decoded)
}

func TestDecodeSurvivesCountChangeButNotReload(t *testing.T) {
	const v = "AAAAAAAAAAAAAAAAA"
	d := &fakeDecoder{
		answers: map[string]vin.Result{v: {OK: true, Text: "A car"}},
		gate:    map[string]chan struct{}{v: make(chan struct{})},
	}
	f := newTestForm(d)
	require.NoError(t, f.SetVehicleVIN(0, v))
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.DecodeVehicle(context.Background(), 0)
	}()
	require.Eventually(t, func() bool { return d.callCount() == 1 }, time.Second, 5*time.Millisecond)

	f.SetVehicleCount(2)
	close(d.gate[v])
	<-done
	require.Equal(t, "A car", f.Snapshot().Vehicles[0].Decoded)

	// second decode, then a load replaces the cards before it completes
	d.gate[v] = make(chan struct{})
	done = make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.DecodeVehicle(context.Background(), 0)
	}()
	require.Eventually(t, func() bool { return d.callCount() == 2 }, time.Second, 5*time.Millisecond)
	f.Apply(intake.NewBlank(fixedNow))
	close(d.gate[v])
	<-done
	require.Equal(t, intake.BlankVehicle(), f.Snapshot().Vehicles[0])
}

func TestBlurDecodesOnlyAfterChange(t *testing.T) {
	d := &fakeDecoder{answers: map[string]vin.Result{"1HGCM82633A123456": {OK: true, Text: "2003 HONDA Accord"}}}
	f := newTestForm(d)
	ctx := context.Background()

	_, decoded, err := f.BlurVehicle(ctx, 0)
	require.NoError(t, err)
	require.False(t, decoded)

	require.NoError(t, f.SetVehicleVIN(0, "1HGCM82633A1234"))
	_, decoded, err = f.BlurVehicle(ctx, 0)
	require.NoError(t, err)
	require.False(t, decoded)
	require.Zero(t, d.callCount())

	require.NoError(t, f.SetVehicleVIN(0, "1HGCM82633A123456"))
	res, decoded, err := f.BlurVehicle(ctx, 0)
	require.NoError(t, err)
	require.True(t, decoded)
	require.Equal(t, "2003 HONDA Accord", res.Text)

	_, decoded, err = f.BlurVehicle(ctx, 0)
	require.NoError(t, err)
	require.False(t, decoded)
	require.Equal(t, 1, d.callCount())
}

func TestCopyActions(t *testing.T) {
	clip := &recordingClipboard{}
	f := newTestForm(&fakeDecoder{}, WithClipboard(clip))
	ctx := context.Background()

	_, err := f.CopyLicense(ctx, 0)
	require.True(t, errors.Is(err, ErrNothingToCopy))

	require.NoError(t, f.SetDriverField(0, "license", "D1234567"))
	text, err := f.CopyLicense(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "D1234567", text)

	require.NoError(t, f.SetDriverField(0, "licenseState", "CA"))
	text, err = f.CopyLicense(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "CA D1234567", text)

	require.NoError(t, f.SetVehicleVIN(0, "ab c"))
	text, err = f.CopyVIN(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "ABC", text)

	require.Equal(t, []string{"D1234567", "CA D1234567", "ABC"}, clip.texts)
	// copying never changes the document
	require.Equal(t, "ab c", f.View().Vehicles[0].VIN)
}

func TestFieldErrors(t *testing.T) {
	f := newTestForm(&fakeDecoder{})
	require.True(t, errors.Is(f.SetDriverField(3, "name", "x"), ErrNoSuchCard))
	require.True(t, errors.Is(f.SetDriverField(0, "ssn", "x"), ErrUnknownField))
	require.True(t, errors.Is(f.SetCustomerField("fax", "x"), ErrUnknownField))
	require.True(t, errors.Is(f.SetVehicleVIN(-1, "x"), ErrNoSuchCard))
	_, err := f.DecodeVehicle(context.Background(), 9)
	require.True(t, errors.Is(err, ErrNoSuchCard))
}

func TestDecoderURL(t *testing.T) {
	f := newTestForm(&fakeDecoder{})
	_, ok, err := f.DecoderURL(0)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, f.SetVehicleVIN(0, "1hgcm82633a123456"))
	u, ok, err := f.DecoderURL(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, u, "VIN=1HGCM82633A123456")
}

func TestLicenseStates(t *testing.T) {
	require.Len(t, LicenseStates, 51)
	require.True(t, IsLicenseState(""))
	require.True(t, IsLicenseState("DC"))
	require.False(t, IsLicenseState("ZZ"))
}

func TestRenderClampsOversizedCounts(t *testing.T) {
	f := newTestForm(&fakeDecoder{})
	f.Apply(intake.Document{Counts: intake.Counts{Drivers: 1 << 40, Vehicles: 1 << 50}})
	doc := f.Snapshot()
	require.Len(t, doc.Drivers, MaxCount)
	require.Len(t, doc.Vehicles, MaxCount)

	f.SetDriverCount(1 << 40)
	f.RenderVehiclesFromData(1<<40, nil)
	doc = f.Snapshot()
	require.Equal(t, intake.Counts{Drivers: MaxCount, Vehicles: MaxCount}, doc.Counts)
	require.Len(t, doc.Drivers, MaxCount)
}
