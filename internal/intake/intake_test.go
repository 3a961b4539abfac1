package intake

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeVIN(t *testing.T) {
	require.Equal(t, "1HGCM82633A123456", NormalizeVIN("1hgcm82633a123456 "))
	require.Equal(t, "1HGCM82633A123456", NormalizeVIN(" 1hg-cm8 2633a.123456"))
	require.Equal(t, "", NormalizeVIN("  -- "))
	require.True(t, IsDecodableVIN("1hgcm82633a123456 "))
	require.False(t, IsDecodableVIN("1HGCM82633A12345"))
}

func TestSuggestedFilename(t *testing.T) {
	now := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	cases := map[string]string{
		"":                   "intake_2026-03-09.json",
		"   ":                "intake_2026-03-09.json",
		"Jane Doe":           "Jane Doe_2026-03-09.json",
		"  O'Brien & Sons! ": "OBrien  Sons_2026-03-09.json",
		"!!!":                "intake_2026-03-09.json",
		"ACME-co_2":          "ACME-co_2_2026-03-09.json",
	}
	for name, want := range cases {
		doc := Document{Customer: Customer{Name: name}}
		require.Equal(t, want, SuggestedFilename(doc, now), "name %q", name)
	}
}

func TestNewBlank(t *testing.T) {
	now := time.Now()
	doc := NewBlank(now)
	require.Equal(t, Customer{}, doc.Customer)
	require.Equal(t, Counts{Drivers: 1, Vehicles: 1}, doc.Counts)
	require.Equal(t, []DriverEntry{{}}, doc.Drivers)
	require.Equal(t, []VehicleEntry{{VIN: "", Decoded: "—"}}, doc.Vehicles)
	require.Equal(t, 1, doc.Meta.Version)
}

func TestParseMalformed(t *testing.T) {
	_, _, err := Parse([]byte(`{"customer":`))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrParseFailure))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
}

func TestParseNonObjectIsNoop(t *testing.T) {
	for _, raw := range []string{`42`, `"text"`, `[1,2]`, `null`} {
		_, ok, err := Parse([]byte(raw))
		require.NoError(t, err, raw)
		require.False(t, ok, raw)
	}
}

func TestParseLenient(t *testing.T) {
	raw := `{
		"customer": {"name": "Jane", "phone": 5551234},
		"counts": {"drivers": "2", "vehicles": -3},
		"drivers": [{"name": "A", "license": 998877}, "garbage"],
		"vehicles": [{"vin": "1hgcm82633a123456 ", "decoded": ""}],
		"meta": {"version": 1, "updatedAt": "2026-01-02T03:04:05.000Z"}
	}`
	doc, ok, err := Parse([]byte(raw))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Jane", doc.Customer.Name)
	require.Equal(t, "5551234", doc.Customer.Phone)
	require.Equal(t, 2, doc.Counts.Drivers)
	require.Equal(t, 0, doc.Counts.Vehicles)
	require.Equal(t, []DriverEntry{{Name: "A", License: "998877"}, {}}, doc.Drivers)
	require.Equal(t, "1HGCM82633A123456", doc.Vehicles[0].VIN)
	require.Equal(t, DecodedPlaceholder, doc.Vehicles[0].Decoded)
	require.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), doc.Meta.UpdatedAt)
}

func TestParseWrongSectionShapes(t *testing.T) {
	doc, ok, err := Parse([]byte(`{"customer":"nope","counts":{"drivers":1},"meta":{"updatedAt":12}}`))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Customer{}, doc.Customer)
	require.Equal(t, 1, doc.Counts.Drivers)
	require.True(t, doc.Meta.UpdatedAt.IsZero())
	require.Equal(t, SchemaVersion, doc.Meta.Version)
}

func TestEncodePrettyShape(t *testing.T) {
	doc := NewBlank(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	doc.Customer.Name = "<Jane & Co>"
	out, err := EncodePretty(doc)
	require.NoError(t, err)
	require.Contains(t, string(out), "\n  \"customer\": {\n    \"name\": \"<Jane & Co>\"")
	require.NotEqual(t, byte('\n'), out[len(out)-1])

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &generic))
	require.Contains(t, generic, "meta")

	back, ok, err := Parse(out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, doc, back)
}

func TestEncodeEmptyArrays(t *testing.T) {
	out, err := Encode(Document{})
	require.NoError(t, err)
	require.Contains(t, string(out), `"drivers":[]`)
	require.Contains(t, string(out), `"vehicles":[]`)
}

func TestParseRejectsUnloadableCounts(t *testing.T) {
	for _, raw := range []string{
		`{"customer":{"name":"Mallory"},"counts":{"drivers":1e15}}`,
		`{"counts":{"drivers":1,"vehicles":11}}`,
		`{"counts":{"drivers":50000000}}`,
		`{"counts":{"drivers":"abc"}}`,
	} {
		doc, ok, err := Parse([]byte(raw))
		require.Error(t, err, raw)
		require.True(t, errors.Is(err, ErrInvalidDocument), raw)
		require.True(t, errors.Is(err, ErrParseFailure), raw)
		require.False(t, ok, raw)
		require.Equal(t, Document{}, doc, raw)
	}

	var ie *InvalidError
	_, _, err := Parse([]byte(`{"counts":{"drivers":1,"vehicles":12}}`))
	require.True(t, errors.As(err, &ie))
	require.Equal(t, "counts.vehicles", ie.Field)
}

func TestParseAcceptsMaxCount(t *testing.T) {
	doc, ok, err := Parse([]byte(`{"counts":{"drivers":10,"vehicles":"10"}}`))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Counts{Drivers: MaxCount, Vehicles: MaxCount}, doc.Counts)
}

func TestNormalizeClampsCounts(t *testing.T) {
	doc := Document{Counts: Counts{Drivers: 1 << 40, Vehicles: -2}}.Normalize()
	require.Equal(t, Counts{Drivers: MaxCount, Vehicles: 0}, doc.Counts)
}
