package intake

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// ErrParseFailure matches every error returned by Parse for malformed input.
var ErrParseFailure = errors.New("intake: malformed JSON")

// ParseError wraps the decoder error for malformed JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("intake: malformed JSON: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }
func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailure
}

// ErrInvalidDocument matches errors for well-formed JSON that cannot be
// loaded as an intake.
var ErrInvalidDocument = errors.New("intake: invalid document")

// InvalidError names the field that made a document unloadable. It also
// matches ErrParseFailure, so callers report it like malformed input.
type InvalidError struct {
	Field  string
	Reason string
}

func (e *InvalidError) Error() string { return fmt.Sprintf("intake: invalid %s: %s", e.Field, e.Reason) }
func (e *InvalidError) Is(target error) bool {
	return target == ErrInvalidDocument || target == ErrParseFailure
}

// rawDocument keeps each section undecoded so one malformed section cannot
// take the others down with it.
type rawDocument struct {
	Customer interface{}   `json:"customer"`
	Counts   interface{}   `json:"counts"`
	Drivers  []interface{} `json:"drivers"`
	Vehicles []interface{} `json:"vehicles"`
	Meta     interface{}   `json:"meta"`
}

// Parse decodes raw JSON into a Document. Syntax errors return a *ParseError;
// counts that are not numbers or exceed MaxCount return an *InvalidError.
// Valid JSON that is not an object returns ok=false and no error; callers
// treat it as "nothing to apply". Field values are decoded leniently: numbers
// and strings convert into each other, and sections or entries with the wrong
// shape fall back to their zero value.
func Parse(raw []byte) (doc Document, ok bool, err error) {
	var top interface{}
	if err := json.Unmarshal(raw, &top); err != nil {
		return Document{}, false, &ParseError{Err: err}
	}
	obj, isObj := top.(map[string]interface{})
	if !isObj {
		return Document{}, false, nil
	}

	var rd rawDocument
	// shape errors on drivers/vehicles (e.g. an object instead of a list) leave them nil
	_ = weakDecode(obj, &rd)

	_ = weakDecode(rd.Customer, &doc.Customer)
	if err := decodeCounts(rd.Counts, &doc.Counts); err != nil {
		return Document{}, false, err
	}
	_ = weakDecode(rd.Meta, &doc.Meta)

	for _, item := range rd.Drivers {
		var d DriverEntry
		_ = weakDecode(item, &d)
		doc.Drivers = append(doc.Drivers, d)
	}
	for _, item := range rd.Vehicles {
		var v VehicleEntry
		_ = weakDecode(item, &v)
		doc.Vehicles = append(doc.Vehicles, v)
	}
	return doc.Normalize(), true, nil
}

// decodeCounts rejects counts that are not numbers or exceed MaxCount.
// Negative counts become zero.
func decodeCounts(input interface{}, out *Counts) error {
	m, isMap := input.(map[string]interface{})
	if !isMap {
		return nil
	}
	var rc struct {
		Drivers  float64 `json:"drivers"`
		Vehicles float64 `json:"vehicles"`
	}
	if err := weakDecode(m, &rc); err != nil {
		return &InvalidError{Field: "counts", Reason: "not a number"}
	}
	if rc.Drivers > MaxCount {
		return &InvalidError{Field: "counts.drivers", Reason: fmt.Sprintf("must be at most %d", MaxCount)}
	}
	if rc.Vehicles > MaxCount {
		return &InvalidError{Field: "counts.vehicles", Reason: fmt.Sprintf("must be at most %d", MaxCount)}
	}
	out.Drivers = int(max(rc.Drivers, 0))
	out.Vehicles = int(max(rc.Vehicles, 0))
	return nil
}

func weakDecode(input interface{}, out interface{}) error {
	if input == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       lenientTimeHook,
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

var timeType = reflect.TypeOf(time.Time{})

// lenientTimeHook turns timestamp strings into time.Time and anything
// unparseable into the zero time.
func lenientTimeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != timeType {
		return data, nil
	}
	s, ok := data.(string)
	if !ok {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, nil
}

// Encode returns the compact JSON form used by the durable cache.
func Encode(doc Document) ([]byte, error) {
	return encode(doc, "")
}

// EncodePretty returns the two-space indented form used for files, downloads
// and the JSON buffer.
func EncodePretty(doc Document) ([]byte, error) {
	return encode(doc, "  ")
}

func encode(doc Document, indent string) ([]byte, error) {
	if doc.Drivers == nil {
		doc.Drivers = []DriverEntry{}
	}
	if doc.Vehicles == nil {
		doc.Vehicles = []VehicleEntry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode intake: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
