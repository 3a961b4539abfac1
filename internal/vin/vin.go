package vin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/time/rate"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/logger"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/metrics"
)

// Messages shown in a vehicle card's decoded field.
const (
	MsgPending      = "Decoding..."
	MsgBadLength    = "VIN must be 17 characters"
	MsgNetworkError = "Network error decoding VIN"
	MsgPartial      = "Decoded (partial)"
)

const decoderPageURL = "https://vpic.nhtsa.dot.gov/decoder/Decoder"

// Result is the outcome of one decode. Text is always fit for display.
type Result struct {
	OK   bool   `json:"ok"`
	Text string `json:"text"`
}

// Decoder resolves a VIN into a "Year Make Model" description.
type Decoder interface {
	Decode(ctx context.Context, vin string) Result
}

// Client talks to the NHTSA vPIC DecodeVinValuesExtended endpoint. One
// request per call, no retries; every failure becomes a Result.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *logger.Entry
}

// NewClient builds a vPIC client. rps <= 0 disables outbound throttling.
func NewClient(baseURL string, timeout time.Duration, rps float64) *Client {
	lim := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: lim,
		log:     logger.With("cmp", "vin.vpic"),
	}
}

// vpicResult holds the fields of the first entry of "Results". Numbers are
// accepted where strings are expected.
type vpicResult struct {
	ModelYear string `mapstructure:"ModelYear"`
	Make      string `mapstructure:"Make"`
	Model     string `mapstructure:"Model"`
}

func (c *Client) Decode(ctx context.Context, raw string) Result {
	v := intake.NormalizeVIN(raw)
	if len(v) != intake.VINLength {
		metrics.VINDecodes.WithLabelValues(metrics.ResultInvalid).Inc()
		return Result{OK: false, Text: MsgBadLength}
	}

	start := time.Now()
	text, err := c.fetch(ctx, v)
	if err != nil {
		c.log.Warnf("decode %s failed after %dms: %v", v, time.Since(start).Milliseconds(), err)
		metrics.VINDecodes.WithLabelValues(metrics.ResultError).Inc()
		return Result{OK: false, Text: MsgNetworkError}
	}
	c.log.Debugf("decode %s ok in %dms", v, time.Since(start).Milliseconds())
	metrics.VINDecodes.WithLabelValues(metrics.ResultOK).Inc()
	if text == "" {
		text = MsgPartial
	}
	return Result{OK: true, Text: text}
}

func (c *Client) fetch(ctx context.Context, v string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("throttle: %w", err)
	}
	endpoint := fmt.Sprintf("%s/DecodeVinValuesExtended/%s?format=json", c.baseURL, url.PathEscape(v))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var body interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return describe(body), nil
}

// describe builds "Year Make Model" from a vPIC body. A body of any other
// shape describes nothing, which the caller shows as a partial decode.
func describe(body interface{}) string {
	top, _ := body.(map[string]interface{})
	results, _ := top["Results"].([]interface{})
	if len(results) == 0 {
		return ""
	}
	var r vpicResult
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{WeaklyTypedInput: true, Result: &r})
	if err != nil {
		return ""
	}
	// fields that decoded are kept even when a sibling has the wrong type
	_ = dec.Decode(results[0])
	return strings.TrimSpace(strings.Join([]string{r.ModelYear, r.Make, r.Model}, " "))
}

// DecoderPageURL returns the public vPIC decoder page for a VIN, or false
// when the VIN is not decodable.
func DecoderPageURL(raw string) (string, bool) {
	v := intake.NormalizeVIN(raw)
	if len(v) != intake.VINLength {
		return "", false
	}
	return decoderPageURL + "?VIN=" + url.QueryEscape(v), true
}
