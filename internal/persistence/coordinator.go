package persistence

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/cache"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/events"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/files"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/logger"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/metrics"
)

const (
	DefaultDebounce = 150 * time.Millisecond
	cacheTimeout    = 5 * time.Second
)

// Form is the editing surface the coordinator reads from and loads into.
type Form interface {
	Snapshot() intake.Document
	Apply(doc intake.Document)
}

// Export is a document rendered for download.
type Export struct {
	Filename string
	Data     []byte
}

// Coordinator owns the association between the working document and a file
// handle, the debounced write to the durable cache and the status line.
//
// User actions (new, open, save, save as, import, download) run one at a time.
// Edits may arrive concurrently with them through Touch.
type Coordinator struct {
	form       Form
	store      cache.Store
	picker     files.Picker
	downloader files.Downloader
	events     events.Publisher
	clock      clockwork.Clock
	debounce   *Debouncer
	delay      time.Duration
	log        *logger.Entry

	ops sync.Mutex

	mu        sync.Mutex
	handle    files.Handle
	status    Status
	buffer    string
	listeners []func(Status)
}

type Option func(*Coordinator)

func WithClock(c clockwork.Clock) Option { return func(co *Coordinator) { co.clock = c } }

func WithDebounce(d time.Duration) Option { return func(co *Coordinator) { co.delay = d } }

func WithDownloader(d files.Downloader) Option { return func(co *Coordinator) { co.downloader = d } }

func WithEvents(p events.Publisher) Option { return func(co *Coordinator) { co.events = p } }

// New creates a coordinator in the unbound state. A nil picker means the host
// has no file system access.
func New(form Form, store cache.Store, picker files.Picker, opts ...Option) *Coordinator {
	c := &Coordinator{
		form:   form,
		store:  store,
		picker: picker,
		events: events.Nop{},
		clock:  clockwork.NewRealClock(),
		delay:  DefaultDebounce,
		log:    logger.With("cmp", "persistence"),
	}
	for _, o := range opts {
		o(c)
	}
	if c.picker == nil {
		c.picker = files.Unsupported{}
	}
	c.debounce = NewDebouncer(c.clock, c.delay)
	c.status = Status{Phase: PhasePersisted, Text: TextPersisted, UpdatedAt: c.clock.Now().UTC()}
	if !c.picker.Supported() {
		c.status.Hint = HintLimitedHost
		c.status.Text = TextLimitedHost
	}
	return c
}

// Handle returns the bound handle, if any.
func (c *Coordinator) Handle() (files.Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle, !c.handle.IsZero()
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Subscribe registers fn to receive every status change.
func (c *Coordinator) Subscribe(fn func(Status)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Coordinator) Buffer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer
}

func (c *Coordinator) SetBuffer(text string) {
	c.mu.Lock()
	c.buffer = text
	c.mu.Unlock()
}

// SuggestedFilename is the name Save As and Download offer for the current document.
func (c *Coordinator) SuggestedFilename() string {
	return intake.SuggestedFilename(c.form.Snapshot(), c.clock.Now())
}

// Touch records an edit: the status shows text right away and a cache write
// of the then-current document is scheduled after the quiet period.
func (c *Coordinator) Touch(text string, typing bool) {
	c.updateStatus(func(s *Status) {
		s.Phase = phaseFor(typing)
		s.Text = text
	})
	c.debounce.Schedule(c.autosave)
}

// Flush writes a pending autosave immediately. It reports whether one was pending.
func (c *Coordinator) Flush() bool {
	return c.debounce.Flush()
}

func (c *Coordinator) autosave() {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	doc := c.form.Snapshot()
	if err := c.store.Save(ctx, doc); err != nil {
		metrics.AutosaveWrites.WithLabelValues(metrics.ResultError).Inc()
		c.log.Warnf("autosave failed: %v", err)
		c.updateStatus(func(s *Status) { s.Text = TextCacheFailed })
		return
	}
	metrics.AutosaveWrites.WithLabelValues(metrics.ResultOK).Inc()
	c.updateStatus(func(s *Status) {
		s.Phase = PhasePersisted
		s.Text = persistedText(s.Hint)
	})
	c.publish(ctx, events.Autosaved, doc)
}

func persistedText(hint string) string {
	if hint != "" {
		return TextLimitedHost
	}
	return TextPersisted
}

// Restore loads the cached draft into the form. Without a usable draft the
// current form is scheduled for caching instead.
func (c *Coordinator) Restore(ctx context.Context) Outcome {
	c.ops.Lock()
	defer c.ops.Unlock()

	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()
	doc, err := c.store.Load(ctx)
	if err != nil {
		c.log.Warnf("could not read cached draft: %v", err)
	}
	if doc == nil {
		c.Touch(persistedText(c.Status().Hint), false)
		return Outcome{}
	}
	c.form.Apply(*doc)
	c.Touch(TextLoaded, false)
	c.log.Infof("restored cached draft for %q", doc.Customer.Name)
	return Outcome{Message: MsgRestored}
}

// NewIntake replaces the document with a blank one and unbinds the handle.
func (c *Coordinator) NewIntake(ctx context.Context) Outcome {
	c.ops.Lock()
	defer c.ops.Unlock()

	blank := intake.NewBlank(c.clock.Now())
	c.bind(files.Handle{})
	c.form.Apply(blank)
	c.Touch(TextLoaded, false)
	c.publish(ctx, events.New, blank)
	return Outcome{Message: MsgNewIntake}
}

// Save writes to the bound handle, or behaves as SaveAs when unbound.
func (c *Coordinator) Save(ctx context.Context) (Outcome, error) {
	c.ops.Lock()
	defer c.ops.Unlock()

	if !c.picker.Supported() {
		metrics.FileOps.WithLabelValues("save", metrics.ResultInvalid).Inc()
		return Outcome{Message: MsgSaveUnsupported}, ErrUnsupportedCapability
	}
	h, bound := c.Handle()
	if !bound {
		return c.saveAs(ctx, "save")
	}
	doc := c.form.Snapshot()
	if err := c.picker.WriteTo(ctx, h, doc); err != nil {
		return c.failed("save", MsgSaveFailed, err)
	}
	metrics.FileOps.WithLabelValues("save", metrics.ResultOK).Inc()
	c.log.Infof("saved to %s", h.Name)
	c.publish(ctx, events.Saved, doc)
	return Outcome{Message: MsgSaved}, nil
}

// SaveAs always asks for a destination. The handle is rebound only after the
// write succeeds.
func (c *Coordinator) SaveAs(ctx context.Context) (Outcome, error) {
	c.ops.Lock()
	defer c.ops.Unlock()

	if !c.picker.Supported() {
		metrics.FileOps.WithLabelValues("save_as", metrics.ResultInvalid).Inc()
		return Outcome{Message: MsgSaveUnsupported}, ErrUnsupportedCapability
	}
	return c.saveAs(ctx, "save_as")
}

func (c *Coordinator) saveAs(ctx context.Context, op string) (Outcome, error) {
	doc := c.form.Snapshot()
	h, err := c.picker.PickAndCreate(ctx, intake.SuggestedFilename(doc, c.clock.Now()))
	if err != nil {
		return c.failed(op, MsgSaveFailed, err)
	}
	if err := c.picker.WriteTo(ctx, h, doc); err != nil {
		return c.failed(op, MsgSaveFailed, err)
	}
	c.bind(h)
	metrics.FileOps.WithLabelValues(op, metrics.ResultOK).Inc()
	c.log.Infof("saved as %s", h.Name)
	c.publish(ctx, events.Saved, doc)
	return Outcome{Message: MsgSaved}, nil
}

// Open loads a user-chosen file and binds its handle.
func (c *Coordinator) Open(ctx context.Context) (Outcome, error) {
	c.ops.Lock()
	defer c.ops.Unlock()

	if !c.picker.Supported() {
		metrics.FileOps.WithLabelValues("open", metrics.ResultInvalid).Inc()
		return Outcome{Message: MsgOpenUnsupported}, ErrUnsupportedCapability
	}
	h, doc, err := c.picker.PickAndOpen(ctx)
	if err != nil {
		return c.failed("open", MsgOpenFailed, err)
	}
	c.bind(h)
	if doc != nil {
		c.form.Apply(*doc)
		c.Touch(TextLoaded, false)
	}
	metrics.FileOps.WithLabelValues("open", metrics.ResultOK).Inc()
	c.log.Infof("opened %s", h.Name)
	c.publish(ctx, events.Opened, c.form.Snapshot())
	return Outcome{Message: MsgOpened}, nil
}

// Import parses raw and loads it. The handle is dropped even when raw is
// valid JSON that is not an object.
func (c *Coordinator) Import(ctx context.Context, raw string) (Outcome, error) {
	c.ops.Lock()
	defer c.ops.Unlock()

	raw = strings.TrimSpace(raw)
	if raw == "" {
		metrics.FileOps.WithLabelValues("import", metrics.ResultInvalid).Inc()
		return Outcome{Message: MsgEmptyImport}, ErrEmptyImport
	}
	doc, ok, err := intake.Parse([]byte(raw))
	if err != nil {
		return c.failed("import", MsgInvalidJSON, err)
	}
	c.bind(files.Handle{})
	if ok {
		c.form.Apply(doc)
		c.Touch(TextLoaded, false)
	}
	metrics.FileOps.WithLabelValues("import", metrics.ResultOK).Inc()
	c.publish(ctx, events.Imported, c.form.Snapshot())
	return Outcome{Message: MsgImported}, nil
}

// ImportBuffer imports the current JSON buffer.
func (c *Coordinator) ImportBuffer(ctx context.Context) (Outcome, error) {
	return c.Import(ctx, c.Buffer())
}

// Download exports the document as pretty JSON, copies it into the buffer and
// hands it to the downloader when one is configured. Handle state is untouched.
func (c *Coordinator) Download(ctx context.Context) (Export, Outcome, error) {
	c.ops.Lock()
	defer c.ops.Unlock()

	doc := c.form.Snapshot()
	data, err := intake.EncodePretty(doc)
	if err != nil {
		out, err := c.failed("download", MsgDownloadFailed, err)
		return Export{}, out, err
	}
	exp := Export{Filename: intake.SuggestedFilename(doc, c.clock.Now()), Data: data}
	c.SetBuffer(string(data))
	if c.downloader != nil {
		if err := c.downloader.Download(ctx, exp.Filename, data); err != nil {
			out, err := c.failed("download", MsgDownloadFailed, err)
			return exp, out, err
		}
	}
	metrics.FileOps.WithLabelValues("download", metrics.ResultOK).Inc()
	c.publish(ctx, events.Downloaded, doc)
	return exp, Outcome{Message: MsgDownloaded}, nil
}

// failed maps an action error to its outcome. Cancellation is silent and
// returns no error.
func (c *Coordinator) failed(op, msg string, err error) (Outcome, error) {
	switch {
	case errors.Is(err, ErrUserCancelled):
		metrics.FileOps.WithLabelValues(op, metrics.ResultCancelled).Inc()
		c.log.Debugf("%s cancelled", op)
		return Outcome{Cancelled: true}, nil
	case errors.Is(err, ErrParseFailure):
		metrics.FileOps.WithLabelValues(op, metrics.ResultInvalid).Inc()
		c.log.Warnf("%s: %v", op, err)
		return Outcome{Message: MsgInvalidJSON}, err
	case errors.Is(err, ErrUnsupportedCapability):
		metrics.FileOps.WithLabelValues(op, metrics.ResultInvalid).Inc()
		return Outcome{Message: MsgSaveUnsupported}, err
	default:
		metrics.FileOps.WithLabelValues(op, metrics.ResultError).Inc()
		c.log.Errorf("%s: %v", op, err)
		if !errors.Is(err, ErrIOFailure) {
			err = &files.IOError{Op: op, Err: err}
		}
		return Outcome{Message: msg}, err
	}
}

func (c *Coordinator) bind(h files.Handle) {
	c.updateStatus(func(s *Status) { s.Handle = h.Name })
	c.mu.Lock()
	c.handle = h
	c.mu.Unlock()
}

func (c *Coordinator) updateStatus(fn func(*Status)) {
	c.mu.Lock()
	fn(&c.status)
	c.status.UpdatedAt = c.clock.Now().UTC()
	s := c.status
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()
	for _, l := range listeners {
		l(s)
	}
}

func (c *Coordinator) publish(ctx context.Context, t events.Type, doc intake.Document) {
	h, _ := c.Handle()
	e := events.Event{Type: t, Handle: h.Name, Customer: doc.Customer.Name, At: c.clock.Now().UTC()}
	if err := c.events.Publish(ctx, e); err != nil {
		c.log.Warnf("publish %s event: %v", t, err)
	}
}
