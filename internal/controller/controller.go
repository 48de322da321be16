package controller

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinefav/internal/models"
	"github.com/desertthunder/cinefav/internal/services"
	"github.com/desertthunder/cinefav/internal/shared"
)

// User-facing messages.
const (
	MsgRequired     = "All fields are required!"
	MsgAdded        = "Movie added successfully!"
	MsgUpdated      = "Movie updated successfully!"
	MsgAddFailed    = "Failed to add movie"
	MsgAddError     = "Error adding movie"
	MsgUpdateFailed = "Failed to update movie"
	MsgUpdateError  = "Error updating movie"
	MsgDeleteFailed = "Failed to delete movie"
	MsgDeleteError  = "Error deleting movie"
	MsgNotAnImage   = "Please choose an image file"
)

// Options configures a [Controller].
type Options struct {
	Catalog           services.Catalog
	Logger            *log.Logger
	Clock             func() time.Time
	ToastLifetime     time.Duration
	PageSize          int
	RefreshAfterWrite bool
}

// Op is network work issued by the controller. Run it anywhere; hand the result to [Controller.Apply].
type Op struct {
	Kind    OpKind
	ID      int // target record for updates and deletes
	session uint64
	load    uint64
	run     func(ctx context.Context) ([]models.Movie, error)
}

// Run performs the request. It reads no controller state.
func (o *Op) Run(ctx context.Context) Outcome {
	movies, err := o.run(ctx)
	return Outcome{op: o, Movies: movies, Err: err}
}

// Outcome is the result of a finished [Op].
type Outcome struct {
	op     *Op
	Movies []models.Movie
	Err    error
}

// Kind returns the kind of the op that produced the outcome.
func (o Outcome) Kind() OpKind { return o.op.Kind }

// Controller owns the record collection and the modal workflows that change it.
//
// All methods must be called from a single goroutine. Ops may run elsewhere.
type Controller struct {
	catalog services.Catalog
	logger  *log.Logger
	refresh bool

	movies  []models.Movie
	loaded  bool
	loading bool
	loadErr error
	loadGen uint64

	modal      Modal
	form       models.Movie
	pending    *models.Image
	submitting bool
	session    uint64

	toast    *toaster
	alert    string
	detached bool
	table    *Table
}

// New builds a controller with an empty collection and no dialog open.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		catalog: opts.Catalog,
		logger:  logger,
		refresh: opts.RefreshAfterWrite,
		toast:   newToaster(opts.ToastLifetime, opts.Clock),
		table:   NewTable(opts.PageSize),
	}
}

// Movies returns the collection in the order the service sent it.
func (c *Controller) Movies() []models.Movie { return c.movies }

// Find returns the record with id.
func (c *Controller) Find(id int) (models.Movie, bool) {
	for _, m := range c.movies {
		if m.ID == id {
			return m, true
		}
	}
	return models.Movie{}, false
}

func (c *Controller) Loaded() bool     { return c.loaded }
func (c *Controller) Loading() bool    { return c.loading }
func (c *Controller) LoadError() error { return c.loadErr }
func (c *Controller) Modal() Modal     { return c.modal }
func (c *Controller) Submitting() bool { return c.submitting }
func (c *Controller) Table() *Table    { return c.table }

// View applies the table view state to the collection.
func (c *Controller) View() View { return c.table.View(c.movies) }

// Load issues a list request. A newer Load supersedes any older one still in flight.
func (c *Controller) Load() *Op {
	c.loadGen++
	c.loading = true
	catalog := c.catalog
	return &Op{Kind: OpLoad, load: c.loadGen, run: func(ctx context.Context) ([]models.Movie, error) {
		return catalog.List(ctx)
	}}
}

// OpenAdd opens the form with a blank record.
func (c *Controller) OpenAdd() error {
	if err := c.enter(formModal(ModeNew)); err != nil {
		return err
	}
	c.form = models.Movie{}
	return nil
}

// OpenEdit opens the form with a copy of rec.
func (c *Controller) OpenEdit(rec models.Movie) error {
	if err := c.enter(formModal(ModeEdit)); err != nil {
		return err
	}
	c.form = rec
	return nil
}

// OpenDelete asks for confirmation before deleting id. Nothing is sent yet.
func (c *Controller) OpenDelete(id int) error {
	return c.enter(deleteModal(id))
}

// OpenView shows rec read-only.
func (c *Controller) OpenView(rec models.Movie) error {
	return c.enter(viewModal(rec))
}

// Close dismisses the active dialog. Responses for requests it issued are ignored from now on.
func (c *Controller) Close() error {
	if !c.modal.Active() {
		return shared.ErrNoModal
	}
	c.reset()
	return nil
}

func (c *Controller) enter(m Modal) error {
	if c.modal.Active() {
		return fmt.Errorf("%w: %s is open", shared.ErrModalActive, c.modal.Kind)
	}
	c.reset()
	c.modal = m
	return nil
}

func (c *Controller) reset() {
	c.session++
	c.modal = Modal{}
	c.form = models.Movie{}
	c.pending = nil
	c.submitting = false
}

// Form returns the record being edited.
func (c *Controller) Form() models.Movie { return c.form }

// Pending returns the image attached since the form opened, or nil.
func (c *Controller) Pending() *models.Image { return c.pending }

// SetField edits one form field. Duration input that is not an integer becomes 0.
func (c *Controller) SetField(name, value string) error {
	if c.modal.Kind != ModalForm {
		return shared.ErrNoModal
	}
	if name == models.FieldID {
		return fmt.Errorf("%w: id is read-only", shared.ErrInvalidInput)
	}
	if err := c.form.Set(name, value); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	return nil
}

// AttachImage sets the pending upload and previews it in the form.
func (c *Controller) AttachImage(img models.Image) error {
	if c.modal.Kind != ModalForm {
		return shared.ErrNoModal
	}
	if !img.IsImage() {
		c.toast.show(MsgNotAnImage, ToastError)
		return fmt.Errorf("%w: %s is %s", shared.ErrInvalidInput, img.Name, img.ContentType)
	}
	c.pending = &img
	c.form.Image = img.DataURL()
	return nil
}

// Submit validates the form and returns a create or update op.
//
// On a validation failure it shows the required-fields toast and returns no op.
func (c *Controller) Submit() (*Op, error) {
	if c.modal.Kind != ModalForm {
		return nil, shared.ErrNoModal
	}
	if c.submitting {
		return nil, shared.ErrBusy
	}

	mode := c.modal.Mode
	if len(c.form.MissingFields()) > 0 || (mode == ModeNew && c.pending == nil) {
		c.toast.show(MsgRequired, ToastError)
		return nil, fmt.Errorf("%w: %s", shared.ErrInvalidInput, MsgRequired)
	}

	c.submitting = true
	catalog, movie := c.catalog, c.form
	var image *models.Image
	if c.pending != nil {
		img := *c.pending
		image = &img
	}

	if mode == ModeNew {
		return &Op{Kind: OpCreate, session: c.session, run: func(ctx context.Context) ([]models.Movie, error) {
			return nil, catalog.Create(ctx, movie, *image)
		}}, nil
	}
	return &Op{Kind: OpUpdate, ID: movie.ID, session: c.session, run: func(ctx context.Context) ([]models.Movie, error) {
		return nil, catalog.Update(ctx, movie, image)
	}}, nil
}

// ConfirmDelete returns the delete op for the record awaiting confirmation.
func (c *Controller) ConfirmDelete() (*Op, error) {
	if c.modal.Kind != ModalDelete {
		return nil, shared.ErrNoModal
	}
	if c.submitting {
		return nil, shared.ErrBusy
	}

	c.submitting = true
	c.alert = ""
	catalog, id := c.catalog, c.modal.TargetID
	return &Op{Kind: OpDelete, ID: id, session: c.session, run: func(ctx context.Context) ([]models.Movie, error) {
		return nil, catalog.Delete(ctx, id)
	}}, nil
}

// Apply reconciles a finished op into state and returns a follow-up op, if any.
//
// Outcomes are dropped once the controller is detached, when a newer Load was issued, or when the dialog that
// issued a write has since closed.
func (c *Controller) Apply(o Outcome) *Op {
	if c.detached || o.op == nil {
		return nil
	}

	switch o.op.Kind {
	case OpLoad:
		return c.applyLoad(o)
	case OpCreate, OpUpdate:
		if o.op.session != c.session {
			c.logger.Debug("dropping stale outcome", "op", o.op.Kind)
			return nil
		}
		return c.applyWrite(o)
	case OpDelete:
		if o.op.session != c.session {
			c.logger.Debug("dropping stale outcome", "op", o.op.Kind)
			return nil
		}
		c.applyDelete(o)
	}
	return nil
}

func (c *Controller) applyLoad(o Outcome) *Op {
	if o.op.load != c.loadGen {
		c.logger.Debug("dropping superseded load", "gen", o.op.load, "current", c.loadGen)
		return nil
	}
	c.loading = false

	if o.Err != nil {
		c.loadErr = o.Err
		c.logger.Error("failed to load movies", "err", o.Err)
		return nil
	}

	c.loadErr = nil
	c.loaded = true
	c.movies = o.Movies
	if c.movies == nil {
		c.movies = []models.Movie{}
	}
	c.logger.Debug("loaded movies", "count", len(c.movies))
	return nil
}

func (c *Controller) applyWrite(o Outcome) *Op {
	create := o.op.Kind == OpCreate
	c.submitting = false

	if o.Err != nil {
		failed, errored := MsgUpdateFailed, MsgUpdateError
		if create {
			failed, errored = MsgAddFailed, MsgAddError
		}
		c.toast.show(failureMessage(o.Err, failed, errored), ToastError)
		c.logger.Warn("write failed", "op", o.op.Kind, "err", o.Err)
		return nil
	}

	c.reset()
	if create {
		c.toast.show(MsgAdded, ToastSuccess)
	} else {
		c.toast.show(MsgUpdated, ToastSuccess)
	}

	if c.refresh {
		return c.Load()
	}
	return nil
}

func (c *Controller) applyDelete(o Outcome) {
	c.submitting = false

	if o.Err != nil {
		if _, ok := services.IsRejection(o.Err); ok {
			c.alert = MsgDeleteFailed
		} else {
			c.alert = MsgDeleteError
		}
		c.logger.Warn("delete failed", "id", o.op.ID, "err", o.Err)
		return
	}

	kept := c.movies[:0:0]
	for _, m := range c.movies {
		if m.ID != o.op.ID {
			kept = append(kept, m)
		}
	}
	c.movies = kept
	c.reset()
}

// failureMessage prefers the service's own message, then the rejection fallback, then the transport fallback.
func failureMessage(err error, rejected, transport string) string {
	if apiErr, ok := services.IsRejection(err); ok {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return rejected
	}
	return transport
}

// Toast returns the visible toast.
func (c *Controller) Toast() (Toast, bool) { return c.toast.visible() }

// ExpireToast clears the toast with generation gen. It reports whether anything was cleared.
func (c *Controller) ExpireToast(gen uint64) bool { return c.toast.expire(gen) }

// ToastLifetime is how long a toast stays visible.
func (c *Controller) ToastLifetime() time.Duration { return c.toast.lifetime }

// Alert returns the blocking notification awaiting dismissal.
func (c *Controller) Alert() (string, bool) { return c.alert, c.alert != "" }

// DismissAlert clears the blocking notification.
func (c *Controller) DismissAlert() { c.alert = "" }

// Detach marks the controller as gone. Every later outcome is ignored.
func (c *Controller) Detach() { c.detached = true }

// Detached reports whether Detach was called.
func (c *Controller) Detached() bool { return c.detached }

// Drive runs op and any follow-ups inline, applying each outcome. It returns the first op's error.
func (c *Controller) Drive(ctx context.Context, op *Op) error {
	var first error
	for i := 0; op != nil; i++ {
		out := op.Run(ctx)
		if i == 0 {
			first = out.Err
		}
		op = c.Apply(out)
	}
	return first
}

