package directory

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Source supplies the raw user collection.
type Source interface {
	FetchUsers(ctx context.Context) ([]RawUser, error)
}

// Phase is what the directory should currently present.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseError
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	default:
		return "ready"
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for load lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCompare sets the sort key comparison. The default is OrdinalCompare.
func WithCompare(cmp CompareFunc) Option {
	return func(c *Controller) {
		if cmp != nil {
			c.compare = cmp
		}
	}
}

// Controller owns the record set, the search term and the sort criteria, and
// keeps the displayed subset in step with them. It is driven from a single
// goroutine; only LoadTicket.Run is meant to execute elsewhere.
type Controller struct {
	source  Source
	logger  *zap.Logger
	compare CompareFunc

	// ctx is cancelled by Close; late load results are dropped after that.
	ctx    context.Context
	cancel context.CancelFunc

	users      []User
	displayed  []User
	loading    bool
	errMsg     string
	searchTerm string
	sortColumn SortColumn
	sortDir    SortDirection

	generation uint64
}

// NewController creates a controller in the loading state with an empty
// record set, an empty search term and no sort column.
func NewController(src Source, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		source:    src,
		logger:    zap.NewNop(),
		compare:   OrdinalCompare,
		ctx:       ctx,
		cancel:    cancel,
		users:     []User{},
		displayed: []User{},
		loading:   true,
		sortDir:   Ascending,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadTicket identifies one load cycle.
type LoadTicket struct {
	Generation uint64
	ID         string

	ctx    context.Context
	source Source
	logger *zap.Logger
}

// LoadResult is the outcome of LoadTicket.Run, applied with Controller.Complete.
type LoadResult struct {
	Generation uint64
	ID         string
	Users      []User
	Err        error
}

// StartLoad marks the controller as loading and returns a ticket for a new
// load cycle. Any earlier ticket becomes stale.
func (c *Controller) StartLoad() LoadTicket {
	c.generation++
	c.loading = true
	c.errMsg = ""

	t := LoadTicket{
		Generation: c.generation,
		ID:         uuid.NewString(),
		ctx:        c.ctx,
		source:     c.source,
	}
	t.logger = c.logger.With(zap.String("load_id", t.ID), zap.Uint64("generation", t.Generation))
	t.logger.Debug("load started")
	return t
}

// Run fetches and normalizes the collection. It touches no controller state
// and may run on any goroutine. The request is cancelled when either ctx or
// the owning controller is done.
func (t LoadTicket) Run(ctx context.Context) LoadResult {
	res := LoadResult{Generation: t.Generation, ID: t.ID}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(t.ctx, cancel)
	defer stop()

	raw, err := t.source.FetchUsers(runCtx)
	if err != nil {
		res.Err = err
		return res
	}
	res.Users = NormalizeAll(raw)
	return res
}

// Complete applies a load result. It returns false when the result was
// dropped because the controller is closed or a newer load has started.
func (c *Controller) Complete(res LoadResult) bool {
	log := c.logger.With(zap.String("load_id", res.ID), zap.Uint64("generation", res.Generation))
	if c.ctx.Err() != nil {
		log.Debug("load result dropped: controller closed")
		return false
	}
	if res.Generation != c.generation {
		log.Debug("load result dropped: superseded", zap.Uint64("current", c.generation))
		return false
	}
	defer func() { c.loading = false }()

	if res.Err != nil {
		c.errMsg = res.Err.Error()
		log.Warn("load failed", zap.Error(res.Err))
		return true
	}

	if dup, ok := firstDuplicateID(res.Users); ok {
		log.Warn("duplicate user id in payload", zap.Int("id", dup))
	}
	c.users = res.Users
	c.errMsg = ""
	c.recompute()
	log.Debug("load complete", zap.Int("users", len(c.users)))
	return true
}

// Load runs a full load cycle synchronously. The loading flag is cleared on
// every exit path. The returned error is the fetch error, if any.
func (c *Controller) Load(ctx context.Context) error {
	t := c.StartLoad()
	defer func() {
		if c.generation == t.Generation {
			c.loading = false
		}
	}()
	res := t.Run(ctx)
	c.Complete(res)
	return res.Err
}

// Close releases the controller. In-flight loads are cancelled and their
// results ignored. Close is idempotent.
func (c *Controller) Close() {
	c.cancel()
}

// SetSearchTerm stores term verbatim and re-derives the displayed subset.
func (c *Controller) SetSearchTerm(term string) {
	c.searchTerm = term
	c.recompute()
}

// SetSortColumn sorts by col. Selecting the current column toggles the
// direction; selecting another column resets it to ascending. SortNone
// clears sorting.
func (c *Controller) SetSortColumn(col SortColumn) {
	switch {
	case col == SortNone:
		c.sortColumn = SortNone
		c.sortDir = Ascending
	case col == c.sortColumn:
		c.sortDir = c.sortDir.Toggle()
	default:
		c.sortColumn = col
		c.sortDir = Ascending
	}
	c.recompute()
}

func (c *Controller) recompute() {
	c.displayed = ComputeDisplayedSetWith(c.users, c.searchTerm, c.sortColumn, c.sortDir, c.compare)
}

// Phase reports what should be presented: loading takes precedence over an
// error, an error over the record grid.
func (c *Controller) Phase() Phase {
	switch {
	case c.loading:
		return PhaseLoading
	case c.errMsg != "":
		return PhaseError
	default:
		return PhaseReady
	}
}

// Displayed returns a copy of the current displayed subset.
func (c *Controller) Displayed() []User { return slices.Clone(c.displayed) }

// Users returns a copy of the full record set.
func (c *Controller) Users() []User { return slices.Clone(c.users) }

func (c *Controller) Loading() bool { return c.loading }
func (c *Controller) Err() string { return c.errMsg }
func (c *Controller) SearchTerm() string { return c.searchTerm }
func (c *Controller) SortColumn() SortColumn { return c.sortColumn }
func (c *Controller) SortDirection() SortDirection { return c.sortDir }

func firstDuplicateID(users []User) (int, bool) {
	seen := make(map[int]struct{}, len(users))
	for _, u := range users {
		if _, ok := seen[u.ID]; ok {
			return u.ID, true
		}
		seen[u.ID] = struct{}{}
	}
	return 0, false
}
