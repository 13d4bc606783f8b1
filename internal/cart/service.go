package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"upahar/internal/menu"
	"upahar/internal/metrics"
	"upahar/internal/pricing"
)

const (
	DefaultCacheSize      = 1024
	DefaultPersistTimeout = 5 * time.Second
)

var ErrEmptyCart = errors.New("cart is empty")

// Session identifies whose cart a request works on. A user id wins over a
// guest id: signed-in sessions always use the remote store.
type Session struct {
	GuestID string
	UserID  string
}

func GuestSession(guestID string) Session { return Session{GuestID: guestID} }
func UserSession(userID string) Session   { return Session{UserID: userID} }

func (s Session) IsUser() bool { return s.UserID != "" }

func (s Session) valid() bool { return s.UserID != "" || s.GuestID != "" }

func (s Session) owner() string {
	if s.IsUser() {
		return s.UserID
	}
	return s.GuestID
}

func (s Session) key() string {
	if s.IsUser() {
		return "user:" + s.UserID
	}
	return "guest:" + s.GuestID
}

func (s Session) store() string {
	if s.IsUser() {
		return "user"
	}
	return "guest"
}

type SyncState string

const (
	SyncSynced   SyncState = "synced"
	SyncDiverged SyncState = "diverged"
)

// SyncStatus reports whether the persisted copy matches the cart. A diverged
// cart keeps its local contents and is rewritten in full on the next change.
type SyncStatus struct {
	State SyncState `json:"state"`
	Error string    `json:"error,omitempty"`
}

// View is what the storefront renders for a cart.
type View struct {
	Lines     []Line         `json:"lines"`
	ItemCount int            `json:"item_count"`
	Totals    pricing.Totals `json:"totals"`
	Sync      SyncStatus     `json:"sync"`
}

// Catalog is the part of the menu service the cart reads from.
type Catalog interface {
	Get(ctx context.Context, id string) (*menu.MenuItem, error)
}

type entry struct {
	mu     sync.Mutex
	sess   Session
	loaded bool
	cart   *Cart
	sync   SyncStatus

	refs  int         // requests holding or waiting on mu; guarded by Service.mu
	dirty atomic.Bool // true while the cart holds changes the store has not taken
}

type Config struct {
	CacheSize      int
	PersistTimeout time.Duration
	Calculator     *pricing.Calculator
	Metrics        *metrics.Metrics
}

// Service owns the hydrated carts of active sessions.
type Service struct {
	catalog Catalog
	guests  Persister
	users   Persister
	calc    *pricing.Calculator
	timeout time.Duration
	metrics *metrics.Metrics

	// mu guards carts, pinned and every entry's refs. Entries pushed out of
	// the LRU while in use or diverged move to pinned until they are safe to drop.
	mu     sync.Mutex
	carts  *lru.Cache[string, *entry]
	pinned map[string]*entry
}

func NewService(catalog Catalog, guests, users Persister, cfg Config) (*Service, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = DefaultPersistTimeout
	}
	if cfg.Calculator == nil {
		cfg.Calculator = pricing.Default()
	}

	s := &Service{
		catalog: catalog,
		guests:  guests,
		users:   users,
		calc:    cfg.Calculator,
		timeout: cfg.PersistTimeout,
		metrics: cfg.Metrics,
		pinned:  make(map[string]*entry),
	}

	carts, err := lru.NewWithEvict[string, *entry](cfg.CacheSize, s.onEvict)
	if err != nil {
		return nil, fmt.Errorf("cart cache: %w", err)
	}
	s.carts = carts
	return s, nil
}

// --------------------------------------------------
// READS
// --------------------------------------------------
func (s *Service) Get(ctx context.Context, sess Session) (View, error) {
	e, err := s.acquire(ctx, sess)
	if err != nil {
		return View{}, err
	}
	defer s.release(e)

	return s.view(e), nil
}

func (s *Service) Totals(ctx context.Context, sess Session) (pricing.Totals, error) {
	e, err := s.acquire(ctx, sess)
	if err != nil {
		return pricing.Totals{}, err
	}
	defer s.release(e)

	return s.calc.Totals(e.cart.PricingItems()), nil
}

// --------------------------------------------------
// MUTATIONS (local first, then persisted)
// --------------------------------------------------
func (s *Service) Add(ctx context.Context, sess Session, menuItemID string, quantity int) (View, error) {
	if quantity < 1 {
		return View{}, ErrInvalidQuantity
	}

	item, err := s.catalog.Get(ctx, menuItemID)
	if err != nil {
		return View{}, err
	}
	if !item.Available {
		return View{}, ErrItemUnavailable
	}

	e, err := s.acquire(ctx, sess)
	if err != nil {
		return View{}, err
	}
	defer s.release(e)

	line, err := e.cart.Add(*item, quantity)
	if err != nil {
		return View{}, err
	}

	s.persist(ctx, sess, e, "add", &Change{Kind: ChangeUpsert, Line: line})
	return s.view(e), nil
}

func (s *Service) SetQuantity(ctx context.Context, sess Session, lineID string, quantity int) (View, error) {
	e, err := s.acquire(ctx, sess)
	if err != nil {
		return View{}, err
	}
	defer s.release(e)

	var change *Change
	changed := e.cart.SetQuantity(lineID, quantity)
	if l, ok := e.cart.Line(lineID); ok {
		change = &Change{Kind: ChangeUpsert, Line: l}
	} else if changed {
		change = &Change{Kind: ChangeDelete, LineID: lineID}
	}

	s.persist(ctx, sess, e, "set_quantity", change)
	return s.view(e), nil
}

func (s *Service) Remove(ctx context.Context, sess Session, lineID string) (View, error) {
	e, err := s.acquire(ctx, sess)
	if err != nil {
		return View{}, err
	}
	defer s.release(e)

	var change *Change
	if e.cart.Remove(lineID) {
		change = &Change{Kind: ChangeDelete, LineID: lineID}
	}

	s.persist(ctx, sess, e, "remove", change)
	return s.view(e), nil
}

func (s *Service) Clear(ctx context.Context, sess Session) (View, error) {
	e, err := s.acquire(ctx, sess)
	if err != nil {
		return View{}, err
	}
	defer s.release(e)

	e.cart.Clear()
	s.persist(ctx, sess, e, "clear", &Change{Kind: ChangeClear})
	return s.view(e), nil
}

// Sync rewrites the persisted cart from the in-memory one.
func (s *Service) Sync(ctx context.Context, sess Session) (View, error) {
	e, err := s.acquire(ctx, sess)
	if err != nil {
		return View{}, err
	}
	defer s.release(e)

	s.persist(ctx, sess, e, "sync", &Change{Kind: ChangeReplace})
	return s.view(e), nil
}

// Checkout hands the cart's lines and totals to place while the cart is
// locked. The cart is cleared only if place succeeds. Lines whose dish was
// deleted or switched off are removed first and reported in an
// *UnavailableError without placing anything.
func (s *Service) Checkout(
	ctx context.Context,
	sess Session,
	place func(lines []Line, totals pricing.Totals) error,
) error {
	e, err := s.acquire(ctx, sess)
	if err != nil {
		return err
	}
	defer s.release(e)

	if e.cart.IsEmpty() {
		return ErrEmptyCart
	}

	removed, err := s.dropUnavailable(ctx, sess, e)
	if err != nil {
		return err
	}
	if len(removed) > 0 {
		return &UnavailableError{Names: removed}
	}

	if err := place(e.cart.Lines(), s.calc.Totals(e.cart.PricingItems())); err != nil {
		return err
	}

	e.cart.Clear()
	s.persist(ctx, sess, e, "checkout", &Change{Kind: ChangeClear})
	return nil
}

// --------------------------------------------------
// SESSION BOUNDARY
// --------------------------------------------------

// LoginResult describes what happened to the guest cart at sign-in.
type LoginResult struct {
	DroppedLines int  `json:"dropped_lines"`
	Hydrated     bool `json:"hydrated"`
}

// Login switches a guest to their account cart. Guest lines are not merged:
// the guest cart is discarded and the account cart is reloaded.
func (s *Service) Login(ctx context.Context, guestID, userID string) (LoginResult, error) {
	var res LoginResult

	if guestID != "" {
		guest := GuestSession(guestID)
		e, err := s.acquire(ctx, guest)
		if err == nil {
			res.DroppedLines = e.cart.Len()
			if res.DroppedLines > 0 {
				slog.Info("dropping guest cart at login",
					"guest_id", guestID, "user_id", userID, "lines", res.DroppedLines)
			}
			e.cart.Clear()
			s.persist(ctx, guest, e, "login_drop", &Change{Kind: ChangeClear})
			s.release(e)
		} else {
			slog.Warn("guest cart unavailable at login", "guest_id", guestID, "error", err)
		}
		s.evict(guest)
	}

	user := UserSession(userID)
	s.evict(user)

	e, err := s.acquire(ctx, user)
	if err != nil {
		return res, err
	}
	s.release(e)

	res.Hydrated = true
	return res, nil
}

// Logout forgets the user's in-memory cart. The persisted copy is kept.
func (s *Service) Logout(userID string) {
	s.evict(UserSession(userID))
}

// ReconcileDiverged rewrites every held cart whose last write failed,
// cached or pinned, and returns how many are back in sync.
func (s *Service) ReconcileDiverged(ctx context.Context) int {
	s.mu.Lock()
	var held []*entry
	for _, k := range s.carts.Keys() {
		if e, ok := s.carts.Peek(k); ok && e.dirty.Load() {
			held = append(held, e)
		}
	}
	for _, e := range s.pinned {
		if e.dirty.Load() {
			held = append(held, e)
		}
	}
	for _, e := range held {
		e.refs++
	}
	s.mu.Unlock()

	synced := 0
	for _, e := range held {
		e.mu.Lock()
		if e.loaded && e.sync.State == SyncDiverged {
			s.persist(ctx, e.sess, e, "reconcile", &Change{Kind: ChangeReplace})
			if e.sync.State == SyncSynced {
				synced++
			}
		}
		s.release(e)
	}
	return synced
}

// --------------------------------------------------
// internals
// --------------------------------------------------

// acquire returns the session's entry locked and hydrated. Callers hand it
// back with release.
func (s *Service) acquire(ctx context.Context, sess Session) (*entry, error) {
	if !sess.valid() {
		return nil, ErrNoSession
	}

	e := s.hold(sess)
	e.mu.Lock()
	if !e.loaded {
		lines, err := s.persister(sess).Load(ctx, sess.owner())
		if err != nil {
			s.release(e)
			return nil, fmt.Errorf("load cart: %w", err)
		}
		e.cart = New(lines...)
		e.sync = SyncStatus{State: SyncSynced}
		e.loaded = true
	}
	return e, nil
}

// hold finds or creates the session's entry and counts the caller in. An
// entry waiting in pinned goes back into the LRU, so every request for a
// session shares one entry and one lock.
func (s *Service) hold(sess Session) *entry {
	key := sess.key()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts.Get(key)
	if !ok {
		if e, ok = s.pinned[key]; ok {
			delete(s.pinned, key)
		} else {
			e = &entry{sess: sess}
		}
		s.carts.Add(key, e)
	}
	e.refs++
	s.metrics.SetCartsCached(s.carts.Len())
	return e
}

func (s *Service) release(e *entry) {
	e.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	e.refs--
	if e.refs > 0 || e.dirty.Load() {
		return
	}
	key := e.sess.key()
	if s.pinned[key] == e {
		delete(s.pinned, key)
	}
}

// onEvict runs under s.mu for every entry leaving the LRU, whether pushed
// out by size or removed by evict.
func (s *Service) onEvict(key string, e *entry) {
	if e.refs > 0 || e.dirty.Load() {
		s.pinned[key] = e
	}
}

// evict drops the session's cached cart. A diverged or busy cart is kept
// in pinned, so unsaved lines survive until the store takes them.
func (s *Service) evict(sess Session) {
	s.mu.Lock()
	s.carts.Remove(sess.key())
	s.metrics.SetCartsCached(s.carts.Len())
	s.mu.Unlock()
}

// dropUnavailable re-reads every line from the catalog and removes the ones
// whose dish is gone or switched off. It returns their names.
func (s *Service) dropUnavailable(ctx context.Context, sess Session, e *entry) ([]string, error) {
	var removed []string
	for _, l := range e.cart.Lines() {
		item, err := s.catalog.Get(ctx, l.ID)
		switch {
		case errors.Is(err, menu.ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("check menu item %s: %w", l.ID, err)
		case item.Available:
			continue
		}

		e.cart.Remove(l.ID)
		removed = append(removed, l.Item.Name)
		s.persist(ctx, sess, e, "drop_unavailable", &Change{Kind: ChangeDelete, LineID: l.ID})
	}
	return removed, nil
}

func (s *Service) persister(sess Session) Persister {
	if sess.IsUser() {
		return s.users
	}
	return s.guests
}

// persist writes change for a locked entry. A nil change means the cart did
// not move; a diverged cart is still rewritten in that case.
func (s *Service) persist(ctx context.Context, sess Session, e *entry, op string, change *Change) {
	if change == nil {
		if e.sync.State != SyncDiverged {
			return
		}
		change = &Change{Kind: ChangeReplace}
	}
	if e.sync.State == SyncDiverged {
		change = &Change{Kind: ChangeReplace}
	}
	change.Snapshot = e.cart.Lines()

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	s.metrics.CartMutation(op, sess.store())

	if err := s.persister(sess).Apply(pctx, sess.owner(), *change); err != nil {
		s.metrics.CartSyncFailure(sess.store())
		slog.Warn("cart write failed, keeping local state",
			"store", sess.store(), "owner", sess.owner(), "change", change.Kind, "error", err)
		e.sync = SyncStatus{State: SyncDiverged, Error: err.Error()}
		e.dirty.Store(true)
		return
	}

	if e.sync.State == SyncDiverged {
		slog.Info("cart reconciled", "store", sess.store(), "owner", sess.owner())
	}
	e.sync = SyncStatus{State: SyncSynced}
	e.dirty.Store(false)
}

func (s *Service) view(e *entry) View {
	return View{
		Lines:     e.cart.Lines(),
		ItemCount: e.cart.TotalItemCount(),
		Totals:    s.calc.Totals(e.cart.PricingItems()),
		Sync:      e.sync,
	}
}
