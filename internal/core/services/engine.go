package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/ports"
)

// EngineOptions tunes a page engine
type EngineOptions struct {
	Placement    domain.Placement
	SaveDebounce time.Duration
	Logger       *slog.Logger
}

// Engine is the overlay tool for one page. It owns the page's overlay set
// and panel chrome, applies user intents to the selected overlay, and
// snapshots the result after every mutation.
//
// An Engine has a single mutator: front ends must not call it from more
// than one goroutine at a time.
type Engine struct {
	key       string
	set       *domain.OverlaySet
	chrome    domain.PanelChrome
	snapshots *SnapshotService
	persister *Persister
	logger    *slog.Logger
	closed    bool
}

// OpenEngine builds the engine for key and restores any saved state
func OpenEngine(ctx context.Context, key string, snapshots *SnapshotService, opts EngineOptions) (*Engine, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: empty key", domain.ErrInvalidPage)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("page", key)

	placement := opts.Placement
	if placement == (domain.Placement{}) {
		placement = domain.DefaultPlacement()
	}

	e := &Engine{
		key:       key,
		set:       domain.NewOverlaySet(placement),
		snapshots: snapshots,
		persister: NewPersister(snapshots, key, opts.SaveDebounce, logger),
		logger:    logger,
	}

	if snap, ok := snapshots.Load(ctx, key); ok {
		set, chrome, skipped := snap.Restore(placement)
		e.set = set
		e.chrome = chrome
		if skipped > 0 {
			logger.Warn("skipped unreadable overlays in snapshot", "count", skipped)
		}
		logger.Debug("restored page state", "overlays", set.Len())
	}

	return e, nil
}

// SetIDGenerator swaps the overlay id source
func (e *Engine) SetIDGenerator(fn func() string) {
	e.set.SetIDGenerator(fn)
}

func (e *Engine) Key() string { return e.key }

// -----------------------------------------------------------------------------
// Read side
// -----------------------------------------------------------------------------

// List returns the overlays in creation order
func (e *Engine) List() []domain.Overlay {
	return e.set.List()
}

func (e *Engine) Len() int {
	return e.set.Len()
}

// Selected returns the selected overlay
func (e *Engine) Selected() (domain.Overlay, bool) {
	return e.set.Selected()
}

func (e *Engine) SelectedID() string {
	return e.set.SelectedID()
}

func (e *Engine) Get(id string) (domain.Overlay, bool) {
	return e.set.Get(id)
}

// Find resolves an id, id prefix or display name
func (e *Engine) Find(query string) (domain.Overlay, error) {
	return e.set.Find(query)
}

func (e *Engine) AspectLocked() bool {
	return e.set.AspectLocked()
}

func (e *Engine) Chrome() domain.PanelChrome {
	return e.chrome
}

// Snapshot returns the durable form of the current state
func (e *Engine) Snapshot() domain.Snapshot {
	return domain.TakeSnapshot(e.set, e.chrome)
}

// -----------------------------------------------------------------------------
// Registry intents
// -----------------------------------------------------------------------------

// Add creates and selects a new overlay
func (e *Engine) Add(imageRef, displayName string) (domain.Overlay, error) {
	if err := e.checkOpen(); err != nil {
		return domain.Overlay{}, err
	}

	o, err := e.set.Add(imageRef, displayName)
	if err != nil {
		return domain.Overlay{}, fmt.Errorf("failed to add overlay: %w", err)
	}
	e.commit("add", "overlay", o.ID())
	return o, nil
}

// Remove deletes the overlay with id. Unknown ids are ignored.
func (e *Engine) Remove(id string) {
	if e.closed || !e.set.Remove(id) {
		return
	}
	e.commit("remove", "overlay", id)
}

// RemoveSelected deletes the selected overlay
func (e *Engine) RemoveSelected() (domain.Overlay, error) {
	if err := e.checkOpen(); err != nil {
		return domain.Overlay{}, err
	}

	removed, ok := e.set.RemoveSelected()
	if !ok {
		return domain.Overlay{}, domain.ErrNoSelection
	}
	e.commit("remove", "overlay", removed.ID())
	return removed, nil
}

// Select makes id the selection. Unknown ids are ignored.
func (e *Engine) Select(id string) bool {
	if e.closed || !e.set.Select(id) {
		return false
	}
	e.commit("select", "overlay", id)
	return true
}

// ClearSelection deselects everything
func (e *Engine) ClearSelection() {
	if e.closed || e.set.SelectedID() == "" {
		return
	}
	e.set.ClearSelection()
	e.commit("deselect")
}

// ResetAll removes every overlay. Callers confirm with the user first.
func (e *Engine) ResetAll() {
	if e.closed {
		return
	}
	count := e.set.Len()
	e.set.ResetAll()
	e.commit("reset", "removed", count)
}

// -----------------------------------------------------------------------------
// Transform intents
// -----------------------------------------------------------------------------

// Move shifts the selected overlay by (dx, dy) pixels
func (e *Engine) Move(dx, dy int) error {
	return e.mutate("move", func(o *domain.Overlay) { o.MoveBy(dx, dy) })
}

func (e *Engine) SetOpacity(v int) error {
	return e.mutate("opacity", func(o *domain.Overlay) { o.SetOpacity(v) })
}

func (e *Engine) SetRotation(deg int) error {
	return e.mutate("rotation", func(o *domain.Overlay) { o.SetRotation(deg) })
}

// RotateBy adds delta degrees, wrapping into [0,360)
func (e *Engine) RotateBy(delta int) error {
	return e.mutate("rotate", func(o *domain.Overlay) { o.RotateBy(delta) })
}

func (e *Engine) Flip(axis domain.Axis) error {
	return e.mutate("flip", func(o *domain.Overlay) { o.Flip(axis) })
}

func (e *Engine) SetScale(v float64) error {
	if !domain.IsFinite(v) {
		return domain.ErrInvalidNumber
	}
	return e.mutate("scale", func(o *domain.Overlay) { o.SetScale(v) })
}

func (e *Engine) ScaleBy(delta float64) error {
	if !domain.IsFinite(delta) {
		return domain.ErrInvalidNumber
	}
	return e.mutate("scale", func(o *domain.Overlay) { o.ScaleBy(delta) })
}

// SetWidth rescales the selected overlay so its rendered width is w.
// Scale is uniform, so the height follows whether or not the aspect ratio
// is locked. Nothing happens while the natural width is unknown.
func (e *Engine) SetWidth(w int) error {
	return e.resizeTo("width", w, func(n domain.Size) int { return n.Width })
}

// SetHeight is SetWidth for the vertical axis
func (e *Engine) SetHeight(h int) error {
	return e.resizeTo("height", h, func(n domain.Size) int { return n.Height })
}

// DisplaySizeForWidth is what a dimension editor shows after typing w:
// with the lock on, the height is derived from the aspect ratio.
func (e *Engine) DisplaySizeForWidth(w int) (domain.Size, bool) {
	o, ok := e.set.Selected()
	if !ok || !o.NaturalSize().Known() {
		return domain.Size{}, false
	}
	if !e.set.AspectLocked() {
		return domain.Size{Width: w, Height: o.RenderedSize().Height}, true
	}
	return domain.Size{Width: w, Height: int(math.Round(float64(w) / o.AspectRatio()))}, true
}

// DisplaySizeForHeight mirrors DisplaySizeForWidth
func (e *Engine) DisplaySizeForHeight(h int) (domain.Size, bool) {
	o, ok := e.set.Selected()
	if !ok || !o.NaturalSize().Known() {
		return domain.Size{}, false
	}
	if !e.set.AspectLocked() {
		return domain.Size{Width: o.RenderedSize().Width, Height: h}, true
	}
	return domain.Size{Width: int(math.Round(float64(h) * o.AspectRatio())), Height: h}, true
}

// ToggleAspectLock flips the global aspect-lock flag and returns it
func (e *Engine) ToggleAspectLock() bool {
	if e.closed {
		return e.set.AspectLocked()
	}
	e.set.SetAspectLocked(!e.set.AspectLocked())
	e.commit("aspect-lock", "locked", e.set.AspectLocked())
	return e.set.AspectLocked()
}

// ResolveNaturalSize records the decoded size of overlay id. A failed or
// repeated resolution leaves the overlay unchanged.
func (e *Engine) ResolveNaturalSize(id string, size domain.Size) error {
	if err := e.checkOpen(); err != nil {
		return err
	}

	changed := false
	if err := e.set.Update(id, func(o *domain.Overlay) { changed = o.SetNaturalSize(size) }); err != nil {
		return err
	}
	if changed {
		e.commit("natural-size", "overlay", id, "size", size.String())
	}
	return nil
}

// DecodePending resolves the natural size of every overlay that does not
// have one yet and returns how many were resolved
func (e *Engine) DecodePending(ctx context.Context, decoder ports.ImageDecoder) int {
	resolved := 0
	for _, o := range e.set.List() {
		if o.NaturalSize().Known() {
			continue
		}
		size, err := decoder.DecodeSize(ctx, o.ImageRef())
		if err != nil {
			e.logger.Warn("image decode failed, dimensions stay unknown", "overlay", o.ID(), "error", err)
			continue
		}
		if err := e.ResolveNaturalSize(o.ID(), size); err == nil {
			resolved++
		}
	}
	return resolved
}

// -----------------------------------------------------------------------------
// Panel chrome
// -----------------------------------------------------------------------------

// ToggleMinimize flips the minimized flag and returns it
func (e *Engine) ToggleMinimize() bool {
	if e.closed {
		return e.chrome.Minimized
	}
	e.chrome.Minimized = !e.chrome.Minimized
	e.commit("minimize", "minimized", e.chrome.Minimized)
	return e.chrome.Minimized
}

// SetPanelPosition stores the panel offset; empty values unset it
func (e *Engine) SetPanelPosition(left, top string) {
	if e.closed {
		return
	}
	if left == "" || top == "" {
		e.chrome.Position = nil
	} else {
		e.chrome.Position = &domain.PanelPosition{Left: left, Top: top}
	}
	e.commit("panel-position")
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Flush writes any debounced snapshot that is still pending
func (e *Engine) Flush(ctx context.Context) error {
	return e.persister.Flush(ctx)
}

// Close tears the engine down for deactivation: pending writes are
// dropped, the stored snapshot is cleared and all overlays are released
func (e *Engine) Close(ctx context.Context) error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.persister.Stop()
	e.set.ResetAll()

	if err := e.snapshots.Clear(ctx, e.key); err != nil {
		e.logger.Warn("failed to clear stored state", "error", err)
		return err
	}
	e.logger.Debug("engine closed")
	return nil
}

func (e *Engine) Closed() bool {
	return e.closed
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (e *Engine) resizeTo(op string, target int, natural func(domain.Size) int) error {
	if err := e.checkOpen(); err != nil {
		return err
	}

	o, ok := e.set.Selected()
	if !ok {
		return domain.ErrNoSelection
	}
	base := natural(o.NaturalSize())
	if !o.NaturalSize().Known() || base == 0 {
		return nil
	}

	scale := float64(target) / float64(base)
	return e.mutate(op, func(o *domain.Overlay) { o.SetScale(scale) })
}

func (e *Engine) mutate(op string, fn func(o *domain.Overlay)) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	if err := e.set.UpdateSelected(fn); err != nil {
		return err
	}
	e.commit(op, "overlay", e.set.SelectedID())
	return nil
}

func (e *Engine) commit(op string, attrs ...any) {
	e.logger.Debug("intent applied", append([]any{"op", op}, attrs...)...)
	e.persister.Submit(e.Snapshot())
}

func (e *Engine) checkOpen() error {
	if e.closed {
		return domain.ErrEngineClosed
	}
	return nil
}
