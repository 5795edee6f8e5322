// Package rectpack implements online best-area-fit rectangle packing with
// maximal-rectangles splitting, as used by the atlas builder to place
// trimmed image rects onto a growing bin.
package rectpack

import (
	"errors"
	"math"

	"atlaspack/internal/pool"
)

// ErrDoesNotFit is returned by Pack when at least one input rect cannot be
// placed on the current bin.
var ErrDoesNotFit = errors.New("rectpack: does not fit")

// Rect is a placeable rectangle. W and H must be set before Pack; X and Y
// are written by Pack on success. ID is opaque to the packer and is
// carried through so the caller can map results back to its own records.
type Rect struct {
	ID   int
	X, Y int
	W, H int
}

var freePool = pool.New[Rect]()
var freshPool = pool.New[Rect]()

// Packer holds the free-rectangle state for a single bin. A Packer is
// scoped to one packing attempt: Reset starts a fresh attempt on a
// (possibly larger) bin.
type Packer struct {
	width, height int
	free          []Rect
	fresh         []Rect
}

// New creates a Packer for a w×h bin.
func New(width, height int) *Packer {
	p := &Packer{}
	p.Reset(width, height)
	return p
}

// Reset discards all packing state and reinitializes the free-rectangle
// list to the single rect covering the new w×h bin.
func (p *Packer) Reset(width, height int) {
	if p.free != nil {
		freePool.Put(p.free)
	}
	if p.fresh != nil {
		freshPool.Put(p.fresh)
	}
	p.width, p.height = width, height
	p.free = freePool.Get(16)
	p.free = append(p.free, Rect{W: width, H: height})
	p.fresh = freshPool.Get(16)
}

// Pack assigns X, Y to every rect in rects (W, H must already be set),
// using the best-area-fit heuristic with maximal-rectangles splitting.
// Ties are broken by visiting rects, then free rectangles, in the order
// given — callers must pass rects in a stable (e.g. insertion) order to
// get deterministic results. On failure, returns ErrDoesNotFit and the
// bin's free-rectangle state is left in an unspecified (discarded) state.
func (p *Packer) Pack(rects []*Rect) error {
	remaining := make([]*Rect, len(rects))
	copy(remaining, rects)

	for len(remaining) > 0 {
		bestIdx := -1
		bestScore := math.MaxInt
		bestSecondary := math.MaxInt
		var bestX, bestY int

		for i, r := range remaining {
			score, secondary, x, y, ok := p.score(r.W, r.H)
			if !ok {
				continue
			}
			if score < bestScore || (score == bestScore && secondary < bestSecondary) {
				bestIdx = i
				bestScore = score
				bestSecondary = secondary
				bestX, bestY = x, y
			}
		}

		if bestIdx == -1 {
			return ErrDoesNotFit
		}

		r := remaining[bestIdx]
		r.X, r.Y = bestX, bestY
		p.place(Rect{X: r.X, Y: r.Y, W: r.W, H: r.H})

		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return nil
}

// score evaluates the best-area-fit score for placing a w×h rect among the
// current free rectangles. Returns ok=false if no free rect is large
// enough.
func (p *Packer) score(w, h int) (score, secondary, x, y int, ok bool) {
	score = math.MaxInt
	secondary = math.MaxInt

	for _, f := range p.free {
		if f.W < w || f.H < h {
			continue
		}
		areaFit := f.W*f.H - w*h
		shortestSide := min(f.W-w, f.H-h)

		if areaFit < score || (areaFit == score && shortestSide < secondary) {
			score = areaFit
			secondary = shortestSide
			x, y = f.X, f.Y
			ok = true
		}
	}
	return
}

// place splits every free rect intersecting placed out of the free list
// and prunes the resulting offcuts.
func (p *Packer) place(placed Rect) {
	kept := p.free[:0]
	for _, f := range p.free {
		if !p.split(placed, f) {
			kept = append(kept, f)
		}
	}
	p.free = kept
	p.prune()
}

// split tests whether rect intersects freeRect; if so, it emits up to four
// offcuts (freeRect minus rect) into p.fresh and returns true. If they do
// not intersect, freeRect is untouched and split returns false.
func (p *Packer) split(rect, freeRect Rect) bool {
	if rect.X >= freeRect.X+freeRect.W || rect.Y >= freeRect.Y+freeRect.H ||
		rect.X+rect.W <= freeRect.X || rect.Y+rect.H <= freeRect.Y {
		return false
	}

	if rect.Y < freeRect.Y+freeRect.H && rect.Y+rect.H > freeRect.Y {
		// Left slab.
		if rect.X > freeRect.X && rect.X < freeRect.X+freeRect.W {
			n := freeRect
			n.W = rect.X - freeRect.X
			p.addFresh(n)
		}
		// Right slab.
		if rect.X+rect.W < freeRect.X+freeRect.W {
			n := freeRect
			n.X = rect.X + rect.W
			n.W = freeRect.X + freeRect.W - n.X
			p.addFresh(n)
		}
	}

	if rect.X < freeRect.X+freeRect.W && rect.X+rect.W > freeRect.X {
		// Top slab.
		if rect.Y > freeRect.Y && rect.Y < freeRect.Y+freeRect.H {
			n := freeRect
			n.H = rect.Y - freeRect.Y
			p.addFresh(n)
		}
		// Bottom slab.
		if rect.Y+rect.H < freeRect.Y+freeRect.H {
			n := freeRect
			n.Y = rect.Y + rect.H
			n.H = freeRect.Y + freeRect.H - n.Y
			p.addFresh(n)
		}
	}

	return true
}

// contains reports whether a fully contains b.
func contains(a, b Rect) bool {
	return b.X >= a.X && b.Y >= a.Y &&
		b.X+b.W <= a.X+a.W && b.Y+b.H <= a.Y+a.H
}

// addFresh inserts rect into p.fresh with local dedup: any existing fresh
// rect contained in rect is dropped, and rect itself is dropped if already
// contained by an existing fresh rect.
func (p *Packer) addFresh(rect Rect) {
	for i := len(p.fresh) - 1; i >= 0; i-- {
		if contains(p.fresh[i], rect) {
			return
		}
		if contains(rect, p.fresh[i]) {
			p.fresh[i] = p.fresh[len(p.fresh)-1]
			p.fresh = p.fresh[:len(p.fresh)-1]
		}
	}
	p.fresh = append(p.fresh, rect)
}

// prune drops any fresh rect already contained by a surviving free rect,
// then appends what remains of fresh into free and empties fresh.
func (p *Packer) prune() {
	for _, f := range p.free {
		for j := len(p.fresh) - 1; j >= 0; j-- {
			if contains(f, p.fresh[j]) {
				p.fresh[j] = p.fresh[len(p.fresh)-1]
				p.fresh = p.fresh[:len(p.fresh)-1]
			}
		}
	}
	p.free = append(p.free, p.fresh...)
	p.fresh = p.fresh[:0]
}
