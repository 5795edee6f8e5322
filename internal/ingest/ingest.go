// Package ingest computes each input image's trimmed bounds and buffer,
// hashes it, and resolves duplicates against previously ingested
// canonicals — the preprocessing stage that sits between decode and
// rectangle packing.
package ingest

import (
	"bytes"
	"fmt"

	"atlaspack/internal/pixelops"
)

// Image is one ingested input: either a canonical (owns Pixels) or a
// duplicate (CanonicalIndex points at the List entry that owns the bytes).
type Image struct {
	Name string

	// OriginalRect is always (0, 0, W, H) of the decoded input.
	OriginalRect pixelops.Rect

	// TrimmedRect is OriginalRect's tight nonzero-alpha bounding box, or
	// OriginalRect itself when trimming is disabled. A fully transparent
	// image with trimming enabled gets the zero Rect.
	TrimmedRect pixelops.Rect

	// Pixels is the trimmed RGBA8 buffer, row-major, present only on
	// canonicals (IsDuplicate == false) with nonempty TrimmedRect.
	Pixels []byte

	Hash uint64

	// IsDuplicate reports whether this Image's bytes are owned by another
	// entry in the same List.
	IsDuplicate    bool
	CanonicalIndex int

	// PackedRect is filled in by the atlas builder after a successful
	// Pack; it is the zero Rect until then.
	PackedRect pixelops.Rect
}

// List holds every ingested image in insertion order and the canonical
// lookup index used to resolve duplicates.
type List struct {
	images   []*Image
	byHash   map[uint64][]int // hash -> indices of canonical images in images
	numCanon int
}

// New returns an empty List.
func New() *List {
	return &List{byHash: make(map[uint64][]int)}
}

// Len returns the number of images ingested so far, canonical and
// duplicate combined.
func (l *List) Len() int { return len(l.images) }

// Images returns the full ingested list in insertion order. The returned
// slice must not be mutated by the caller.
func (l *List) Images() []*Image { return l.images }

// NumCanonical returns the count of canonical (non-duplicate) images.
func (l *List) NumCanonical() int { return l.numCanon }

// Canonicals returns every canonical Image in insertion order.
func (l *List) Canonicals() []*Image {
	out := make([]*Image, 0, l.numCanon)
	for _, img := range l.images {
		if !img.IsDuplicate {
			out = append(out, img)
		}
	}
	return out
}

// Add ingests one decoded RGBA8 buffer of dimensions w×h, computes its
// trimmed rect per the trim policy, and resolves it against existing
// canonicals. The returned Image is also appended to the list.
func (l *List) Add(pix []byte, w, h int, name string, trim bool) (*Image, error) {
	if len(pix) != w*h*4 {
		return nil, fmt.Errorf("ingest: buffer length %d does not match %dx%d RGBA8", len(pix), w, h)
	}

	img := &Image{
		Name:         name,
		OriginalRect: pixelops.Rect{X: 0, Y: 0, W: w, H: h},
	}

	var trimmed pixelops.Rect
	if trim {
		trimmed = computeTrim(pix, w, h)
	} else {
		trimmed = img.OriginalRect
	}
	img.TrimmedRect = trimmed

	if trimmed.Empty() {
		img.Hash = pixelops.Hash(nil)
		l.resolve(img)
		l.images = append(l.images, img)
		return img, nil
	}

	buf := make([]byte, trimmed.W*trimmed.H*4)
	if err := pixelops.Blit(buf, trimmed.W, pixelops.Rect{X: 0, Y: 0, W: trimmed.W, H: trimmed.H}, pix, w, trimmed); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	img.Pixels = buf
	img.Hash = pixelops.Hash(buf)

	l.resolve(img)
	l.images = append(l.images, img)
	return img, nil
}

// computeTrim finds the tight bounding box of nonzero-alpha pixels in a
// w×h RGBA8 buffer. A fully transparent image yields the zero Rect.
func computeTrim(pix []byte, w, h int) pixelops.Rect {
	top := -1
	for y := 0; y < h; y++ {
		if !pixelops.RowClear(pix, w, y, w) {
			top = y
			break
		}
	}
	if top == -1 {
		return pixelops.Rect{}
	}

	bottom := h
	for y := h - 1; y >= top; y-- {
		if !pixelops.RowClear(pix, w, y, w) {
			bottom = y + 1
			break
		}
	}

	left := -1
	for x := 0; x < w; x++ {
		if !pixelops.ColumnClear(pix, w, x, h) {
			left = x
			break
		}
	}

	right := w
	for x := w - 1; x >= left; x-- {
		if !pixelops.ColumnClear(pix, w, x, h) {
			right = x + 1
			break
		}
	}

	return pixelops.Rect{X: left, Y: top, W: right - left, H: bottom - top}
}

// resolve scans canonicals sharing img.Hash in insertion order and marks
// img as a duplicate of the first byte-identical match. On no match, img
// becomes a canonical and is indexed for future lookups.
func (l *List) resolve(img *Image) {
	idx := len(l.images)

	for _, candIdx := range l.byHash[img.Hash] {
		cand := l.images[candIdx]
		if cand.TrimmedRect.W != img.TrimmedRect.W || cand.TrimmedRect.H != img.TrimmedRect.H {
			continue
		}
		if !bytes.Equal(cand.Pixels, img.Pixels) {
			continue
		}
		img.IsDuplicate = true
		img.CanonicalIndex = candIdx
		img.Pixels = nil
		return
	}

	l.byHash[img.Hash] = append(l.byHash[img.Hash], idx)
	l.numCanon++
}
