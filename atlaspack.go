package atlaspack

import (
	"github.com/gravitational/trace"

	"atlaspack/internal/ingest"
)

// DefaultMaxDimension is the upper bound per axis used by [DefaultOptions].
const DefaultMaxDimension = 8192

// Options configures a [Context]. Use [DefaultOptions] and override only
// the fields that matter.
type Options struct {
	// Name labels the atlas; it is opaque to the packer.
	Name string

	// MaxDimension is the largest the atlas may grow along either axis.
	// Must be a positive power of two.
	MaxDimension int

	// Padding is the spacing, in pixels, added to the right and bottom of
	// every trimmed rect before packing. Must be >= 0.
	Padding int

	// Trim enables transparent-border trimming on ingest.
	Trim bool
}

// DefaultOptions returns the recognized defaults: no name, MaxDimension
// 8192, no padding, trimming enabled.
func DefaultOptions() Options {
	return Options{
		MaxDimension: DefaultMaxDimension,
		Padding:      0,
		Trim:         true,
	}
}

// ImageData is one row of the metadata table produced by a successful
// Pack: the placement and trim bookkeeping for a single added image, in
// the order it was added.
type ImageData struct {
	Name string

	// X, Y, Width, Height are atlas coordinates and dimensions of the
	// placed trimmed region. Duplicates carry their canonical's values.
	X, Y, Width, Height int

	// TrimOffsetX, TrimOffsetY are this image's own trimmed origin minus
	// its own original origin — always derived from the image's own
	// rects, even for a duplicate.
	TrimOffsetX, TrimOffsetY int

	// UntrimmedWidth, UntrimmedHeight are this image's own original W, H.
	UntrimmedWidth, UntrimmedHeight int
}

// Context owns one atlas-in-progress: every image added to it, and, after
// a successful Pack, the composed atlas buffer and metadata table. A
// Context is used by exactly one goroutine at a time; it performs no
// internal locking.
type Context struct {
	opts Options
	list *ingest.List

	packed bool
	pix    []byte
	width  int
	height int
	meta   []ImageData
}

// New creates a Context with the given options. Returns
// trace.BadParameter if padding is negative or maxDimension is not a
// positive power of two.
func New(opts Options) (*Context, error) {
	if opts.Padding < 0 {
		return nil, trace.BadParameter("atlaspack: padding must be >= 0, got %d", opts.Padding)
	}
	if opts.MaxDimension <= 0 || opts.MaxDimension&(opts.MaxDimension-1) != 0 {
		return nil, trace.BadParameter("atlaspack: maxDimension must be a positive power of two, got %d", opts.MaxDimension)
	}
	return &Context{
		opts: opts,
		list: ingest.New(),
	}, nil
}

// AddImage ingests one decoded RGBA8 buffer of dimensions w×h under the
// given name. Insertion order is significant: it determines which of a
// group of bitwise-identical images becomes the canonical, and it
// determines packing's tie-break order.
func (c *Context) AddImage(pix []byte, width, height int, name string) error {
	c.packed = false
	_, err := c.list.Add(pix, width, height, name, c.opts.Trim)
	if err != nil {
		return trace.Wrap(err)
	}
	return nil
}

// Pack places every added image onto the atlas, growing the bin from
// 32×32 by alternately doubling width and height until it succeeds or
// the next attempt would exceed MaxDimension. Returns
// trace.LimitExceeded if no bin up to MaxDimension fits all images. On
// failure, accessors behave as if Pack was never called.
func (c *Context) Pack() error {
	c.packed = false

	pix, width, height, meta, err := buildAtlas(c.list, c.opts.MaxDimension, c.opts.Padding)
	if err != nil {
		return trace.Wrap(err)
	}

	c.pix, c.width, c.height, c.meta = pix, width, height, meta
	c.packed = true
	return nil
}

// Pixels returns the packed atlas buffer (RGBA8, row-major) and its
// dimensions. The returned slice is owned by the Context and remains
// valid until Close; it is nil if Pack has not succeeded.
func (c *Context) Pixels() (pix []byte, width, height int) {
	if !c.packed {
		return nil, 0, 0
	}
	return c.pix, c.width, c.height
}

// Metadata returns the per-image placement table in insertion order. It
// is nil if Pack has not succeeded.
func (c *Context) Metadata() []ImageData {
	if !c.packed {
		return nil
	}
	return c.meta
}

// Close releases everything the Context owns. After Close, accessors
// return zero values and the Context must not be used again.
func (c *Context) Close() error {
	c.list = nil
	c.pix = nil
	c.meta = nil
	c.packed = false
	c.width, c.height = 0, 0
	return nil
}
