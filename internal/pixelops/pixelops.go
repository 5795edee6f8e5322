// Package pixelops implements the low-level operations the packing engine
// performs directly on RGBA8 row-major pixel buffers: opacity scans,
// rectangular copies, and content hashing. Nothing above this package
// reaches into a buffer's bytes directly.
package pixelops

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ErrDimensionMismatch is returned by Blit when the source and destination
// rectangles do not have identical width and height.
var ErrDimensionMismatch = errors.New("pixelops: source and destination rects have different dimensions")

// Rect is an axis-aligned integer rectangle. All fields are nonnegative;
// well-formed rects additionally have W>0 and H>0, except the degenerate
// zero rect used for fully transparent images (see internal/ingest).
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether r has zero area.
func (r Rect) Empty() bool {
	return r.W == 0 || r.H == 0
}

// Contains reports whether r fully contains o.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}

// bytesPerPixel is fixed: every buffer this package touches is RGBA8.
const bytesPerPixel = 4

// pixelOffset returns the byte offset of pixel (x, y) in a buffer with the
// given stride, measured in pixels.
func pixelOffset(x, y, stride int) int {
	return (y*stride + x) * bytesPerPixel
}

// RowClear reports whether every pixel in row `row` of a buffer with the
// given pixel stride has zero alpha. Per spec, this reads the alpha byte
// (index 3 of each 4-byte RGBA pixel) directly.
func RowClear(pix []byte, stride, row, width int) bool {
	base := pixelOffset(0, row, stride)
	for x := 0; x < width; x++ {
		if pix[base+x*bytesPerPixel+3] != 0 {
			return false
		}
	}
	return true
}

// ColumnClear reports whether every pixel in column `col` of a buffer with
// the given pixel stride and height has zero alpha.
func ColumnClear(pix []byte, stride, col, height int) bool {
	for y := 0; y < height; y++ {
		if pix[pixelOffset(col, y, stride)+3] != 0 {
			return false
		}
	}
	return true
}

// Blit copies a w×h region from src (stride srcStride) at srcRect's origin
// into dst (stride dstStride) at dstRect's origin. srcRect and dstRect must
// have identical W and H; pixels are copied as opaque 4-byte units, no
// blending is performed.
func Blit(dst []byte, dstStride int, dstRect Rect, src []byte, srcStride int, srcRect Rect) error {
	if dstRect.W != srcRect.W || dstRect.H != srcRect.H {
		return fmt.Errorf("%w: dst=%dx%d src=%dx%d", ErrDimensionMismatch, dstRect.W, dstRect.H, srcRect.W, srcRect.H)
	}
	rowBytes := dstRect.W * bytesPerPixel
	for row := 0; row < dstRect.H; row++ {
		srcOff := pixelOffset(srcRect.X, srcRect.Y+row, srcStride)
		dstOff := pixelOffset(dstRect.X, dstRect.Y+row, dstStride)
		copy(dst[dstOff:dstOff+rowBytes], src[srcOff:srcOff+rowBytes])
	}
	return nil
}

// Hash returns a stable 64-bit content hash of pix, used as a dedup
// prefilter before an exact byte comparison. It is the first 8 bytes
// (little-endian) of a BLAKE2b-256 digest.
func Hash(pix []byte) uint64 {
	sum := blake2b.Sum256(pix)
	return binary.LittleEndian.Uint64(sum[:8])
}
