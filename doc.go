// Package atlaspack packs a set of decoded RGBA8 images into a single
// power-of-two texture atlas.
//
// Each image is optionally trimmed to the tight bounding box of its
// nonzero-alpha pixels, then deduplicated against every previously added
// image with bitwise-identical trimmed contents. Surviving canonicals are
// placed with an online best-area-fit rectangle packer using
// maximal-rectangles splitting; the bin grows by powers of two, alternating
// width and height, until packing succeeds or a configured maximum
// dimension would be exceeded.
//
// The package performs no I/O: callers decode images themselves and hand
// the Context raw RGBA8 buffers. See cmd/atlaspack for a PNG- and
// JSON-driven command-line tool built on top of this package.
//
// Basic usage:
//
//	ctx, err := atlaspack.New(atlaspack.DefaultOptions())
//	err = ctx.AddImage(pix, width, height, "sprite")
//	err = ctx.Pack()
//	pix, w, h := ctx.Pixels()
//	meta := ctx.Metadata()
//	ctx.Close()
package atlaspack
