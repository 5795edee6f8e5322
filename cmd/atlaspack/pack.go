package main

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"atlaspack"
)

func newPackCmd() *cobra.Command {
	var padding int
	var maxDimension int
	var noTrim bool
	var premultiply bool

	cmd := &cobra.Command{
		Use:   "pack <input-dir> <output-dir> <atlas-name>",
		Short: "Pack every PNG under input-dir into a single atlas",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runPack(args[0], args[1], args[2], atlaspack.Options{
				Name:         args[2],
				MaxDimension: maxDimension,
				Padding:      padding,
				Trim:         !noTrim,
			}, premultiply)
			if err != nil {
				return exitErr("pack", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&padding, "padding", 0, "pixels of spacing added to the right and bottom of each sprite")
	cmd.Flags().IntVar(&maxDimension, "dimension", atlaspack.DefaultMaxDimension, "maximum atlas dimension per axis")
	cmd.Flags().BoolVar(&noTrim, "notrim", false, "disable transparent-border trimming")
	cmd.Flags().BoolVar(&premultiply, "premultiply", false, "premultiply output RGB by alpha")

	return cmd
}

func runPack(inputDir, outputDir, atlasName string, opts atlaspack.Options, premultiply bool) error {
	ctx, err := atlaspack.New(opts)
	if err != nil {
		return fmt.Errorf("creating context: %w", err)
	}
	defer ctx.Close()

	if err := ingestDir(ctx, inputDir); err != nil {
		return err
	}

	log.WithField("dir", inputDir).Info("packing")
	if err := ctx.Pack(); err != nil {
		return fmt.Errorf("packing: %w", err)
	}

	pix, width, height := ctx.Pixels()
	if premultiply {
		premultiplyAlpha(pix)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	pngPath := filepath.Join(outputDir, atlasName+".png")
	if err := writePNG(pngPath, pix, width, height); err != nil {
		return fmt.Errorf("writing atlas: %w", err)
	}

	jsonPath := filepath.Join(outputDir, atlasName+".json")
	if err := writeMetadata(jsonPath, ctx.Metadata()); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	log.WithFields(logrus.Fields{
		"atlas":  pngPath,
		"meta":   jsonPath,
		"width":  width,
		"height": height,
	}).Info("done")

	return nil
}

// ingestDir recursively walks dir for .png files and adds each one to ctx,
// using the path relative to dir (with "/" separators) as its name.
func ingestDir(ctx *atlaspack.Context, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".png") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		pix, width, height, err := decodePNG(path)
		if err != nil {
			log.WithError(err).WithField("file", path).Warn("skipping unreadable PNG")
			return nil
		}

		if err := ctx.AddImage(pix, width, height, name); err != nil {
			return fmt.Errorf("adding %s: %w", name, err)
		}
		log.WithField("name", name).Debug("ingested")
		return nil
	})
}

// decodePNG reads a PNG file and returns its pixels as a row-major RGBA8
// buffer plus its dimensions.
func decodePNG(path string) ([]byte, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, 0, 0, err
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	// Fast path: *image.NRGBA is what the stdlib decoder returns for most
	// alpha-bearing PNGs (PNG's alpha is stored non-premultiplied, same as
	// NRGBA); its bytes are already RGBA8, no per-pixel conversion needed.
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == w*4 && b.Min == image.Pt(0, 0) {
		return nrgba.Pix, w, h, nil
	}

	// Fast path: *image.RGBA, returned for fully opaque truecolor PNGs.
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == w*4 && b.Min == image.Pt(0, 0) {
		return rgba.Pix, w, h, nil
	}

	// Slow path: grayscale, paletted, or an oddly-bounded fast-path image.
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out.Pix, w, h, nil
}

// writePNG encodes a row-major RGBA8 buffer as a PNG file.
func writePNG(path string, pix []byte, width, height int) error {
	img := &image.NRGBA{Pix: pix, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}

// premultiplyAlpha multiplies each pixel's RGB by its alpha in place.
func premultiplyAlpha(pix []byte) {
	for i := 0; i < len(pix); i += 4 {
		a := uint16(pix[i+3])
		pix[i] = byte(uint16(pix[i]) * a / 255)
		pix[i+1] = byte(uint16(pix[i+1]) * a / 255)
		pix[i+2] = byte(uint16(pix[i+2]) * a / 255)
	}
}

type imageMetadata struct {
	Name            string `json:"name"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	TrimOffsetX     int    `json:"trimOffsetX"`
	TrimOffsetY     int    `json:"trimOffsetY"`
	UntrimmedWidth  int    `json:"untrimmedWidth"`
	UntrimmedHeight int    `json:"untrimmedHeight"`
}

func writeMetadata(path string, meta []atlaspack.ImageData) error {
	out := make([]imageMetadata, len(meta))
	for i, m := range meta {
		out[i] = imageMetadata{
			Name:            m.Name,
			X:               m.X,
			Y:               m.Y,
			Width:           m.Width,
			Height:          m.Height,
			TrimOffsetX:     m.TrimOffsetX,
			TrimOffsetY:     m.TrimOffsetY,
			UntrimmedWidth:  m.UntrimmedWidth,
			UntrimmedHeight: m.UntrimmedHeight,
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
