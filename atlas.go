package atlaspack

import (
	"github.com/gravitational/trace"

	"atlaspack/internal/ingest"
	"atlaspack/internal/pixelops"
	"atlaspack/internal/rectpack"
)

const initialBinSize = 32

// buildAtlas runs the grow-and-retry packing loop over a list's canonical
// images: it starts at a 32×32 bin and alternates doubling width, then
// height, until packing succeeds or the next attempt would exceed
// maxDimension. On success it allocates the output buffer, blits every
// canonical into its packed slot, and synthesizes the full metadata table.
func buildAtlas(list *ingest.List, maxDimension, padding int) (pix []byte, width, height int, meta []ImageData, err error) {
	canonicals := list.Canonicals()

	type placed struct {
		img  *ingest.Image
		rect *rectpack.Rect
	}
	var toPack []placed
	for _, img := range canonicals {
		if img.TrimmedRect.Empty() {
			continue
		}
		toPack = append(toPack, placed{img: img})
	}

	binW, binH := initialBinSize, initialBinSize
	growWidth := true
	packer := rectpack.New(binW, binH)

	for {
		rects := make([]*rectpack.Rect, len(toPack))
		for i, p := range toPack {
			rects[i] = &rectpack.Rect{
				ID: i,
				W:  p.img.TrimmedRect.W + padding,
				H:  p.img.TrimmedRect.H + padding,
			}
		}

		packErr := packer.Pack(rects)
		if packErr == nil {
			for i, r := range rects {
				toPack[i].rect = r
			}
			break
		}

		nextW, nextH := binW, binH
		if growWidth {
			nextW *= 2
		} else {
			nextH *= 2
		}
		growWidth = !growWidth

		if nextW > maxDimension || nextH > maxDimension {
			return nil, 0, 0, nil, trace.LimitExceeded("atlaspack: no bin up to %dx%d fits all images", maxDimension, maxDimension)
		}

		binW, binH = nextW, nextH
		packer.Reset(binW, binH)
	}

	width, height = binW, binH
	pix = make([]byte, width*height*4)

	for _, p := range toPack {
		dst := pixelops.Rect{X: p.rect.X, Y: p.rect.Y, W: p.img.TrimmedRect.W, H: p.img.TrimmedRect.H}
		src := pixelops.Rect{X: 0, Y: 0, W: p.img.TrimmedRect.W, H: p.img.TrimmedRect.H}
		if err := pixelops.Blit(pix, width, dst, p.img.Pixels, p.img.TrimmedRect.W, src); err != nil {
			return nil, 0, 0, nil, trace.Wrap(err)
		}
		p.img.PackedRect = dst
	}

	meta = make([]ImageData, list.Len())
	for i, img := range list.Images() {
		canon := img
		if img.IsDuplicate {
			canon = list.Images()[img.CanonicalIndex]
		}
		meta[i] = ImageData{
			Name:            img.Name,
			X:               canon.PackedRect.X,
			Y:               canon.PackedRect.Y,
			Width:           canon.PackedRect.W,
			Height:          canon.PackedRect.H,
			TrimOffsetX:     img.TrimmedRect.X - img.OriginalRect.X,
			TrimOffsetY:     img.TrimmedRect.Y - img.OriginalRect.Y,
			UntrimmedWidth:  img.OriginalRect.W,
			UntrimmedHeight: img.OriginalRect.H,
		}
	}

	return pix, width, height, meta, nil
}
