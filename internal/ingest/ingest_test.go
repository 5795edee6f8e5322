package ingest

import "testing"

type rect struct{ X, Y, W, H int }

func solidBuffer(w, h int, r, g, b, a byte) []byte {
	pix := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = r, g, b, a
	}
	return pix
}

// borderedBuffer returns a w×h buffer, transparent everywhere except an
// opaque interior rect.
func borderedBuffer(w, h int, interior rect) []byte {
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 4
			inside := x >= interior.X && x < interior.X+interior.W &&
				y >= interior.Y && y < interior.Y+interior.H
			pix[off], pix[off+1], pix[off+2] = 1, 2, 3
			if inside {
				pix[off+3] = 255
			}
		}
	}
	return pix
}

func TestAdd_NoTrim(t *testing.T) {
	l := New()
	pix := solidBuffer(8, 8, 10, 20, 30, 255)
	img, err := l.Add(pix, 8, 8, "a", false)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if img.TrimmedRect.W != 8 || img.TrimmedRect.H != 8 {
		t.Errorf("TrimmedRect = %+v, want 8x8", img.TrimmedRect)
	}
	if img.IsDuplicate {
		t.Errorf("first image marked duplicate")
	}
}

func TestAdd_Trim(t *testing.T) {
	l := New()
	pix := borderedBuffer(8, 8, rect{X: 2, Y: 2, W: 4, H: 4})
	img, err := l.Add(pix, 8, 8, "a", true)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	want := rect{X: 2, Y: 2, W: 4, H: 4}
	got := img.TrimmedRect
	if got.X != want.X || got.Y != want.Y || got.W != want.W || got.H != want.H {
		t.Errorf("TrimmedRect = %+v, want %+v", got, want)
	}
	if len(img.Pixels) != 4*4*4 {
		t.Errorf("len(Pixels) = %d, want %d", len(img.Pixels), 4*4*4)
	}
}

func TestAdd_FullyTransparent(t *testing.T) {
	l := New()
	pix := solidBuffer(4, 4, 5, 5, 5, 0)
	img, err := l.Add(pix, 4, 4, "a", true)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !img.TrimmedRect.Empty() {
		t.Errorf("TrimmedRect = %+v, want empty", img.TrimmedRect)
	}
	if img.Pixels != nil {
		t.Errorf("Pixels = %v, want nil for fully transparent image", img.Pixels)
	}
}

func TestAdd_TwoTransparentImagesAreDuplicates(t *testing.T) {
	l := New()
	a, err := l.Add(solidBuffer(4, 4, 1, 1, 1, 0), 4, 4, "a", true)
	if err != nil {
		t.Fatalf("Add a: %v", err)
	}
	b, err := l.Add(solidBuffer(6, 6, 9, 9, 9, 0), 6, 6, "b", true)
	if err != nil {
		t.Fatalf("Add b: %v", err)
	}
	if a.IsDuplicate {
		t.Errorf("first transparent image marked duplicate")
	}
	if !b.IsDuplicate || b.CanonicalIndex != 0 {
		t.Errorf("second transparent image: IsDuplicate=%v CanonicalIndex=%d, want true/0", b.IsDuplicate, b.CanonicalIndex)
	}
}

func TestAdd_DuplicateDetection(t *testing.T) {
	l := New()
	pixA := solidBuffer(4, 4, 1, 2, 3, 255)
	pixB := solidBuffer(4, 4, 1, 2, 3, 255)
	a, err := l.Add(pixA, 4, 4, "a", false)
	if err != nil {
		t.Fatalf("Add a: %v", err)
	}
	b, err := l.Add(pixB, 4, 4, "b", false)
	if err != nil {
		t.Fatalf("Add b: %v", err)
	}
	if a.IsDuplicate {
		t.Errorf("first image marked duplicate")
	}
	if !b.IsDuplicate {
		t.Errorf("second identical image not marked duplicate")
	}
	if b.CanonicalIndex != 0 {
		t.Errorf("CanonicalIndex = %d, want 0", b.CanonicalIndex)
	}
	if b.Pixels != nil {
		t.Errorf("duplicate retained its own pixel buffer")
	}
	if l.NumCanonical() != 1 {
		t.Errorf("NumCanonical() = %d, want 1", l.NumCanonical())
	}
}

func TestAdd_DistinctImagesAreNotDuplicates(t *testing.T) {
	l := New()
	a, err := l.Add(solidBuffer(4, 4, 1, 2, 3, 255), 4, 4, "a", false)
	if err != nil {
		t.Fatalf("Add a: %v", err)
	}
	b, err := l.Add(solidBuffer(4, 4, 9, 9, 9, 255), 4, 4, "b", false)
	if err != nil {
		t.Fatalf("Add b: %v", err)
	}
	if a.IsDuplicate || b.IsDuplicate {
		t.Errorf("distinct images incorrectly marked duplicate")
	}
	if l.NumCanonical() != 2 {
		t.Errorf("NumCanonical() = %d, want 2", l.NumCanonical())
	}
}

func TestAdd_SameHashDifferentDimensionsNotDuplicate(t *testing.T) {
	l := New()
	a, err := l.Add(solidBuffer(4, 4, 1, 2, 3, 255), 4, 4, "a", false)
	if err != nil {
		t.Fatalf("Add a: %v", err)
	}
	b, err := l.Add(solidBuffer(8, 2, 1, 2, 3, 255), 8, 2, "b", false)
	if err != nil {
		t.Fatalf("Add b: %v", err)
	}
	_ = a
	if b.IsDuplicate {
		t.Errorf("images with different dimensions incorrectly matched as duplicates")
	}
}

func TestAdd_DimensionMismatch(t *testing.T) {
	l := New()
	_, err := l.Add(make([]byte, 10), 4, 4, "a", false)
	if err == nil {
		t.Fatal("Add: want error for buffer/dimension mismatch, got nil")
	}
}

func TestImages_InsertionOrder(t *testing.T) {
	l := New()
	names := []string{"a", "b", "c"}
	for _, n := range names {
		if _, err := l.Add(solidBuffer(2, 2, 0, 0, 0, 255), 2, 2, n, false); err != nil {
			t.Fatalf("Add %s: %v", n, err)
		}
	}
	imgs := l.Images()
	if len(imgs) != 3 {
		t.Fatalf("len(Images()) = %d, want 3", len(imgs))
	}
	for i, n := range names {
		if imgs[i].Name != n {
			t.Errorf("Images()[%d].Name = %q, want %q", i, imgs[i].Name, n)
		}
	}
}
