// resources/resources_test.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package resources

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/font/basicfont"

	"github.com/tpanel/tpanel/util"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func compress(t *testing.T, b []byte) []byte {
	t.Helper()
	zw, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer zw.Close()
	return zw.EncodeAll(b, nil)
}

func testFS(t *testing.T) fstest.MapFS {
	red := color.RGBA{R: 255, A: 255}
	return fstest.MapFS{
		"images/red.png":     {Data: encodePNG(t, 4, 4, red), ModTime: time.Now().Add(-time.Hour)},
		"images/big.png.zst": {Data: compress(t, encodePNG(t, 8, 6, red)), ModTime: time.Now().Add(-time.Hour)},
		"images/broken.png":  {Data: []byte("not an image")},
		"fonts/broken.ttf":   {Data: []byte("not a font")},
	}
}

func TestLoaderImage(t *testing.T) {
	l := NewLoaderFS(testFS(t), nil, nil)

	img, err := l.Image("red.png")
	if err != nil {
		t.Fatalf("red.png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("expected 4x4 image, got %v", b)
	}
	if r, _, _, a := img.At(1, 1).RGBA(); r != 0xffff || a != 0xffff {
		t.Errorf("expected opaque red, got r=%x a=%x", r, a)
	}

	if img2, _ := l.Image("red.png"); img2 != img {
		t.Errorf("expected the cached image to be returned")
	}

	img, err = l.Image("big.png")
	if err != nil {
		t.Fatalf("big.png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("expected 8x6 image from compressed file, got %v", b)
	}

	if _, err := l.Image("missing.png"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("expected ErrImageNotFound, got %v", err)
	}
	if _, err := l.Image("broken.png"); err == nil || errors.Is(err, ErrImageNotFound) {
		t.Errorf("expected a decoding error, got %v", err)
	}
}

func TestLoaderScaled(t *testing.T) {
	disk, err := util.MakeDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fsys := testFS(t)

	l := NewLoaderFS(fsys, disk, nil)
	img, err := l.Scaled("big.png", 4, 3)
	if err != nil {
		t.Fatalf("Scaled: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("expected 4x3 image, got %v", b)
	}
	if r, g, _, a := img.At(2, 1).RGBA(); r < 0xf000 || g > 0x1000 || a < 0xf000 {
		t.Errorf("expected scaled image to stay opaque red, got r=%x a=%x", r, a)
	}

	// A second loader with the same disk cache gets the stored pixels.
	var si scaledImage
	if _, err := disk.RetrieveObject("scaled/big.png@4x3.msgpack.zst", &si); err != nil {
		t.Fatalf("expected scaled image in disk cache: %v", err)
	}
	l2 := NewLoaderFS(fsys, disk, nil)
	img2, err := l2.Scaled("big.png", 4, 3)
	if err != nil {
		t.Fatalf("Scaled from disk: %v", err)
	}
	if rgba, ok := img2.(*image.RGBA); !ok || !bytes.Equal(rgba.Pix, si.Pix) {
		t.Errorf("expected pixels from the disk cache")
	}

	if same, _ := l.Scaled("red.png", 4, 4); same == nil || same.Bounds().Dx() != 4 {
		t.Errorf("expected unscaled image for identical size")
	}
	if _, err := l.Scaled("red.png", 0, 4); err == nil {
		t.Errorf("expected error for empty size")
	}
}

func TestLoaderPreload(t *testing.T) {
	l := NewLoaderFS(testFS(t), nil, nil)
	if err := l.Preload(context.Background(), []string{"red.png", "big.png"}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := l.Preload(context.Background(), []string{"red.png", "missing.png"}); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("expected ErrImageNotFound, got %v", err)
	}
	l.Purge()
}

func TestFontsFallback(t *testing.T) {
	f := NewFontsFS(testFS(t), []FontEntry{{Index: 1, File: "broken.ttf", Size: 12}}, nil)
	defer f.Close()

	if face := f.Face(1, 0); face != basicfont.Face7x13 {
		t.Errorf("expected fallback face for broken font")
	}
	if face := f.Face(7, 10); face != basicfont.Face7x13 {
		t.Errorf("expected fallback face for unknown index")
	}
	if !f.failed["broken.ttf"] {
		t.Errorf("expected broken font to be remembered")
	}
}

func TestHTTPFetcher(t *testing.T) {
	pngData := encodePNG(t, 2, 2, color.RGBA{B: 255, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cam.png":
			w.Write(pngData)
		case "/secure.png":
			auth := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:secret"))
			if r.Header.Get("Authorization") != auth {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write(pngData)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	h := NewHTTPFetcher(5 * time.Second)
	ctx := context.Background()

	img, err := h.Fetch(ctx, srv.URL+"/cam.png", "", "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 {
		t.Errorf("expected 2x2 image, got %v", b)
	}

	if _, err := h.Fetch(ctx, srv.URL+"/secure.png", "admin", "wrong"); err == nil {
		t.Errorf("expected error for bad credentials")
	}
	if _, err := h.Fetch(ctx, srv.URL+"/secure.png", "admin", "secret"); err != nil {
		t.Errorf("expected authenticated fetch to succeed, got %v", err)
	}
	if _, err := h.Fetch(ctx, srv.URL+"/nothing.png", "", ""); err == nil {
		t.Errorf("expected error for missing image")
	}
}
