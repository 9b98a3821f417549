// resources/images.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package resources loads the images and fonts of a panel and fetches
// dynamic images from the network.
package resources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"runtime"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/klauspost/compress/zstd"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/tpanel/tpanel/log"
	"github.com/tpanel/tpanel/util"
)

var ErrImageNotFound = errors.New("Image not found")

const (
	imageCacheSize = 256
	imageCacheTTL  = 10 * time.Minute
)

// Loader decodes the images in the "images" directory of a panel. Images
// may be stored zstd-compressed with an additional ".zst" extension.
// Decoded images are kept in memory for a while; scaled images are also
// stored in a disk cache, if one is given.
type Loader struct {
	fsys   fs.FS
	images *expirable.LRU[string, image.Image]
	disk   *util.DiskCache
	lg     *log.Logger
}

func NewLoader(panelDir string, disk *util.DiskCache, lg *log.Logger) *Loader {
	return NewLoaderFS(os.DirFS(panelDir), disk, lg)
}

func NewLoaderFS(fsys fs.FS, disk *util.DiskCache, lg *log.Logger) *Loader {
	return &Loader{
		fsys:   fsys,
		images: expirable.NewLRU[string, image.Image](imageCacheSize, nil, imageCacheTTL),
		disk:   disk,
		lg:     lg,
	}
}

// readFile reads name from dir, falling back to a compressed name.zst.
func readFile(fsys fs.FS, dir, name string) ([]byte, error) {
	p := path.Join(dir, name)
	b, err := fs.ReadFile(fsys, p)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return b, err
	}

	if b, err = fs.ReadFile(fsys, p+".zst"); err != nil {
		return nil, err
	}
	zr, err := zstd.NewReader(bytes.NewReader(b), zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// Image returns the decoded image name.
func (l *Loader) Image(name string) (image.Image, error) {
	if img, ok := l.images.Get(name); ok {
		return img, nil
	}

	b, err := readFile(l.fsys, "images", name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrImageNotFound)
	} else if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	l.lg.Debug("decoded image", slog.String("name", name), slog.String("format", format),
		slog.Any("bounds", img.Bounds()))

	l.images.Add(name, img)
	return img, nil
}

// scaledImage is how scaled images are stored in the disk cache.
type scaledImage struct {
	Width  int    `msgpack:"w"`
	Height int    `msgpack:"h"`
	Pix    []byte `msgpack:"p"`
}

// Scaled returns image name scaled to w x h pixels.
func (l *Loader) Scaled(name string, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%s: invalid size %dx%d", name, w, h)
	}
	key := name + "@" + strconv.Itoa(w) + "x" + strconv.Itoa(h)
	if img, ok := l.images.Get(key); ok {
		return img, nil
	}

	src, err := l.Image(name)
	if err != nil {
		return nil, err
	}
	if b := src.Bounds(); b.Dx() == w && b.Dy() == h {
		return src, nil
	}

	cachePath := path.Join("scaled", key+".msgpack.zst")
	if l.disk != nil {
		var si scaledImage
		stored, err := l.disk.RetrieveObject(cachePath, &si)
		if err == nil && si.Width == w && si.Height == h && len(si.Pix) == 4*w*h && !l.newerThan(name, stored) {
			img := &image.RGBA{Pix: si.Pix, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
			l.images.Add(key, img)
			return img, nil
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), xdraw.Src, nil)
	l.images.Add(key, dst)

	if l.disk != nil {
		if err := l.disk.StoreObject(cachePath, scaledImage{Width: w, Height: h, Pix: dst.Pix}); err != nil {
			l.lg.Warnf("%s: unable to cache scaled image: %v", key, err)
		}
	}
	return dst, nil
}

// newerThan reports whether the source of image name was modified after
// t.
func (l *Loader) newerThan(name string, t time.Time) bool {
	for _, p := range []string{name, name + ".zst"} {
		if fi, err := fs.Stat(l.fsys, path.Join("images", p)); err == nil {
			return fi.ModTime().After(t)
		}
	}
	return true
}

// Preload decodes the given images in parallel so that the first draw of
// a page does not have to wait for them. Loading stops at the first
// error, which is returned.
func (l *Loader) Preload(ctx context.Context, names []string) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())

	for _, name := range names {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := l.Image(name)
			return err
		})
	}
	return eg.Wait()
}

// Purge drops all decoded images from memory.
func (l *Loader) Purge() {
	l.images.Purge()
}
