// timer/refresh.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package timer

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/tpanel/tpanel/log"
)

// Fetcher retrieves an image from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url, user, password string) (image.Image, error)
}

// ImageRefresh reloads a dynamic image periodically and hands every image
// it gets to a callback.
type ImageRefresh struct {
	*Timer

	url      string
	user     string
	password string
	fetcher  Fetcher
	callback func(image.Image)
	lg       *log.Logger
}

// NewImageRefresh returns a stopped ImageRefresh. The image is loaded as
// soon as it is started and then after every interval; with once set it
// is loaded a single time.
func NewImageRefresh(url, user, password string, interval time.Duration, once bool,
	f Fetcher, cb func(image.Image), lg *log.Logger) *ImageRefresh {
	r := &ImageRefresh{
		url:      url,
		user:     user,
		password: password,
		fetcher:  f,
		callback: cb,
		lg:       lg.With(slog.String("url", url)),
	}
	r.Timer = New(interval, once, r.refresh, r.lg)
	r.Timer.SetImmediate(true)
	return r
}

func (r *ImageRefresh) URL() string { return r.url }

func (r *ImageRefresh) refresh(ctx context.Context, n uint64) {
	img, err := r.fetcher.Fetch(ctx, r.url, r.user, r.password)
	if err != nil {
		if ctx.Err() == nil {
			r.lg.Warn("image refresh failed", slog.Any("error", err), slog.Uint64("attempt", n))
		}
		return
	}
	r.callback(img)
}
