package background

import (
	"image"

	"github.com/gogpu/cdivs/host"
	"github.com/gogpu/cdivs/internal/cache"
	"github.com/gogpu/cdivs/internal/logx"
)

// imageEntry is one shared image load.
type imageEntry struct {
	img     image.Image
	err     error
	done    bool
	waiters []func(image.Image)
}

var images = cache.New[string, *imageEntry](256)

// loadImage calls fn with the decoded image for src, immediately when it
// is cached and after the load otherwise. Failed loads never call fn.
func loadImage(loader host.ImageLoader, src string, fn func(image.Image)) {
	if loader == nil {
		logx.Diag("background", "no image loader", "src", src)
		return
	}
	e := images.GetOrCreate(src, func() *imageEntry { return &imageEntry{} })
	switch {
	case e.done && e.err == nil:
		fn(e.img)
		return
	case e.done:
		return
	}
	e.waiters = append(e.waiters, fn)
	if len(e.waiters) > 1 {
		return
	}
	loader.LoadImage(src, func(img image.Image, err error) {
		e.img, e.err, e.done = img, err, true
		if err != nil {
			logx.Diag("background", "image load failed", "src", src, "err", err)
			e.waiters = nil
			return
		}
		waiters := e.waiters
		e.waiters = nil
		for _, w := range waiters {
			w(img)
		}
	})
}
