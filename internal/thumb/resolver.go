package thumb

import (
	"context"
	"log/slog"
	"os"
	"time"

	"vjdeck/internal/catalog"
)

// DefaultProviderTimeout bounds a single illustration request so a hung
// provider degrades to the placeholder instead of pending forever.
const DefaultProviderTimeout = 30 * time.Second

// Resolver resolves a display image for a media item through an ordered
// fallback chain: sidecar image file, then embedded artwork (audio) or a
// captured frame (video), then a generated illustration shared
// process-wide by title.
type Resolver struct {
	Capturer        *FrameCapturer
	Provider        Provider
	Cache           *Cache
	ProviderTimeout time.Duration // 0 means DefaultProviderTimeout
	Log             *slog.Logger
}

// NewResolver wires a resolver with the given capture and illustration
// backends. Any of them may be nil; the corresponding stage is skipped.
func NewResolver(capturer *FrameCapturer, provider Provider, cache *Cache, log *slog.Logger) *Resolver {
	return &Resolver{
		Capturer: capturer,
		Provider: provider,
		Cache:    cache,
		Log:      log,
	}
}

// Resolve returns image bytes for item, or nil when every stage fails.
// sidecar maps extension-stripped category-relative paths to image files
// on disk. Failures at any stage fall through to the next stage; Resolve
// never returns an error and never retries the provider within one call.
func (r *Resolver) Resolve(ctx context.Context, item catalog.MediaFile, sidecar func(key string) (string, bool)) []byte {
	if sidecar != nil {
		if p, ok := sidecar(catalog.StripExt(item.RelPath)); ok {
			if b, err := os.ReadFile(p); err == nil && len(b) > 0 {
				return b
			}
		}
	}

	switch item.Type {
	case catalog.Video:
		if r.Capturer != nil {
			if b := r.Capturer.Capture(ctx, item.Path); len(b) > 0 {
				return b
			}
		}
	case catalog.Audio:
		if b := EmbeddedArtwork(item.Path); len(b) > 0 {
			return b
		}
	}

	return r.illustration(ctx, item.Name)
}

// illustration consults the process-wide cache keyed by the exact title
// so two surfaces showing the same item converge on the same image and
// the provider runs at most once per distinct title.
func (r *Resolver) illustration(ctx context.Context, title string) []byte {
	if r.Provider == nil || r.Cache == nil {
		return nil
	}
	b, err := r.Cache.GetOrCompute(title, func() ([]byte, error) {
		timeout := r.ProviderTimeout
		if timeout <= 0 {
			timeout = DefaultProviderTimeout
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return r.Provider.Generate(ctx, title)
	})
	if err != nil {
		if r.Log != nil {
			r.Log.Debug("illustration generation failed",
				slog.String("title", title),
				slog.String("error", err.Error()))
		}
		return nil
	}
	return b
}
