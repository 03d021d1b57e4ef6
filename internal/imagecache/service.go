package imagecache

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"polereview/internal/config"
	"polereview/internal/logging"
)

// Rendition distinguishes the two cached image sizes.
type Rendition string

const (
	RenditionThumbnail Rendition = "thumbnail"
	RenditionLarge     Rendition = "large"
)

// Result is one decoded rendition handed to the UI-side consumer. Cache hits
// and fresh decodes travel through the same queue so the consumer applies
// them uniformly.
type Result struct {
	RequestID string
	Token     uint64
	Rendition Rendition
	Path      string
	Image     image.Image
	Fit       FitGeometry
	FromCache bool
}

type request struct {
	id        string
	token     uint64
	rendition Rendition
	path      string
	viewportW int
	viewportH int
}

type largeKey struct {
	path string
	vw   int
	vh   int
}

type thumbEntry struct {
	img image.Image
	mod time.Time
}

type largeEntry struct {
	img image.Image
	fit FitGeometry
	mod time.Time
}

// Service owns the thumbnail and large-view caches, the navigation token, and
// the single result queue. One instance is constructed at startup and passed
// to whichever component issues load requests.
type Service struct {
	logger        *slog.Logger
	thumbSize     int
	drainInterval time.Duration

	token atomic.Uint64

	mu     sync.RWMutex
	thumbs map[string]thumbEntry
	large  map[largeKey]largeEntry

	requests chan request
	results  chan Result
	flight   singleflight.Group

	workerCount int
	wg          sync.WaitGroup
	startOnce   sync.Once
}

const (
	requestQueueDepth = 64
	resultQueueDepth  = 256
)

// NewService constructs the cache service from viewer configuration.
func NewService(cfg *config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	viewer := config.Default().Viewer
	if cfg != nil {
		viewer = cfg.Viewer
	}
	return &Service{
		logger:        logging.NewComponentLogger(logger, "imagecache"),
		thumbSize:     viewer.ThumbnailSize,
		drainInterval: time.Duration(viewer.DrainIntervalMS) * time.Millisecond,
		thumbs:        make(map[string]thumbEntry),
		large:         make(map[largeKey]largeEntry),
		requests:      make(chan request, requestQueueDepth),
		results:       make(chan Result, resultQueueDepth),
		workerCount:   viewer.WorkerCount,
	}
}

// Start launches the bounded decode worker pool. Workers exit when ctx is
// canceled; in-flight decodes finish but their results go nowhere.
func (s *Service) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		for i := 0; i < s.workerCount; i++ {
			s.wg.Add(1)
			go s.worker(ctx)
		}
	})
}

// Wait blocks until every worker has exited. Call after canceling the Start
// context.
func (s *Service) Wait() {
	s.wg.Wait()
}

// DrainInterval returns the configured consumer tick.
func (s *Service) DrainInterval() time.Duration {
	return s.drainInterval
}

// Navigate increments the navigation token and returns the new value. Results
// queued under an older token are discarded at drain time; this is the only
// cancellation mechanism.
func (s *Service) Navigate() uint64 {
	return s.token.Add(1)
}

// Token returns the live navigation token.
func (s *Service) Token() uint64 {
	return s.token.Load()
}

// RequestThumbnail asks for the fixed-size thumbnail rendition of path.
func (s *Service) RequestThumbnail(path string) {
	token := s.token.Load()

	if cached, hit := s.cachedThumb(path); hit {
		s.enqueue(Result{
			RequestID: uuid.NewString(),
			Token:     token,
			Rendition: RenditionThumbnail,
			Path:      path,
			Image:     cached,
			FromCache: true,
		})
		return
	}

	s.dispatch(request{
		id:        uuid.NewString(),
		token:     token,
		rendition: RenditionThumbnail,
		path:      path,
	})
}

// RequestLarge asks for the viewport-fit rendition of path. Entries are keyed
// by (path, viewport) so a viewport resize never reuses a stale rendition.
func (s *Service) RequestLarge(path string, viewportW, viewportH int) {
	token := s.token.Load()

	key := largeKey{path: path, vw: viewportW, vh: viewportH}
	if cached, hit := s.cachedLarge(key); hit {
		s.enqueue(Result{
			RequestID: uuid.NewString(),
			Token:     token,
			Rendition: RenditionLarge,
			Path:      path,
			Image:     cached.img,
			Fit:       cached.fit,
			FromCache: true,
		})
		return
	}

	s.dispatch(request{
		id:        uuid.NewString(),
		token:     token,
		rendition: RenditionLarge,
		path:      path,
		viewportW: viewportW,
		viewportH: viewportH,
	})
}

// Drain applies every queued result whose token still matches the live token
// and discards the rest. It never blocks; call it from a fixed-interval
// ticker. Returns the number of results applied.
func (s *Service) Drain(apply func(Result)) int {
	applied := 0
	for {
		select {
		case res := <-s.results:
			live := s.token.Load()
			if res.Token != live {
				s.logger.Debug("discarding stale result",
					logging.String(logging.FieldRequestID, res.RequestID),
					logging.String(logging.FieldPhoto, res.Path),
					logging.Uint64(logging.FieldToken, res.Token),
					logging.Uint64("live_token", live))
				continue
			}
			if apply != nil {
				apply(res)
			}
			applied++
		default:
			return applied
		}
	}
}

// Invalidate drops every cached rendition of path. Cache hits call it
// themselves when the file's mtime no longer matches the decoded entry, which
// is how a markup burn from another process evicts its stale renditions.
func (s *Service) Invalidate(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.thumbs, path)
	for key := range s.large {
		if key.path == path {
			delete(s.large, key)
		}
	}
}

// LargeFit returns the stored fit geometry for a cached large rendition, used
// by the annotation transform to map screen coordinates back to source pixels.
func (s *Service) LargeFit(path string, viewportW, viewportH int) (FitGeometry, bool) {
	entry, ok := s.cachedLarge(largeKey{path: path, vw: viewportW, vh: viewportH})
	if !ok {
		return FitGeometry{}, false
	}
	return entry.fit, true
}

// cachedThumb returns the cached thumbnail only while the file on disk is
// unchanged since it was decoded.
func (s *Service) cachedThumb(path string) (image.Image, bool) {
	s.mu.RLock()
	entry, ok := s.thumbs[path]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !fresh(path, entry.mod) {
		s.Invalidate(path)
		return nil, false
	}
	return entry.img, true
}

func (s *Service) cachedLarge(key largeKey) (largeEntry, bool) {
	s.mu.RLock()
	entry, ok := s.large[key]
	s.mu.RUnlock()
	if !ok {
		return largeEntry{}, false
	}
	if !fresh(key.path, entry.mod) {
		s.Invalidate(key.path)
		return largeEntry{}, false
	}
	return entry, true
}

func fresh(path string, mod time.Time) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.ModTime().Equal(mod)
}

// RenderLarge decodes and fits a rendition synchronously, bypassing the result
// queue but sharing the caches and in-flight deduplication. Serve-mode HTTP
// handlers and the report exporter use it.
func (s *Service) RenderLarge(ctx context.Context, path string, viewportW, viewportH int) (image.Image, FitGeometry, error) {
	key := largeKey{path: path, vw: viewportW, vh: viewportH}
	if cached, hit := s.cachedLarge(key); hit {
		return cached.img, cached.fit, nil
	}
	entry, err := s.loadLarge(ctx, key)
	if err != nil {
		return nil, FitGeometry{}, err
	}
	return entry.img, entry.fit, nil
}

func (s *Service) dispatch(req request) {
	select {
	case s.requests <- req:
	default:
		// The pool is saturated; navigation has outrun decoding. Dropping the
		// request bounds resource usage, the UI simply re-requests on the next
		// display.
		s.logger.Warn("decode queue full, dropping request",
			logging.String(logging.FieldRequestID, req.id),
			logging.String(logging.FieldPhoto, req.path),
			logging.String("rendition", string(req.rendition)))
	}
}

func (s *Service) enqueue(res Result) {
	select {
	case s.results <- res:
	default:
		s.logger.Warn("result queue full, dropping result",
			logging.String(logging.FieldRequestID, res.RequestID),
			logging.String(logging.FieldPhoto, res.Path))
	}
}

func (s *Service) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-s.requests:
			s.serve(ctx, req)
		}
	}
}

func (s *Service) serve(ctx context.Context, req request) {
	switch req.rendition {
	case RenditionThumbnail:
		img, err := s.loadThumbnail(ctx, req.path)
		if err != nil {
			s.logDecodeFailure(req, err)
			return
		}
		s.enqueue(Result{
			RequestID: req.id,
			Token:     req.token,
			Rendition: RenditionThumbnail,
			Path:      req.path,
			Image:     img,
		})
	case RenditionLarge:
		entry, err := s.loadLarge(ctx, largeKey{path: req.path, vw: req.viewportW, vh: req.viewportH})
		if err != nil {
			s.logDecodeFailure(req, err)
			return
		}
		s.enqueue(Result{
			RequestID: req.id,
			Token:     req.token,
			Rendition: RenditionLarge,
			Path:      req.path,
			Image:     entry.img,
			Fit:       entry.fit,
		})
	}
}

func (s *Service) loadThumbnail(ctx context.Context, path string) (image.Image, error) {
	key := "thumb:" + path
	value, err, _ := s.flight.Do(key, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		src, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		thumb := imaging.Fit(src, s.thumbSize, s.thumbSize, imaging.Lanczos)

		s.mu.Lock()
		s.thumbs[path] = thumbEntry{img: thumb, mod: info.ModTime()}
		s.mu.Unlock()
		return thumb, nil
	})
	if err != nil {
		return nil, err
	}
	img, ok := value.(image.Image)
	if !ok {
		return nil, errors.New("unexpected thumbnail flight value")
	}
	return img, nil
}

func (s *Service) loadLarge(ctx context.Context, key largeKey) (largeEntry, error) {
	flightKey := fmt.Sprintf("large:%s:%dx%d", key.path, key.vw, key.vh)
	value, err, _ := s.flight.Do(flightKey, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(key.path)
		if err != nil {
			return largeEntry{}, fmt.Errorf("stat %s: %w", key.path, err)
		}
		src, err := imaging.Open(key.path, imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", key.path, err)
		}
		bounds := src.Bounds()
		fit := fitViewport(bounds.Dx(), bounds.Dy(), key.vw, key.vh)
		resized := imaging.Resize(src, fit.Width, fit.Height, imaging.Lanczos)
		entry := largeEntry{img: resized, fit: fit, mod: info.ModTime()}

		s.mu.Lock()
		s.large[key] = entry
		s.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return largeEntry{}, err
	}
	entry, ok := value.(largeEntry)
	if !ok {
		return largeEntry{}, errors.New("unexpected large flight value")
	}
	return entry, nil
}

// Decode failures produce no cache entry and no result; the display falls
// back to its empty state. There is no retry.
func (s *Service) logDecodeFailure(req request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.logger.Warn("image decode failed",
		logging.String(logging.FieldRequestID, req.id),
		logging.String(logging.FieldPhoto, req.path),
		logging.String("rendition", string(req.rendition)),
		logging.Error(err))
}
