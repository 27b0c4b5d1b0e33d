package gallery

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Source supplies the stored full-resolution-enough thumbnail blob for a
// content hash, falling back to resolving the hash from the file path.
// A nil slice with a nil error means the source has no data for the key.
type Source interface {
	ThumbnailBytes(ctx context.Context, hash, path string) ([]byte, error)
}

const (
	requestQueueCap   = 512
	completedQueueCap = 512
)

// Pipeline turns Requests into Completed results on a background worker so
// the UI goroutine never blocks on I/O or decoding. A single worker keeps
// completion order equal to request order; callers must not rely on that.
type Pipeline struct {
	disk   *DiskCache
	source Source
	opts   Options

	requests  chan Request
	completed chan Completed
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewPipeline(disk *DiskCache, source Source, opts Options) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		disk:      disk,
		source:    source,
		opts:      opts.withDefaults(),
		requests:  make(chan Request, requestQueueCap),
		completed: make(chan Completed, completedQueueCap),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go p.worker(ctx)
	return p
}

// Enqueue hands a request to the worker without blocking and reports
// whether it was accepted. A full queue is not an error: the caller drops
// the request and may retry on the next render pass.
func (p *Pipeline) Enqueue(req Request) bool {
	select {
	case p.requests <- req:
		return true
	default:
		return false
	}
}

// Poll drains up to max completed results without blocking, invoking fn for
// each, and returns the number consumed. Only the UI goroutine calls Poll.
func (p *Pipeline) Poll(max int, fn func(Completed)) int {
	n := 0
	for n < max {
		select {
		case res := <-p.completed:
			fn(res)
			n++
		default:
			return n
		}
	}
	return n
}

// Close stops the worker. Requests already dequeued run to completion.
func (p *Pipeline) Close() {
	p.cancel()
	<-p.done
}

func (p *Pipeline) worker(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-p.requests:
			res := p.process(ctx, req)
			select {
			case p.completed <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

// process resolves one request: disk cache, then the external source, then
// decode + cover-crop + encode with a write-through to disk. Every failure
// degrades to an absent result; errors never cross the queue boundary.
func (p *Pipeline) process(ctx context.Context, req Request) Completed {
	res := Completed{Index: req.Index, Path: req.Path, ID: req.ID}
	key := Key{ID: req.ID, Size: p.opts.ThumbWidth}

	if data := p.disk.Read(key); data != nil {
		res.PNG = data
		return res
	}

	src, err := p.source.ThumbnailBytes(ctx, req.ID, req.Path)
	if err != nil || len(src) == 0 {
		return res
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return res
	}

	thumb := coverCrop(img, p.opts.ThumbWidth, p.opts.ThumbHeight())
	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return res
	}

	res.PNG = buf.Bytes()
	p.disk.Write(key, res.PNG)
	return res
}

// coverCrop scales the source to completely fill targetW x targetH while
// preserving aspect ratio, cropping the excess rather than letterboxing.
func coverCrop(src image.Image, targetW, targetH int) image.Image {
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}

	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW <= 0 || srcH <= 0 {
		return image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	}

	targetRatio := float64(targetW) / float64(targetH)
	srcRatio := float64(srcW) / float64(srcH)

	crop := b
	if srcRatio > targetRatio {
		// Source is wider: crop left/right.
		newW := int(float64(srcH) * targetRatio)
		left := b.Min.X + max(0, (srcW-newW)/2)
		crop = image.Rect(left, b.Min.Y, left+newW, b.Max.Y)
	} else {
		// Source is taller: crop top/bottom.
		newH := int(float64(srcW) / targetRatio)
		top := b.Min.Y + max(0, (srcH-newH)/2)
		crop = image.Rect(b.Min.X, top, b.Max.X, top+newH)
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	// ApproxBiLinear for speed; these are small previews.
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}
