// Package imageseq treats a directory of still images as a video stream.
// Frames are read in lexical file name order and written back as numbered
// JPEG files.
package imageseq

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"flockscope/internal/analysis"
)

const DefaultFPS = 25

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Backend opens image directories. Still images carry no frame rate so the
// configured FPS is reported as the stream rate.
type Backend struct {
	fps       float64
	quality   int
	annotator *Annotator
}

func NewBackend(fps float64) *Backend {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Backend{
		fps:       fps,
		quality:   90,
		annotator: &Annotator{},
	}
}

func (b *Backend) OpenSource(path string) (analysis.FrameSource, error) {
	return OpenReader(path, b.fps)
}

func (b *Backend) OpenSink(path string, meta analysis.Metadata) (analysis.VideoSink, error) {
	return OpenWriter(path, b.quality)
}

func (b *Backend) Annotator() analysis.Annotator {
	return b.annotator
}

// Image is a decoded frame.
type Image struct {
	*image.RGBA
}

func NewImage(img image.Image) *Image {
	if rgba, ok := img.(*image.RGBA); ok {
		return &Image{RGBA: rgba}
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return &Image{RGBA: rgba}
}

func (i *Image) Size() (int, int) {
	b := i.Bounds()
	return b.Dx(), b.Dy()
}

func (i *Image) Close() error {
	return nil
}

func (i *Image) BGRBytes() ([]byte, error) {
	w, h := i.Size()
	out := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := i.Pix[y*i.Stride : y*i.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			out = append(out, row[x+2], row[x+1], row[x])
		}
	}
	return out, nil
}

// Reader is a FrameSource over an image directory.
type Reader struct {
	files []string
	next  int
	meta  analysis.Metadata
}

func OpenReader(dir string, fps float64) (*Reader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images in %s", dir)
	}
	sort.Strings(files)

	first, err := os.Open(files[0])
	if err != nil {
		return nil, err
	}
	defer first.Close()
	cfg, _, err := image.DecodeConfig(first)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", files[0], err)
	}

	return &Reader{
		files: files,
		meta: analysis.Metadata{
			FPS:         fps,
			Width:       cfg.Width,
			Height:      cfg.Height,
			TotalFrames: len(files),
		},
	}, nil
}

func (r *Reader) Metadata() analysis.Metadata {
	return r.meta
}

func (r *Reader) Next() (analysis.Canvas, error) {
	if r.next >= len(r.files) {
		return nil, io.EOF
	}
	name := r.files[r.next]
	r.next++

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return NewImage(img), nil
}

func (r *Reader) Close() error {
	r.next = len(r.files)
	return nil
}

// Writer is a VideoSink writing frame_NNNNNN.jpg files into a directory.
type Writer struct {
	dir     string
	quality int
	closed  bool
}

func OpenWriter(dir string, quality int) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Writer{dir: dir, quality: quality}, nil
}

func FrameName(index int) string {
	return fmt.Sprintf("frame_%06d.jpg", index)
}

func (w *Writer) Write(f *analysis.Frame) error {
	if w.closed {
		return errors.New("writer is closed")
	}
	img, ok := f.Canvas.(*Image)
	if !ok {
		return fmt.Errorf("unsupported canvas %T", f.Canvas)
	}

	path := filepath.Join(w.dir, FrameName(f.Index))
	tmpPath := path + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(out, img.RGBA, &jpeg.Options{Quality: w.quality}); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

func (w *Writer) Close() error {
	w.closed = true
	return nil
}
