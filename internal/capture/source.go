// Package capture supplies frames from still images, video files and camera devices.
package capture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"fiducial-detector/internal/logger"

	"gocv.io/x/gocv"
)

// ErrEndOfStream is returned by Read once a video or device has no more frames.
var ErrEndOfStream = errors.New("end of stream")

var ErrClosed = errors.New("source closed")

type Kind int

const (
	KindImage Kind = iota
	KindVideo
	KindDevice
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindDevice:
		return "device"
	default:
		return "unknown"
	}
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true,
	".tif": true, ".tiff": true, ".webp": true,
}

// Source yields frames into a caller-owned Mat. Shutdown releases the underlying handle
// and may be called from another goroutine.
type Source interface {
	Read(dst *gocv.Mat) error
	Kind() Kind
	Name() string
	Shutdown()
}

// Classify decides how target is opened: a bare integer is a camera device index, a
// known image extension a still image, anything else a video file or stream URL.
func Classify(target string) (Kind, int) {
	if id, err := strconv.Atoi(target); err == nil && id >= 0 {
		return KindDevice, id
	}
	if imageExtensions[strings.ToLower(filepath.Ext(target))] {
		return KindImage, 0
	}
	return KindVideo, 0
}

// Open opens target as classified by Classify.
func Open(target string, log logger.Logger) (Source, error) {
	if log == nil {
		log = logger.NoOp{}
	}

	kind, device := Classify(target)
	log.Debug("FrameSource", "opening source", map[string]interface{}{
		"target": target,
		"kind":   kind.String(),
	})

	switch kind {
	case KindImage:
		return OpenImage(target)
	case KindDevice:
		vc, err := gocv.VideoCaptureDevice(device)
		if err != nil {
			if vc != nil {
				vc.Close()
			}
			return nil, fmt.Errorf("open camera %d: %w", device, err)
		}
		return &videoSource{capture: vc, kind: KindDevice, name: target}, nil
	default:
		vc, err := gocv.VideoCaptureFile(target)
		if err != nil {
			if vc != nil {
				vc.Close()
			}
			return nil, fmt.Errorf("open video %s: %w", target, err)
		}
		return &videoSource{capture: vc, kind: KindVideo, name: target}, nil
	}
}

// imageSource returns the same decoded still image on every read.
type imageSource struct {
	mu    sync.Mutex
	frame gocv.Mat
	name  string
}

func OpenImage(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image with OpenCV: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to decode image with OpenCV: %s", path)
	}

	return &imageSource{frame: mat, name: path}, nil
}

func (s *imageSource) Read(dst *gocv.Mat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frame.Empty() {
		return ErrClosed
	}
	s.frame.CopyTo(dst)
	return nil
}

func (s *imageSource) Kind() Kind   { return KindImage }
func (s *imageSource) Name() string { return s.name }

func (s *imageSource) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame.Close()
	s.frame = gocv.NewMat()
}

type videoSource struct {
	mu      sync.Mutex
	capture *gocv.VideoCapture
	kind    Kind
	name    string
}

func (s *videoSource) Read(dst *gocv.Mat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture == nil {
		return ErrClosed
	}
	if ok := s.capture.Read(dst); !ok || dst.Empty() {
		return ErrEndOfStream
	}
	return nil
}

func (s *videoSource) Kind() Kind   { return s.kind }
func (s *videoSource) Name() string { return s.name }

func (s *videoSource) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture != nil {
		s.capture.Close()
		s.capture = nil
	}
}
