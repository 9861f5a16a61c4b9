// Package capture provides image-capture devices for the receipt channel.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/pipeline"
)

var ErrClosed = errors.New("capture stream closed")

// FileDevice reads the frame from an image file on disk.
type FileDevice struct {
	Path string
}

// Acquire fails with pipeline.ErrCaptureUnavailable if the file cannot be opened.
func (d FileDevice) Acquire(ctx context.Context) (pipeline.CaptureStream, error) {
	f, err := os.Open(d.Path)
	if err != nil {
		return nil, fmt.Errorf("FileDevice.Acquire: %w", err)
	}
	return &fileStream{f: f}, nil
}

type fileStream struct {
	mu     sync.Mutex
	f      *os.File
	closed bool
}

func (s *fileStream) Still(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if _, err := s.f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("fileStream.Still: seek: %w", err)
	}
	img, _, err := image.Decode(s.f)
	if err != nil {
		return nil, fmt.Errorf("fileStream.Still: decode %s: %w", s.f.Name(), err)
	}
	return img, nil
}

func (s *fileStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.f.Close()
}

// UploadDevice serves a frame that was uploaded as encoded image bytes.
type UploadDevice struct {
	Data []byte
}

// Acquire fails when no image was uploaded.
func (d UploadDevice) Acquire(ctx context.Context) (pipeline.CaptureStream, error) {
	if len(d.Data) == 0 {
		return nil, errors.New("UploadDevice.Acquire: no image data")
	}
	return &uploadStream{data: d.Data}, nil
}

type uploadStream struct {
	mu     sync.Mutex
	data   []byte
	closed bool
}

func (s *uploadStream) Still(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	img, _, err := image.Decode(bytes.NewReader(s.data))
	if err != nil {
		return nil, fmt.Errorf("uploadStream.Still: decode: %w", err)
	}
	return img, nil
}

func (s *uploadStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.data = nil
	return nil
}
