package conversation

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileMicrophone "records" by pointing at an existing audio file. It stands
// in for a capture device in terminals, where none is available.
type FileMicrophone struct {
	Path string
	now  func() time.Time
}

func (m *FileMicrophone) Open(_ context.Context) (Stream, error) {
	if strings.TrimSpace(m.Path) == "" {
		return nil, ErrNoMicrophone
	}
	abs, err := filepath.Abs(m.Path)
	if err != nil {
		return nil, fmt.Errorf("conversation: resolve audio file: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("conversation: open audio file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("conversation: audio file %q is a directory", abs)
	}
	now := m.now
	if now == nil {
		now = time.Now
	}
	return &fileStream{path: abs, size: info.Size(), started: now(), now: now}, nil
}

type fileStream struct {
	path    string
	size    int64
	started time.Time
	now     func() time.Time
	done    bool
}

func (s *fileStream) Stop() (Clip, error) {
	if s.done {
		return Clip{}, errors.New("conversation: recording already finished")
	}
	s.done = true
	mimeType := mime.TypeByExtension(filepath.Ext(s.path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return Clip{
		Ref:      "file://" + filepath.ToSlash(s.path),
		MIMEType: mimeType,
		Size:     s.size,
		Duration: s.now().Sub(s.started),
	}, nil
}

func (s *fileStream) Close() error {
	s.done = true
	return nil
}
