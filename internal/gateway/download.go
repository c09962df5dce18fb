package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// File is a binary payload handed to a Saver.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Saver delivers a downloaded file to the user.
type Saver interface {
	Save(ctx context.Context, f File) error
}

// Download fetches path as a binary payload and hands it to saver under
// filename. It returns once the saver has consumed the body.
func (c *Client) Download(ctx context.Context, path, filename string, saver Saver) error {
	resp, err := c.send(ctx, http.MethodGet, path, nil, nil, "application/octet-stream, application/pdf")
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := saver.Save(ctx, File{Name: filename, ContentType: contentType, Body: resp.Body}); err != nil {
		return fmt.Errorf("gateway: save %s: %w", filename, err)
	}
	return nil
}

// ResponseSaver streams the file to a browser as an attachment.
type ResponseSaver struct {
	W http.ResponseWriter
}

// Save writes attachment headers and copies the body.
func (s ResponseSaver) Save(ctx context.Context, f File) error {
	s.W.Header().Set("Content-Type", f.ContentType)
	s.W.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	s.W.WriteHeader(http.StatusOK)
	_, err := io.Copy(s.W, f.Body)
	return err
}

// DirSaver writes files into a directory.
type DirSaver struct {
	Dir string
	// Written receives the absolute path of each saved file.
	Written func(path string)
}

// Save creates Dir/f.Name and copies the body into it.
func (s DirSaver) Save(ctx context.Context, f File) error {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, filepath.Base(f.Name))
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, f.Body); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if s.Written != nil {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		s.Written(path)
	}
	return nil
}
