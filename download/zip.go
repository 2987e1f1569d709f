/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Authors:
 *	- Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package download

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/sanger-pathogens/monocle-sub000/lanefiles"
)

const (
	// DefaultPollInterval and DefaultTimeout bound how long a request for a
	// token whose archive another process is still writing will wait.
	DefaultPollInterval = 6 * time.Second
	DefaultTimeout      = 120 * time.Second
)

// Materializer builds zip archives for planned download batches in a shared
// directory, at most once per token. Multiple processes may share the
// directory; safety relies on archives only being planned with fresh unique
// tokens, and on waiting for an existing archive instead of rebuilding it.
type Materializer struct {
	Dir          string
	ViewRoot     string
	PollInterval time.Duration
	Timeout      time.Duration
	Logger       log15.Logger

	buildFn func(zipPath string, files *lanefiles.FileMapping) error
}

// NewMaterializer returns a Materializer for archives in the given shared
// directory, resolving params file paths against the given view root.
func NewMaterializer(dir, viewRoot string, logger log15.Logger) *Materializer {
	m := &Materializer{
		Dir:          dir,
		ViewRoot:     viewRoot,
		PollInterval: DefaultPollInterval,
		Timeout:      DefaultTimeout,
		Logger:       logger,
	}

	m.buildFn = m.buildArchive

	return m
}

// WriteParams records the file mapping for a planned batch, which must
// happen before the batch's archive can be requested.
func (m *Materializer) WriteParams(token string, files *lanefiles.FileMapping) error {
	return WriteParams(m.Dir, token, files, m.ViewRoot)
}

// RequestDownload returns the path to the zip archive for the given token,
// building it on first request.
//
// If the archive already exists it is never rebuilt; an archive still being
// written by a concurrent request is waited for (ErrArchiveTimeout if it
// takes longer than Timeout). A token with no params file gets
// ErrUnknownToken: the download has expired or never existed.
func (m *Materializer) RequestDownload(token string) (string, error) {
	zipPath := filepath.Join(m.Dir, token+zipSuffix)

	if fileExists(zipPath) {
		return zipPath, m.waitForComplete(zipPath)
	}

	files, err := ReadParams(m.Dir, token, m.ViewRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrUnknownToken
		}

		return "", err
	}

	m.Logger.Info("building zip archive", "token", token, "samples", files.Len())

	return zipPath, m.buildFn(zipPath, files)
}

func (m *Materializer) waitForComplete(zipPath string) error {
	deadline := time.Now().Add(m.Timeout)

	for {
		if archiveComplete(zipPath) {
			return nil
		}

		if time.Now().After(deadline) {
			return ErrArchiveTimeout
		}

		m.Logger.Debug("waiting for in-progress archive", "path", zipPath)
		time.Sleep(m.PollInterval)
	}
}

// archiveComplete reports whether the archive's writer has finished: the
// central directory is only written when the zip writer is closed, so a
// half-written archive fails to open.
func archiveComplete(zipPath string) bool {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return false
	}

	r.Close()

	return true
}

// buildArchive writes the zip with one entry per file, organized under each
// sample's public name.
func (m *Materializer) buildArchive(zipPath string, files *lanefiles.FileMapping) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}

	w := zip.NewWriter(f)

	for _, name := range files.Names() {
		for _, path := range files.Files(name) {
			if err := addArchiveEntry(w, name, path); err != nil {
				w.Close()
				f.Close()

				return err
			}
		}
	}

	if err := w.Close(); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

func addArchiveEntry(w *zip.Writer, publicName, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}

	defer src.Close()

	dst, err := w.Create(filepath.ToSlash(filepath.Join(publicName, filepath.Base(path))))
	if err != nil {
		return err
	}

	_, err = io.Copy(dst, src)

	return err
}
