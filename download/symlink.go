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
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const maxNameAttempts = 32

// Publisher exposes private data directories through randomly named symlinks
// in a web-served directory, so that download URLs are unguessable and never
// reveal internal directory structure.
type Publisher struct {
	WebDir        string
	URLPathPrefix string
}

// NewPublisher returns a Publisher creating symlinks in webDir and reporting
// URLs under urlPathPrefix. Missing configuration or a missing webDir is a
// configuration error, never silently defaulted.
func NewPublisher(webDir, urlPathPrefix string) (*Publisher, error) {
	if webDir == "" || urlPathPrefix == "" {
		return nil, ErrMissingPublish
	}

	if !dirExists(webDir) {
		return nil, ErrMissingDirectory
	}

	return &Publisher{
		WebDir:        webDir,
		URLPathPrefix: urlPathPrefix,
	}, nil
}

// Publish creates a randomly named symlink to targetDir and returns the URL
// path it will be served under. Name collisions are retried with fresh
// random names.
func (p *Publisher) Publish(targetDir string) (string, error) {
	if !dirExists(targetDir) {
		return "", ErrMissingDirectory
	}

	target, err := filepath.Abs(targetDir)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := newToken()

		linkPath := filepath.Join(p.WebDir, name)
		if fileExists(linkPath) {
			continue
		}

		if err := os.Symlink(target, linkPath); err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}

			return "", err
		}

		return p.URLPathPrefix + "/" + name, nil
	}

	return "", ErrNameCollisions
}
