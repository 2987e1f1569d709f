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

// Package download plans bulk sample-data downloads, materializes them as
// bounded-size zip archives in a shared directory, and publishes them via
// unguessable symlinks.
package download

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrUnknownToken     = Error("no download known for that token")
	ErrArchiveTimeout   = Error("timed out waiting for archive to complete")
	ErrMissingDirectory = Error("download directory does not exist")
	ErrMissingPublish   = Error("web directory and url path prefix must be configured")
	ErrNameCollisions   = Error("could not find an unused symlink name")

	paramsSuffix = ".params.json"
	zipSuffix    = ".zip"
	filePerm     = 0644
)

// newToken returns a random opaque hex string, used for download batch
// tokens and published symlink names.
func newToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
