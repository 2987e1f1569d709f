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
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/sanger-pathogens/monocle-sub000/lanefiles"
)

// WriteParams serializes the batch's file mapping to {dir}/{token}.params.json.
// Paths are stored relative to the view root with no leading slash, so params
// files never expose internal directory structure.
func WriteParams(dir, token string, files *lanefiles.FileMapping, viewRoot string) error {
	rel := lanefiles.NewFileMapping()

	for _, name := range files.Names() {
		for _, path := range files.Files(name) {
			rel.Add(name, strings.TrimPrefix(strings.TrimPrefix(path, viewRoot), "/"))
		}
	}

	data, err := json.MarshalIndent(rel, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(paramsPath(dir, token), data, filePerm)
}

// ReadParams loads the file mapping for the given token, rehydrating the
// stored relative paths against the view root. Returns an os.IsNotExist
// error if no params file exists for the token.
func ReadParams(dir, token, viewRoot string) (*lanefiles.FileMapping, error) {
	data, err := os.ReadFile(paramsPath(dir, token))
	if err != nil {
		return nil, err
	}

	rel := lanefiles.NewFileMapping()
	if err := json.Unmarshal(data, rel); err != nil {
		return nil, err
	}

	files := lanefiles.NewFileMapping()

	for _, name := range rel.Names() {
		for _, path := range rel.Files(name) {
			files.Add(name, filepath.Join(viewRoot, path))
		}
	}

	return files, nil
}

func paramsPath(dir, token string) string {
	return filepath.Join(dir, token+paramsSuffix)
}
