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

package lanefiles

import (
	"encoding/json"
	"sort"
)

// FileMapping is a public-name to file-paths mapping that remembers insertion
// order, so that downstream partitioning is deterministic.
type FileMapping struct {
	order []string
	files map[string][]string
}

// NewFileMapping returns an empty FileMapping.
func NewFileMapping() *FileMapping {
	return &FileMapping{files: make(map[string][]string)}
}

// Add appends the given paths to the entry for the given public name,
// creating the entry if needed.
func (m *FileMapping) Add(publicName string, paths ...string) {
	if _, exists := m.files[publicName]; !exists {
		m.order = append(m.order, publicName)
	}

	m.files[publicName] = append(m.files[publicName], paths...)
}

// Names returns the public names in insertion order.
func (m *FileMapping) Names() []string {
	return m.order
}

// Files returns the file paths for the given public name.
func (m *FileMapping) Files(publicName string) []string {
	return m.files[publicName]
}

// Len returns the number of public names in the mapping.
func (m *FileMapping) Len() int {
	return len(m.order)
}

// MarshalJSON serializes the mapping as a plain JSON object.
func (m *FileMapping) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.files)
}

// UnmarshalJSON loads the mapping from a plain JSON object. JSON objects
// carry no order, so entries are ordered by name for determinism.
func (m *FileMapping) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &m.files); err != nil {
		return err
	}

	m.order = make([]string, 0, len(m.files))

	for name := range m.files {
		m.order = append(m.order, name)
	}

	sort.Strings(m.order)

	return nil
}
