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

// Package institutions holds the directory of member institutions, keyed by
// institution key. The directory itself is maintained externally (in LDAP);
// here we only consume its key to name mapping.
package institutions

import (
	"encoding/json"
	"os"
	"sort"
)

// Institution is one member institution of a project.
type Institution struct {
	Name string `json:"name"`
}

// Directory maps institution keys to Institutions.
type Directory map[string]Institution

// FromJSONFile loads a Directory from a JSON file shaped like
// {"Key": {"name": "Full Name"}, ...}.
func FromJSONFile(path string) (Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var d Directory
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}

	return d, nil
}

// FindByKey returns the institution with the given key, and whether it is
// known to us.
func (d Directory) FindByKey(key string) (Institution, bool) {
	inst, ok := d[key]

	return inst, ok
}

// Keys returns all institution keys, sorted.
func (d Directory) Keys() []string {
	keys := make([]string, 0, len(d))

	for key := range d {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
