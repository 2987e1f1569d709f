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

import "github.com/sanger-pathogens/monocle-sub000/lanefiles"

// Batch is one planned zip archive: a fresh random token and the subset of
// the file mapping it will hold.
type Batch struct {
	Token string
	Files *lanefiles.FileMapping
}

// Partition splits the mapping into batches of at most maxPerZip entries.
// Entries are consumed strictly in insertion order, and are spread evenly
// across ceil(total/maxPerZip) batches rather than leaving a tiny trailing
// batch. Every batch gets a fresh random token, never reused.
func Partition(mapping *lanefiles.FileMapping, maxPerZip int) []Batch {
	total := mapping.Len()
	if total == 0 || maxPerZip <= 0 {
		return nil
	}

	numBatches := (total + maxPerZip - 1) / maxPerZip
	perBatch := (total + numBatches - 1) / numBatches
	names := mapping.Names()

	batches := make([]Batch, 0, numBatches)

	for start := 0; start < total; start += perBatch {
		end := start + perBatch
		if end > total {
			end = total
		}

		subset := lanefiles.NewFileMapping()

		for _, name := range names[start:end] {
			subset.Add(name, mapping.Files(name)...)
		}

		batches = append(batches, Batch{Token: newToken(), Files: subset})
	}

	return batches
}
