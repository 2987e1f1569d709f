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

package types

import "time"

const (
	ErrBadBatch = Error("batch needs both an institution key and a date")
	ErrBadDate  = Error("batch date must be in YYYY-MM-DD format")
)

// Batch identifies the samples received from one institution on one delivery
// date.
type Batch struct {
	InstitutionKey string
	Date           string
}

// OutcomePredicate describes the sequencing or pipeline outcome that lanes
// must have for their sample to pass a Filter.
type OutcomePredicate struct {
	Complete bool
	Success  bool
}

// Filter is a declarative predicate bundle for selecting samples. Batches is
// required (but may be empty, selecting nothing); the other predicates are
// optional.
type Filter struct {
	Batches    []Batch
	Sequencing *OutcomePredicate
	Pipeline   *OutcomePredicate

	// Metadata maps metadata field names to allowed values; samples whose
	// metadata doesn't match are excluded.
	Metadata map[string][]string
}

// Validate checks the filter is well-formed before any I/O happens, returning
// a bad-request kind of error if not.
func (f *Filter) Validate() error {
	for _, batch := range f.Batches {
		if batch.InstitutionKey == "" || batch.Date == "" {
			return ErrBadBatch
		}

		if _, err := time.Parse(BatchDateLayout, batch.Date); err != nil {
			return ErrBadDate
		}
	}

	return nil
}
