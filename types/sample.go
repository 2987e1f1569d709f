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
	ErrMissingSampleID = Error("sample status record has no sanger_sample_id")

	// warehouseTimeLayout is the timestamp format the sequencing warehouse
	// uses, eg. "2020-04-29T11:03:35+0100".
	warehouseTimeLayout = "2006-01-02T15:04:05-0700"

	// BatchDateLayout is the date format used for batch delivery dates.
	BatchDateLayout = "2006-01-02"
)

// SampleStatus is the raw per-sample sequencing status record returned by the
// warehouse for one sample.
type SampleStatus struct {
	SampleID         string
	PublicName       string
	CreationDatetime string
	Lanes            []Lane
}

// CreatedOn reports whether the date portion of our warehouse-format creation
// timestamp exactly equals the given BatchDateLayout date. Unparseable
// timestamps never match.
func (s *SampleStatus) CreatedOn(date string) bool {
	t, err := time.Parse(warehouseTimeLayout, s.CreationDatetime)
	if err != nil {
		return false
	}

	return t.Format(BatchDateLayout) == date
}

// LaneIDs returns the IDs of our lanes, in warehouse order.
func (s *SampleStatus) LaneIDs() []string {
	ids := make([]string, len(s.Lanes))

	for i, lane := range s.Lanes {
		ids[i] = lane.ID
	}

	return ids
}

// Sample is a filtered sample: the minimal projection of a SampleStatus that
// passed a Filter, annotated with the institution it came from.
type Sample struct {
	SampleID         string
	InstitutionKey   string
	CreationDatetime string
	LaneIDs          []string
	PublicName       string
}

// Name returns our public name, falling back to the sample ID for the rare
// samples that don't have one.
func (s *Sample) Name() string {
	if s.PublicName != "" {
		return s.PublicName
	}

	return s.SampleID
}
