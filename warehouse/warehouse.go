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

package warehouse

import (
	"context"

	"github.com/sanger-pathogens/monocle-sub000/types"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNotFound = Error("samples not found in the warehouse")
	ErrServer   = Error("warehouse server error")
)

// Source can retrieve per-sample sequencing status from the sequencing
// warehouse.
type Source interface {
	// GetMultipleSamples returns the sequencing status of the given samples,
	// keyed by sample ID. Samples the warehouse doesn't know are absent from
	// the result; an entirely unknown set of samples is ErrNotFound.
	GetMultipleSamples(ctx context.Context, sampleIDs []string) (map[string]types.SampleStatus, error)
}

// InstitutionStatus is the outcome of a warehouse query for one institution's
// samples. Err is set instead of Samples when the query failed, so that one
// institution's failure doesn't abort an aggregate query.
type InstitutionStatus struct {
	Samples map[string]types.SampleStatus
	Err     error
}

// StatusByInstitution maps institution keys to their warehouse query outcome.
type StatusByInstitution map[string]InstitutionStatus

// ForInstitutions queries the warehouse once per institution for the given
// sample IDs. A failed query is captured in that institution's
// InstitutionStatus rather than returned.
func ForInstitutions(ctx context.Context, src Source, idsByInstitution map[string][]string) StatusByInstitution {
	result := make(StatusByInstitution, len(idsByInstitution))

	for instKey, ids := range idsByInstitution {
		samples, err := src.GetMultipleSamples(ctx, ids)

		result[instKey] = InstitutionStatus{
			Samples: samples,
			Err:     err,
		}
	}

	return result
}
