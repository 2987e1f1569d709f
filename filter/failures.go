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

package filter

import (
	"sort"

	"github.com/sanger-pathogens/monocle-sub000/pipeline"
	"github.com/sanger-pathogens/monocle-sub000/types"
	"github.com/sanger-pathogens/monocle-sub000/warehouse"
)

// SequencingFailures returns a failure detail for every lane in status that
// completed sequencing unsuccessfully, for per-institution dashboard
// summaries. Institutions whose warehouse query failed are skipped.
func (e *Engine) SequencingFailures(status warehouse.StatusByInstitution) ([]types.FailureDetail, error) {
	var details []types.FailureDetail

	for _, instKey := range sortedKeys(status) {
		instStatus := status[instKey]
		if instStatus.Err != nil {
			continue
		}

		instDetails, err := e.institutionFailures(instStatus.Samples)
		if err != nil {
			return nil, err
		}

		details = append(details, instDetails...)
	}

	return details, nil
}

func (e *Engine) institutionFailures(records map[string]types.SampleStatus) ([]types.FailureDetail, error) {
	var details []types.FailureDetail

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	for _, id := range ids {
		record := records[id]

		for i := range record.Lanes {
			_, laneDetails, err := record.Lanes[i].Successful(e.Project.QCFlags)
			if err != nil {
				return nil, err
			}

			details = append(details, laneDetails...)
		}
	}

	return details, nil
}

// PipelineFailures returns a failure detail for every failed pipeline stage
// of the given lanes.
func (e *Engine) PipelineFailures(laneIDs []string) ([]types.FailureDetail, error) {
	if e.Pipeline == nil {
		return nil, ErrNoPipelineSource
	}

	var details []types.FailureDetail

	for _, laneID := range laneIDs {
		status, err := e.Pipeline.LaneStatus(laneID)
		if err != nil {
			return nil, err
		}

		if !status.Failed {
			continue
		}

		for _, stage := range sortedStages(status.Stages) {
			if status.Stages[stage] == pipeline.StatusFailed {
				details = append(details, types.FailureDetail{
					Lane:  laneID,
					Stage: stage,
					Issue: status.Stages[stage],
				})
			}
		}
	}

	return details, nil
}

func sortedKeys(status warehouse.StatusByInstitution) []string {
	keys := make([]string, 0, len(status))

	for key := range status {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func sortedStages(stages map[string]string) []string {
	names := make([]string, 0, len(stages))

	for name := range stages {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
