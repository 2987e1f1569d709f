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

// Package filter selects samples out of raw warehouse status data according
// to a declarative types.Filter.
package filter

import (
	"sort"

	"github.com/inconshreveable/log15"
	"github.com/sanger-pathogens/monocle-sub000/config"
	"github.com/sanger-pathogens/monocle-sub000/institutions"
	"github.com/sanger-pathogens/monocle-sub000/pipeline"
	"github.com/sanger-pathogens/monocle-sub000/types"
	"github.com/sanger-pathogens/monocle-sub000/warehouse"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNoPipelineSource = Error("pipeline predicate given but no pipeline source configured")
	ErrNoMetadataSource = Error("metadata predicate given but no metadata source configured")
)

// MetadataSampleSource is the part of metadb.Source we need for metadata
// field filtering.
type MetadataSampleSource interface {
	SamplesMatchingMetadata(projectID string, fieldValues map[string][]string) ([]string, error)
}

// Engine filters warehouse sample status records.
type Engine struct {
	Project      config.Project
	Institutions institutions.Directory
	Pipeline     pipeline.Source
	Metadata     MetadataSampleSource
	Logger       log15.Logger
}

// New returns an Engine for the given project. Pipeline and metadata sources
// are only needed if filters will use the corresponding predicates.
func New(project config.Project, dir institutions.Directory, pipe pipeline.Source,
	meta MetadataSampleSource, logger log15.Logger) *Engine {
	return &Engine{
		Project:      project,
		Institutions: dir,
		Pipeline:     pipe,
		Metadata:     meta,
		Logger:       logger,
	}
}

type candidate struct {
	sample types.Sample
	lanes  []types.Lane
}

// Filter returns the samples in status selected by f. An empty batch list
// selects nothing, which is not an error. Batches for unknown institutions,
// and institutions whose warehouse query failed, are skipped with a warning.
func (e *Engine) Filter(status warehouse.StatusByInstitution, f types.Filter) ([]types.Sample, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	candidates, err := e.batchCandidates(status, f.Batches)
	if err != nil {
		return nil, err
	}

	if f.Sequencing != nil {
		if candidates, err = e.applySequencing(candidates, f.Sequencing); err != nil {
			return nil, err
		}
	}

	if f.Pipeline != nil {
		if candidates, err = e.applyPipeline(candidates, f.Pipeline); err != nil {
			return nil, err
		}
	}

	if f.Metadata != nil {
		if candidates, err = e.applyMetadata(candidates, f.Metadata); err != nil {
			return nil, err
		}
	}

	samples := make([]types.Sample, len(candidates))

	for i, cand := range candidates {
		samples[i] = cand.sample
	}

	return samples, nil
}

func (e *Engine) batchCandidates(status warehouse.StatusByInstitution, batches []types.Batch) ([]candidate, error) {
	candidates := make([]candidate, 0, len(batches))

	for _, batch := range batches {
		if _, known := e.Institutions.FindByKey(batch.InstitutionKey); !known {
			e.Logger.Warn("ignoring batch for unknown institution", "key", batch.InstitutionKey)

			continue
		}

		instStatus, ok := status[batch.InstitutionKey]
		if !ok {
			e.Logger.Warn("no warehouse data for institution", "key", batch.InstitutionKey)

			continue
		}

		if instStatus.Err != nil {
			e.Logger.Warn("skipping institution whose warehouse query failed",
				"key", batch.InstitutionKey, "err", instStatus.Err)

			continue
		}

		batchCandidates, err := candidatesInBatch(batch, instStatus.Samples)
		if err != nil {
			return nil, err
		}

		candidates = append(candidates, batchCandidates...)
	}

	return candidates, nil
}

// candidatesInBatch projects the records created on the batch's date down to
// candidates, in sample ID order for deterministic output.
func candidatesInBatch(batch types.Batch, records map[string]types.SampleStatus) ([]candidate, error) {
	ids := make([]string, 0, len(records))

	for id := range records {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	var candidates []candidate

	for _, id := range ids {
		record := records[id]

		if record.SampleID == "" {
			return nil, types.ErrMissingSampleID
		}

		if !record.CreatedOn(batch.Date) {
			continue
		}

		candidates = append(candidates, candidate{
			sample: types.Sample{
				SampleID:         record.SampleID,
				InstitutionKey:   batch.InstitutionKey,
				CreationDatetime: record.CreationDatetime,
				LaneIDs:          record.LaneIDs(),
				PublicName:       record.PublicName,
			},
			lanes: record.Lanes,
		})
	}

	return candidates, nil
}

// applySequencing keeps candidates where any one lane matches the predicate;
// the first matching lane short-circuits evaluation.
func (e *Engine) applySequencing(candidates []candidate, pred *types.OutcomePredicate) ([]candidate, error) {
	kept := make([]candidate, 0, len(candidates))

	for _, cand := range candidates {
		match, err := e.anyLaneMatches(cand.lanes, pred)
		if err != nil {
			return nil, err
		}

		if match {
			kept = append(kept, cand)
		}
	}

	return kept, nil
}

func (e *Engine) anyLaneMatches(lanes []types.Lane, pred *types.OutcomePredicate) (bool, error) {
	for i := range lanes {
		match, err := e.laneMatches(&lanes[i], pred)
		if err != nil {
			return false, err
		}

		if match {
			return true, nil
		}
	}

	return false, nil
}

func (e *Engine) laneMatches(lane *types.Lane, pred *types.OutcomePredicate) (bool, error) {
	if lane.Complete() != pred.Complete {
		return false, nil
	}

	success, _, err := lane.Successful(e.Project.QCFlags)
	if err != nil {
		return false, err
	}

	return success == pred.Success, nil
}

// applyPipeline keeps candidates where any one lane's pipeline outcome
// matches the predicate.
func (e *Engine) applyPipeline(candidates []candidate, pred *types.OutcomePredicate) ([]candidate, error) {
	if e.Pipeline == nil {
		return nil, ErrNoPipelineSource
	}

	kept := make([]candidate, 0, len(candidates))

	for _, cand := range candidates {
		match, err := e.anyLanePipelineMatches(cand.sample.LaneIDs, pred)
		if err != nil {
			return nil, err
		}

		if match {
			kept = append(kept, cand)
		}
	}

	return kept, nil
}

func (e *Engine) anyLanePipelineMatches(laneIDs []string, pred *types.OutcomePredicate) (bool, error) {
	for _, laneID := range laneIDs {
		status, err := e.Pipeline.LaneStatus(laneID)
		if err != nil {
			return false, err
		}

		complete := status.Success || status.Failed

		if complete == pred.Complete && status.Success == pred.Success {
			return true, nil
		}
	}

	return false, nil
}

// applyMetadata intersects the candidates with the samples the metadata
// database says match the given field values.
func (e *Engine) applyMetadata(candidates []candidate, fieldValues map[string][]string) ([]candidate, error) {
	if e.Metadata == nil {
		return nil, ErrNoMetadataSource
	}

	ids, err := e.Metadata.SamplesMatchingMetadata(e.Project.ID, fieldValues)
	if err != nil {
		return nil, err
	}

	matching := make(map[string]bool, len(ids))
	for _, id := range ids {
		matching[id] = true
	}

	kept := make([]candidate, 0, len(candidates))

	for _, cand := range candidates {
		if matching[cand.sample.SampleID] {
			kept = append(kept, cand)
		}
	}

	return kept, nil
}
