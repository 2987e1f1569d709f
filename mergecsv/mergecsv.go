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

// Package mergecsv produces the "download metadata as CSV" view: sample
// metadata merged with in-silico typing and QC results into one table,
// serialized as CSV with a per-sample download link.
package mergecsv

import (
	"net/url"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/sanger-pathogens/monocle-sub000/config"
	"github.com/sanger-pathogens/monocle-sub000/filter"
	"github.com/sanger-pathogens/monocle-sub000/metadb"
	"github.com/sanger-pathogens/monocle-sub000/table"
	"github.com/sanger-pathogens/monocle-sub000/types"
	"github.com/sanger-pathogens/monocle-sub000/warehouse"
)

const (
	sampleIDField   = "sanger_sample_id"
	publicNameField = "public_name"
	laneIDField     = "lane_id"

	laneIDColumnTitle   = "Lane_ID"
	downloadColumnName  = "download_link"
	downloadColumnTitle = "Download_Link"

	laneIDSeparator = " "
)

type Error string

func (e Error) Error() string { return string(e) }

const ErrMissingSampleIDField = Error("metadata row has no sample ID field")

// Engine merges the three metadata database categories for filtered samples
// into a single CSV. Lane identity comes from the sequencing warehouse, which
// is authoritative; the metadata database only contributes per-lane and
// per-sample values.
type Engine struct {
	Project         config.Project
	Metadata        metadb.Source
	Filter          *filter.Engine
	DownloadBaseURL string
	Logger          log15.Logger
}

// New returns an Engine producing CSVs for the given project, with download
// links under downloadBaseURL. An empty downloadBaseURL omits the
// Download_Link column entirely.
func New(project config.Project, meta metadb.Source, filterEngine *filter.Engine,
	downloadBaseURL string, logger log15.Logger) *Engine {
	return &Engine{
		Project:         project,
		Metadata:        meta,
		Filter:          filterEngine,
		DownloadBaseURL: downloadBaseURL,
		Logger:          logger,
	}
}

// BuildCSV filters status with f, then merges the selected samples' metadata,
// in-silico and (for projects that include it) QC data into a CSV.
//
// The second return is false when there is nothing to serialize: either the
// filter selected no samples, or the metadata database holds no records for
// them. That is a defined no-content outcome, not an error.
func (e *Engine) BuildCSV(status warehouse.StatusByInstitution, f types.Filter) (string, bool, error) {
	samples, err := e.Filter.Filter(status, f)
	if err != nil {
		return "", false, err
	}

	if len(samples) == 0 {
		return "", false, nil
	}

	bySampleID := make(map[string]types.Sample, len(samples))
	sampleIDs := make([]string, len(samples))

	for i, sample := range samples {
		bySampleID[sample.SampleID] = sample
		sampleIDs[i] = sample.SampleID
	}

	metaRows, err := e.Metadata.GetMetadata(e.Project.ID, sampleIDs)
	if err != nil {
		return "", false, err
	}

	if len(metaRows) == 0 {
		return "", false, nil
	}

	tbl, rowSamples, err := e.metadataTable(metaRows, bySampleID)
	if err != nil {
		return "", false, err
	}

	if err := e.joinLaneData(tbl, rowSamples); err != nil {
		return "", false, err
	}

	if e.DownloadBaseURL != "" {
		if err := e.addDownloadLinks(tbl, rowSamples); err != nil {
			return "", false, err
		}
	}

	if err := tbl.MoveColumnFirst(publicNameField); err != nil {
		return "", false, err
	}

	return tbl.CSV(), true, nil
}

// metadataTable builds the base table from the metadata rows, with a derived
// Lane_ID column holding each sample's warehouse lanes. Also returns the
// sample behind each table row, in row order.
func (e *Engine) metadataTable(metaRows []metadb.Row,
	bySampleID map[string]types.Sample) (*table.Table, []types.Sample, error) {
	tbl := table.New(columnsOf(metaRows[0])...)
	tbl.SortColumnsByOrder()

	rowSamples := make([]types.Sample, 0, len(metaRows))
	laneIDs := make([]string, 0, len(metaRows))

	for _, row := range metaRows {
		idField, ok := row.Get(sampleIDField)
		if !ok || idField.Value == "" {
			return nil, nil, ErrMissingSampleIDField
		}

		sample := bySampleID[idField.Value]

		tbl.AppendRow(valuesOf(row))
		rowSamples = append(rowSamples, sample)
		laneIDs = append(laneIDs, strings.Join(sample.LaneIDs, laneIDSeparator))
	}

	err := tbl.AddColumn(table.Column{Name: laneIDField, Title: laneIDColumnTitle}, laneIDs)

	return tbl, rowSamples, err
}

// joinLaneData merges in-silico data, and QC data for projects that include
// it, onto the metadata table.
func (e *Engine) joinLaneData(tbl *table.Table, rowSamples []types.Sample) error {
	allLanes := make([]string, 0, len(rowSamples))

	for _, sample := range rowSamples {
		allLanes = append(allLanes, sample.LaneIDs...)
	}

	if err := e.joinCategory(tbl, rowSamples, allLanes, e.Metadata.GetInSilicoData); err != nil {
		return err
	}

	if !e.Project.IncludeQC {
		return nil
	}

	return e.joinCategory(tbl, rowSamples, allLanes, e.Metadata.GetQCData)
}

func (e *Engine) joinCategory(tbl *table.Table, rowSamples []types.Sample, allLanes []string,
	get func(projectID string, laneIDs []string) ([]metadb.Row, error)) error {
	rows, err := get(e.Project.ID, allLanes)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return nil
	}

	right := table.New(columnsOf(rows[0])...)
	known := make(map[string]bool, len(rows))

	for _, row := range rows {
		right.AppendRow(valuesOf(row))

		if f, ok := row.Get(e.Project.MergeKey); ok {
			known[f.Value] = true
		}
	}

	return tbl.LeftJoinOneToOne(right, e.joinKeys(rowSamples, known), e.Project.MergeKey)
}

// joinKeys picks, per sample, the single lane contributing lane-level data.
// A sample whose lanes contribute more than one record can't be merged
// one-to-one; it keeps its metadata row but drops the lane-level values, with
// a warning.
func (e *Engine) joinKeys(rowSamples []types.Sample, known map[string]bool) []string {
	keys := make([]string, len(rowSamples))

	for i, sample := range rowSamples {
		var contributing []string

		for _, laneID := range sample.LaneIDs {
			if known[laneID] {
				contributing = append(contributing, laneID)
			}
		}

		switch len(contributing) {
		case 0:
		case 1:
			keys[i] = contributing[0]
		default:
			e.Logger.Warn("multiple lanes have lane-level data; omitting it for sample",
				"sample", sample.SampleID, "lanes", strings.Join(contributing, laneIDSeparator))
		}
	}

	return keys
}

func (e *Engine) addDownloadLinks(tbl *table.Table, rowSamples []types.Sample) error {
	links := make([]string, len(rowSamples))

	for i, sample := range rowSamples {
		links[i] = e.DownloadBaseURL + "/" + url.PathEscape(sample.Name())
	}

	return tbl.AddColumn(table.Column{Name: downloadColumnName, Title: downloadColumnTitle}, links)
}

func columnsOf(row metadb.Row) []table.Column {
	cols := make([]table.Column, len(row))

	for i, field := range row {
		cols[i] = table.Column{Name: field.Name, Title: field.Title, Order: field.Order}
	}

	return cols
}

func valuesOf(row metadb.Row) map[string]string {
	values := make(map[string]string, len(row))

	for _, field := range row {
		values[field.Name] = field.Value
	}

	return values
}
