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

package mergecsv

import (
	"testing"

	"github.com/inconshreveable/log15"
	"github.com/sanger-pathogens/monocle-sub000/config"
	"github.com/sanger-pathogens/monocle-sub000/filter"
	"github.com/sanger-pathogens/monocle-sub000/institutions"
	"github.com/sanger-pathogens/monocle-sub000/metadb"
	"github.com/sanger-pathogens/monocle-sub000/types"
	"github.com/sanger-pathogens/monocle-sub000/warehouse"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	instKey   = "FakOne"
	batchDate = "2020-04-29"
	linkBase  = "/downloads"
)

// mockMetaDB serves canned metadata rows keyed by record ID.
type mockMetaDB struct {
	metadata map[string]metadb.Row
	inSilico map[string]metadb.Row
	qc       map[string]metadb.Row
}

func (m *mockMetaDB) GetMetadata(_ string, sampleIDs []string) ([]metadb.Row, error) {
	return rowsFor(m.metadata, sampleIDs), nil
}

func (m *mockMetaDB) GetInSilicoData(_ string, laneIDs []string) ([]metadb.Row, error) {
	return rowsFor(m.inSilico, laneIDs), nil
}

func (m *mockMetaDB) GetQCData(_ string, laneIDs []string) ([]metadb.Row, error) {
	return rowsFor(m.qc, laneIDs), nil
}

func (m *mockMetaDB) SamplesMatchingMetadata(_ string, _ map[string][]string) ([]string, error) {
	return nil, nil
}

func (m *mockMetaDB) Close() error {
	return nil
}

func rowsFor(known map[string]metadb.Row, recordIDs []string) []metadb.Row {
	var rows []metadb.Row

	seen := make(map[string]bool)

	for _, id := range recordIDs {
		if seen[id] {
			continue
		}

		seen[id] = true

		if row, ok := known[id]; ok {
			rows = append(rows, row)
		}
	}

	return rows
}

func metaRow(sampleID, publicName, serotype string) metadb.Row {
	return metadb.Row{
		{Name: "sanger_sample_id", Title: "Sanger_Sample_ID", Order: 1, Value: sampleID},
		{Name: "public_name", Title: "Public_Name", Order: 2, Value: publicName},
		{Name: "serotype", Title: "Serotype", Order: 3, Value: serotype},
	}
}

func inSilicoRow(laneID, st string) metadb.Row {
	return metadb.Row{
		{Name: "lane_id", Title: "Lane_ID", Order: 1, Value: laneID},
		{Name: "st", Title: "ST", Order: 2, Value: st},
	}
}

func qcRow(laneID, coverage string) metadb.Row {
	return metadb.Row{
		{Name: "lane_id", Title: "Lane_ID", Order: 1, Value: laneID},
		{Name: "coverage", Title: "Coverage", Order: 2, Value: coverage},
	}
}

func laneFor(id string) types.Lane {
	return types.Lane{
		ID:                 id,
		RunStatus:          "qc complete",
		QCStarted:          1,
		QCSuccess:          1,
		QCLib:              1,
		QCSeq:              1,
		QCCompleteDatetime: "2020-04-29T11:03:35+0100",
	}
}

func testStatus() warehouse.StatusByInstitution {
	creation := "2020-04-29T11:03:35+0100"

	return warehouse.StatusByInstitution{
		instKey: {Samples: map[string]types.SampleStatus{
			"sampleA": {
				SampleID:         "sampleA",
				PublicName:       "PUB_A",
				CreationDatetime: creation,
				Lanes:            []types.Lane{laneFor("laneA1")},
			},
			"sampleB": {
				SampleID:         "sampleB",
				PublicName:       "PUB_B",
				CreationDatetime: creation,
				Lanes:            []types.Lane{laneFor("laneB1"), laneFor("laneB2")},
			},
			"sampleC": {
				SampleID:         "sampleC",
				PublicName:       "PUB_C",
				CreationDatetime: creation,
				Lanes:            []types.Lane{laneFor("laneC1")},
			},
		}},
	}
}

func testEngine(projectID string, meta metadb.Source) *Engine {
	project, err := config.GetProject(projectID)
	So(err, ShouldBeNil)

	return engineFor(project, meta, linkBase)
}

func engineFor(project config.Project, meta metadb.Source, downloadBaseURL string) *Engine {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())

	dir := institutions.Directory{instKey: {Name: "Faculty One"}}
	fe := filter.New(project, dir, nil, nil, logger)

	return New(project, meta, fe, downloadBaseURL, logger)
}

func batchFilter() types.Filter {
	return types.Filter{Batches: []types.Batch{{InstitutionKey: instKey, Date: batchDate}}}
}

func TestBuildCSV(t *testing.T) {
	Convey("Given metadata and in-silico data for filtered samples", t, func() {
		meta := &mockMetaDB{
			metadata: map[string]metadb.Row{
				"sampleA": metaRow("sampleA", "PUB_A", "Ia"),
				"sampleB": metaRow("sampleB", "PUB_B", "III"),
			},
			inSilico: map[string]metadb.Row{
				"laneA1": inSilicoRow("laneA1", "17"),
				"laneB1": inSilicoRow("laneB1", "23"),
				"laneB2": inSilicoRow("laneB2", "24"),
			},
		}

		engine := testEngine(config.ProjectJuno, meta)

		Convey("BuildCSV merges everything in to one CSV", func() {
			csv, ok, err := engine.BuildCSV(testStatus(), batchFilter())
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			So(csv, ShouldEqual,
				`"Public_Name","Sanger_Sample_ID","Serotype","Lane_ID","ST","Download_Link"`+"\n"+
					`"PUB_A","sampleA","Ia","laneA1",17,"/downloads/PUB_A"`+"\n"+
					`"PUB_B","sampleB","III","laneB1 laneB2","","/downloads/PUB_B"`+"\n")

			Convey("Samples with lane data from more than one lane get it omitted", func() {
				// sampleB's row above survived with empty ST rather than a
				// one-to-many merge or a dropped row
				So(csv, ShouldContainSubstring, `"laneB1 laneB2",""`)
			})
		})

		Convey("Samples the metadata database doesn't know get no row", func() {
			csv, ok, err := engine.BuildCSV(testStatus(), batchFilter())
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(csv, ShouldNotContainSubstring, "sampleC")
		})

		Convey("An empty selection is a defined no-content outcome", func() {
			csv, ok, err := engine.BuildCSV(testStatus(), types.Filter{})
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(csv, ShouldEqual, "")
		})

		Convey("No metadata records at all is also no-content", func() {
			meta.metadata = nil

			csv, ok, err := engine.BuildCSV(testStatus(), batchFilter())
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(csv, ShouldEqual, "")
		})

		Convey("A metadata row without a sample ID is a data integrity error", func() {
			meta.metadata["sampleA"] = metadb.Row{
				{Name: "public_name", Title: "Public_Name", Order: 2, Value: "PUB_A"},
			}

			_, _, err := engine.BuildCSV(testStatus(), batchFilter())
			So(err, ShouldEqual, ErrMissingSampleIDField)
		})
	})

	Convey("Without a download base URL there is no link column at all", t, func() {
		meta := &mockMetaDB{
			metadata: map[string]metadb.Row{
				"sampleA": metaRow("sampleA", "PUB_A", "Ia"),
			},
			inSilico: map[string]metadb.Row{
				"laneA1": inSilicoRow("laneA1", "17"),
			},
		}

		project, err := config.GetProject(config.ProjectJuno)
		So(err, ShouldBeNil)

		engine := engineFor(project, meta, "")

		csv, ok, err := engine.BuildCSV(testStatus(), batchFilter())
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
		So(csv, ShouldEqual,
			`"Public_Name","Sanger_Sample_ID","Serotype","Lane_ID","ST"`+"\n"+
				`"PUB_A","sampleA","Ia","laneA1",17`+"\n")
	})

	Convey("Lane-level data is joined on the project's merge key field", t, func() {
		meta := &mockMetaDB{
			metadata: map[string]metadb.Row{
				"sampleA": metaRow("sampleA", "PUB_A", "Ia"),
			},
			inSilico: map[string]metadb.Row{
				"laneA1": {
					{Name: "lane", Title: "Lane", Order: 1, Value: "laneA1"},
					{Name: "st", Title: "ST", Order: 2, Value: "17"},
				},
			},
		}

		project := config.Project{ID: "custom", MergeKey: "lane"}
		engine := engineFor(project, meta, linkBase)

		csv, ok, err := engine.BuildCSV(testStatus(), batchFilter())
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
		So(csv, ShouldEqual,
			`"Public_Name","Sanger_Sample_ID","Serotype","Lane_ID","ST","Download_Link"`+"\n"+
				`"PUB_A","sampleA","Ia","laneA1",17,"/downloads/PUB_A"`+"\n")
	})

	Convey("Projects that include QC data get it joined on too", t, func() {
		meta := &mockMetaDB{
			metadata: map[string]metadb.Row{
				"sampleA": metaRow("sampleA", "PUB_A", "Ia"),
			},
			inSilico: map[string]metadb.Row{
				"laneA1": inSilicoRow("laneA1", "17"),
			},
			qc: map[string]metadb.Row{
				"laneA1": qcRow("laneA1", "98.4"),
			},
		}

		engine := testEngine(config.ProjectGPS, meta)

		csv, ok, err := engine.BuildCSV(testStatus(), batchFilter())
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
		So(csv, ShouldEqual,
			`"Public_Name","Sanger_Sample_ID","Serotype","Lane_ID","ST","Coverage","Download_Link"`+"\n"+
				`"PUB_A","sampleA","Ia","laneA1",17,98.4,"/downloads/PUB_A"`+"\n")
	})
}
