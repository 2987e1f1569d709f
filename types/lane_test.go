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

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func completeLane() Lane {
	return Lane{
		ID:                 "31663_7#113",
		RunStatus:          "qc complete",
		QCStarted:          1,
		QCSuccess:          1,
		QCLib:              1,
		QCSeq:              1,
		QCCompleteDatetime: "2020-04-29T11:03:35+0100",
	}
}

func TestLane(t *testing.T) {
	Convey("Given a lane with qc finished", t, func() {
		lane := completeLane()
		So(lane.Complete(), ShouldBeTrue)

		Convey("A different run status makes it incomplete", func() {
			lane.RunStatus = "qc in progress"
			So(lane.Complete(), ShouldBeFalse)
		})

		Convey("A missing qc completion timestamp makes it incomplete", func() {
			lane.QCCompleteDatetime = ""
			So(lane.Complete(), ShouldBeFalse)
		})

		Convey("qc never having started makes it incomplete", func() {
			lane.QCStarted = 0
			So(lane.Complete(), ShouldBeFalse)
		})

		Convey("It is successful when all the given qc flags passed", func() {
			ok, details, err := lane.Successful([]string{QCFlagLib, QCFlagSeq})
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(details, ShouldBeNil)

			ok, details, err = lane.Successful([]string{QCFlagSuccess})
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(details, ShouldBeNil)
		})

		Convey("A failing flag makes it unsuccessful, with a detail per failure", func() {
			lane.QCSeq = 0
			lane.QCStatusText = "insufficient depth"

			ok, details, err := lane.Successful([]string{QCFlagLib, QCFlagSeq})
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(details, ShouldResemble, []FailureDetail{{
				Lane:  "31663_7#113",
				Stage: StageSequencing,
				Issue: "insufficient depth",
			}})
		})

		Convey("Unknown qc flags are an error", func() {
			_, _, err := lane.Successful([]string{"qc_novel"})
			So(err, ShouldEqual, ErrUnknownQCFlag)
		})
	})

	Convey("An incomplete lane is never successful, without error", t, func() {
		lane := completeLane()
		lane.QCStarted = 0

		ok, details, err := lane.Successful([]string{QCFlagSuccess})
		So(err, ShouldBeNil)
		So(ok, ShouldBeFalse)
		So(details, ShouldBeNil)
	})
}

func TestSampleStatus(t *testing.T) {
	Convey("Given a sample status record", t, func() {
		status := SampleStatus{
			SampleID:         "5903STDY8059053",
			PublicName:       "JN_IL_ST00002",
			CreationDatetime: "2020-04-29T11:03:35+0100",
			Lanes:            []Lane{{ID: "31663_7#113"}, {ID: "31663_7#114"}},
		}

		Convey("CreatedOn matches on the date portion of the creation timestamp", func() {
			So(status.CreatedOn("2020-04-29"), ShouldBeTrue)
			So(status.CreatedOn("2020-04-30"), ShouldBeFalse)
		})

		Convey("An unparseable creation timestamp never matches", func() {
			status.CreationDatetime = "29/04/2020"
			So(status.CreatedOn("2020-04-29"), ShouldBeFalse)

			status.CreationDatetime = ""
			So(status.CreatedOn("2020-04-29"), ShouldBeFalse)
		})

		Convey("LaneIDs preserves warehouse lane order", func() {
			So(status.LaneIDs(), ShouldResemble, []string{"31663_7#113", "31663_7#114"})
		})
	})

	Convey("A sample's Name is its public name, falling back to the sample ID", t, func() {
		sample := Sample{SampleID: "5903STDY8059053", PublicName: "JN_IL_ST00002"}
		So(sample.Name(), ShouldEqual, "JN_IL_ST00002")

		sample.PublicName = ""
		So(sample.Name(), ShouldEqual, "5903STDY8059053")
	})
}
