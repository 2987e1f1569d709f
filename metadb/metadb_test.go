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

package metadb

import (
	"testing"

	"github.com/sanger-pathogens/monocle-sub000/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRow(t *testing.T) {
	Convey("You can get a row's fields by name", t, func() {
		row := Row{
			{Name: "serotype", Title: "Serotype", Order: 1, Value: "Ia"},
			{Name: "host_status", Title: "Host_Status", Order: 2, Value: "carriage"},
		}

		field, ok := row.Get("host_status")
		So(ok, ShouldBeTrue)
		So(field.Value, ShouldEqual, "carriage")

		_, ok = row.Get("nope")
		So(ok, ShouldBeFalse)
	})
}

func TestQueryHelpers(t *testing.T) {
	Convey("expandIn replaces the IN marker with one placeholder per value", t, func() {
		query, args := expandIn("SELECT x WHERE a = ? AND b IN (%IN%)",
			[]any{"first"}, []string{"v1", "v2", "v3"})
		So(query, ShouldEqual, "SELECT x WHERE a = ? AND b IN (?,?,?)")
		So(args, ShouldResemble, []any{"first", "v1", "v2", "v3"})
	})

	Convey("intersect treats a nil first set as everything", t, func() {
		b := map[string]bool{"s1": true, "s2": true}
		So(intersect(nil, b), ShouldResemble, b)

		a := map[string]bool{"s2": true, "s3": true}
		So(intersect(a, b), ShouldResemble, map[string]bool{"s2": true})
	})
}

func TestMetaDB(t *testing.T) {
	c, err := config.FromEnv("..")
	if err != nil {
		SkipConvey("skipping metadata database tests without MONOCLE_* set", t, func() {})

		return
	}

	Convey("Given a working New metadata DB", t, func() {
		db, err := New(c.MySQLConfig())
		So(err, ShouldBeNil)
		So(db, ShouldNotBeNil)

		defer db.Close()

		Convey("Unknown record IDs get empty results, not errors", func() {
			rows, err := db.GetMetadata(config.ProjectJuno, []string{"no_such_sample"})
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 0)
		})

		Convey("Unknown filter fields are rejected", func() {
			_, err := db.SamplesMatchingMetadata(config.ProjectJuno,
				map[string][]string{"no_such_field": {"x"}})
			So(err, ShouldEqual, ErrUnknownField)
		})
	})
}
