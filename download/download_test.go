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

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/sanger-pathogens/monocle-sub000/config"
	"github.com/sanger-pathogens/monocle-sub000/lanefiles"
	"github.com/sanger-pathogens/monocle-sub000/types"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	instKey = "FakOne"
	dirPerm = 0755
)

func discardLogger() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())

	return logger
}

func mappingOfSize(n int) *lanefiles.FileMapping {
	mapping := lanefiles.NewFileMapping()

	for i := 0; i < n; i++ {
		name := fmt.Sprintf("sample%03d", i)
		mapping.Add(name, "/view/"+name+"/file.fa")
	}

	return mapping
}

func TestPartition(t *testing.T) {
	Convey("Partition splits a mapping in to evenly sized batches", t, func() {
		batches := Partition(mappingOfSize(10), 4)
		So(len(batches), ShouldEqual, 3)
		So(batches[0].Files.Len(), ShouldEqual, 4)
		So(batches[1].Files.Len(), ShouldEqual, 4)
		So(batches[2].Files.Len(), ShouldEqual, 2)

		Convey("Every entry lands in exactly one batch, in insertion order", func() {
			var names []string

			for _, batch := range batches {
				names = append(names, batch.Files.Names()...)
			}

			So(names, ShouldResemble, mappingOfSize(10).Names())
		})

		Convey("Every batch gets a fresh unique token", func() {
			tokens := make(map[string]bool)

			for _, batch := range batches {
				So(batch.Token, ShouldNotBeEmpty)
				So(strings.Contains(batch.Token, "-"), ShouldBeFalse)

				tokens[batch.Token] = true
			}

			So(len(tokens), ShouldEqual, len(batches))
		})
	})

	Convey("A mapping within the cap gives one batch", t, func() {
		batches := Partition(mappingOfSize(3), 100)
		So(len(batches), ShouldEqual, 1)
		So(batches[0].Files.Len(), ShouldEqual, 3)
	})

	Convey("An empty mapping gives no batches", t, func() {
		So(Partition(lanefiles.NewFileMapping(), 10), ShouldBeNil)
	})
}

// makeViewFiles creates numSamples samples' worth of assembly files of the
// given size under a temporary institution view, returning the view root and
// the samples.
func makeViewFiles(t *testing.T, numSamples int, fileSize int) (string, []types.Sample) {
	t.Helper()

	root := t.TempDir()
	samples := make([]types.Sample, numSamples)

	for i := 0; i < numSamples; i++ {
		publicName := fmt.Sprintf("PUB_%03d", i)
		laneID := fmt.Sprintf("lane%03d", i)
		dir := filepath.Join(root, instKey, publicName)

		err := os.MkdirAll(dir, dirPerm)
		So(err, ShouldBeNil)

		err = os.WriteFile(filepath.Join(dir, laneID+".contigs_spades.fa"),
			make([]byte, fileSize), filePerm)
		So(err, ShouldBeNil)

		samples[i] = types.Sample{
			SampleID:       fmt.Sprintf("sample%03d", i),
			InstitutionKey: instKey,
			PublicName:     publicName,
			LaneIDs:        []string{laneID},
		}
	}

	return root, samples
}

func junoResolver(t *testing.T, root string) *lanefiles.Resolver {
	t.Helper()

	project, err := config.GetProject(config.ProjectJuno)
	So(err, ShouldBeNil)

	os.Setenv(config.EnvVarJunoViewRoot, root)
	t.Cleanup(func() {
		os.Unsetenv(config.EnvVarJunoViewRoot)
	})

	resolver, err := lanefiles.New(project, discardLogger())
	So(err, ShouldBeNil)

	return resolver
}

func TestPlanner(t *testing.T) {
	Convey("Given 5 samples with a 420,024 byte assembly each", t, func() {
		root, samples := makeViewFiles(t, 5, 420024)
		resolver := junoResolver(t, root)

		planner := &Planner{
			Resolver:                  resolver,
			Logger:                    discardLogger(),
			MaxSamplesPerDownload:     500,
			MaxSamplesPerZip:          100,
			MaxSamplesPerZipWithReads: 10,
		}

		Convey("Estimate reports exact sizes and zip options", func() {
			est := planner.Estimate(samples, lanefiles.Categories{Assemblies: true})
			So(est.NumSamples, ShouldEqual, 5)
			So(est.Size, ShouldEqual, "2,100,120 Bytes")
			So(est.SizeZipped, ShouldEqual, "2,100,120 Bytes")
			So(est.NumSamplesRestrictedTo, ShouldEqual, 0)
			So(len(est.SizePerZipOptions), ShouldEqual, 12)
			So(est.SizePerZipOptions[0].MaxSamplesPerZip, ShouldEqual, 100)
			So(est.SizePerZipOptions[0].SizePerZip, ShouldEqual, "2,100,120 Bytes")
		})

		Convey("Estimate caps the sample count per download", func() {
			planner.MaxSamplesPerDownload = 3

			est := planner.Estimate(samples, lanefiles.Categories{Assemblies: true})
			So(est.NumSamples, ShouldEqual, 5)
			So(est.NumSamplesRestrictedTo, ShouldEqual, 3)
			So(est.Size, ShouldEqual, "1,260,072 Bytes")
		})

		Convey("MaxPerZip is lower for downloads including reads", func() {
			So(planner.MaxPerZip(lanefiles.Categories{Assemblies: true}), ShouldEqual, 100)
			So(planner.MaxPerZip(lanefiles.Categories{Reads: true}), ShouldEqual, 10)
		})
	})
}

func TestParams(t *testing.T) {
	Convey("Params files store view-root relative paths", t, func() {
		dir := t.TempDir()
		viewRoot := "/view/root"

		files := lanefiles.NewFileMapping()
		files.Add("PUB_A", "/view/root/FakOne/PUB_A/lane1.contigs_spades.fa")

		err := WriteParams(dir, "token1", files, viewRoot)
		So(err, ShouldBeNil)

		data, err := os.ReadFile(filepath.Join(dir, "token1.params.json"))
		So(err, ShouldBeNil)
		So(string(data), ShouldContainSubstring, `"FakOne/PUB_A/lane1.contigs_spades.fa"`)
		So(string(data), ShouldNotContainSubstring, viewRoot)

		Convey("ReadParams rehydrates them against the view root", func() {
			reloaded, err := ReadParams(dir, "token1", viewRoot)
			So(err, ShouldBeNil)
			So(reloaded.Files("PUB_A"), ShouldResemble,
				[]string{"/view/root/FakOne/PUB_A/lane1.contigs_spades.fa"})
		})

		Convey("ReadParams on an unknown token reports not-exist", func() {
			_, err := ReadParams(dir, "nope", viewRoot)
			So(os.IsNotExist(err), ShouldBeTrue)
		})
	})
}

func TestMaterializer(t *testing.T) {
	Convey("Given a planned batch in a download directory", t, func() {
		root, samples := makeViewFiles(t, 2, 128)
		resolver := junoResolver(t, root)
		files := resolver.Resolve(samples, lanefiles.Categories{Assemblies: true})
		So(files.Len(), ShouldEqual, 2)

		dir := t.TempDir()
		m := NewMaterializer(dir, root, discardLogger())

		err := m.WriteParams("token1", files)
		So(err, ShouldBeNil)

		Convey("RequestDownload builds a zip with per-sample entries", func() {
			zipPath, err := m.RequestDownload("token1")
			So(err, ShouldBeNil)
			So(zipPath, ShouldEqual, filepath.Join(dir, "token1.zip"))

			r, err := zip.OpenReader(zipPath)
			So(err, ShouldBeNil)

			defer r.Close()

			So(len(r.File), ShouldEqual, 2)
			So(r.File[0].Name, ShouldEqual, "PUB_000/lane000.contigs_spades.fa")
			So(r.File[1].Name, ShouldEqual, "PUB_001/lane001.contigs_spades.fa")
		})

		Convey("An existing archive is reused, never rebuilt", func() {
			builds := 0
			realBuild := m.buildFn
			m.buildFn = func(zipPath string, files *lanefiles.FileMapping) error {
				builds++

				return realBuild(zipPath, files)
			}

			_, err := m.RequestDownload("token1")
			So(err, ShouldBeNil)
			So(builds, ShouldEqual, 1)

			_, err = m.RequestDownload("token1")
			So(err, ShouldBeNil)
			So(builds, ShouldEqual, 1)
		})

		Convey("A token with no params file is unknown", func() {
			_, err := m.RequestDownload("nope")
			So(err, ShouldEqual, ErrUnknownToken)
		})

		Convey("A half-written archive is waited for, timing out eventually", func() {
			err := os.WriteFile(filepath.Join(dir, "token1.zip"), []byte("not a zip"), filePerm)
			So(err, ShouldBeNil)

			m.PollInterval = time.Millisecond
			m.Timeout = 10 * time.Millisecond

			_, err = m.RequestDownload("token1")
			So(err, ShouldEqual, ErrArchiveTimeout)
		})
	})
}

func TestFileExists(t *testing.T) {
	Convey("fileExists is true only when the path can actually be statted", t, func() {
		dir := t.TempDir()
		file := filepath.Join(dir, "file")

		err := os.WriteFile(file, []byte("x"), filePerm)
		So(err, ShouldBeNil)

		So(fileExists(file), ShouldBeTrue)
		So(fileExists(filepath.Join(dir, "nope")), ShouldBeFalse)

		Convey("Including when stat fails for a reason other than not-exist", func() {
			// a path whose parent is a regular file stats with ENOTDIR
			So(fileExists(filepath.Join(file, "child")), ShouldBeFalse)
		})
	})
}

func TestPublisher(t *testing.T) {
	Convey("Given a web directory, you can publish a download directory", t, func() {
		webDir := t.TempDir()
		target := t.TempDir()

		publisher, err := NewPublisher(webDir, "/downloads")
		So(err, ShouldBeNil)

		urlPath, err := publisher.Publish(target)
		So(err, ShouldBeNil)
		So(urlPath, ShouldStartWith, "/downloads/")

		name := strings.TrimPrefix(urlPath, "/downloads/")
		So(name, ShouldNotBeEmpty)
		So(strings.Contains(name, "-"), ShouldBeFalse)

		resolved, err := os.Readlink(filepath.Join(webDir, name))
		So(err, ShouldBeNil)
		So(resolved, ShouldEqual, target)

		Convey("Publishing again gives a different name", func() {
			second, err := publisher.Publish(target)
			So(err, ShouldBeNil)
			So(second, ShouldNotEqual, urlPath)
		})

		Convey("Publishing a missing directory fails", func() {
			_, err := publisher.Publish(filepath.Join(target, "nope"))
			So(err, ShouldEqual, ErrMissingDirectory)
		})
	})

	Convey("A publisher needs configuration and an existing web directory", t, func() {
		_, err := NewPublisher("", "")
		So(err, ShouldEqual, ErrMissingPublish)

		_, err = NewPublisher("/nope/nope", "/downloads")
		So(err, ShouldEqual, ErrMissingDirectory)
	})
}
