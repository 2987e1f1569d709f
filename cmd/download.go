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

package cmd

import (
	"os"
	"path/filepath"

	"github.com/sanger-pathogens/monocle-sub000/config"
	"github.com/sanger-pathogens/monocle-sub000/download"
	"github.com/sanger-pathogens/monocle-sub000/lanefiles"
	"github.com/spf13/cobra"
)

const (
	ErrTokenRequired = Error("exactly one download token is required")

	dirPerm = 0755
)

// downloadCmd represents the download command.
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download commands.",
	Long: `Download commands.

The "plan" sub-command selects samples and splits their lane data files in to
zip-archive sized batches, each identified by a random token. The "fetch"
sub-command builds (or reuses) the zip archive for a token and publishes it
under a web-served symlink.
`,
}

// planCmd represents the download plan command.
var planCmd = &cobra.Command{
	Use:   "plan institutionKey:YYYY-MM-DD ...",
	Short: "Plan zip archives for a bulk download.",
	Long: `Plan zip archives for a bulk download.

Samples are selected by the given batches and the filter flags, their on-disk
lane data files of the selected categories are found, and the files are split
evenly in to batches small enough to zip. Each batch gets a random token,
recorded in a params file in the download data directory; pass a token to
"download fetch" to build its archive.

An example command line could look like this:
$ monocle -p juno -i institutions.json -s samples.json download plan \
    --assemblies --annotations FakOne:2020-04-29
`,
	Run: func(_ *cobra.Command, batchArgs []string) {
		c := mustConfig()
		project := mustProject()
		cats := selectedCategories()

		engine, closeSources := mustFilterEngine(c, project, mustInstitutions())
		defer closeSources()

		samples, err := engine.Filter(fetchStatus(c), buildFilter(batchArgs))
		if err != nil {
			die("%s", err.Error())
		}

		resolver, err := lanefiles.New(project, appLogger)
		if err != nil {
			die("%s", err.Error())
		}

		planner := download.NewPlanner(c, resolver, appLogger)

		if len(samples) > planner.MaxSamplesPerDownload {
			warn("download restricted to the first %d of %d samples",
				planner.MaxSamplesPerDownload, len(samples))

			samples = samples[:planner.MaxSamplesPerDownload]
		}

		mapping := resolver.Resolve(samples, cats)
		batches := download.Partition(mapping, planner.MaxPerZip(cats))

		m := materializer(c, resolver.ViewRoot)

		for _, batch := range batches {
			if err := m.WriteParams(batch.Token, batch.Files); err != nil {
				die("%s", err.Error())
			}

			cliPrint("%s\t%d samples\n", batch.Token, batch.Files.Len())
		}
	},
}

// fetchCmd represents the download fetch command.
var fetchCmd = &cobra.Command{
	Use:   "fetch token",
	Short: "Build and publish a planned zip archive.",
	Long: `Build and publish a planned zip archive.

Given a token output by "download plan", builds the zip archive for that
batch of files. If the archive already exists it is reused, never rebuilt; an
archive another process is still writing is waited for.

The download data directory is then published under a randomly named symlink
in the web-served download directory, and the archive's URL is printed.
`,
	Run: func(_ *cobra.Command, args []string) {
		if len(args) != 1 {
			die("%s", ErrTokenRequired)
		}

		token := args[0]
		c := mustConfig()

		viewRoot, err := mustProject().ViewRoot()
		if err != nil {
			die("%s", err.Error())
		}

		m := materializer(c, viewRoot)

		zipPath, err := m.RequestDownload(token)
		if err != nil {
			die("%s", err.Error())
		}

		publisher, err := download.NewPublisher(c.WebDir, c.URLPathPrefix)
		if err != nil {
			die("%s", err.Error())
		}

		urlPath, err := publisher.Publish(m.Dir)
		if err != nil {
			die("%s", err.Error())
		}

		cliPrint("%s\n%s\n", zipPath, urlPath+"/"+filepath.Base(zipPath))
	},
}

// materializer returns a download.Materializer for the cross-institution
// download directory, creating the directory if needed.
func materializer(c *config.Config, viewRoot string) *download.Materializer {
	dir := filepath.Join(c.DataDir, c.CrossInstitutionDir)

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		die("%s", err.Error())
	}

	return download.NewMaterializer(dir, viewRoot, appLogger)
}

func init() {
	RootCmd.AddCommand(downloadCmd)
	downloadCmd.AddCommand(planCmd)
	downloadCmd.AddCommand(fetchCmd)

	addFilterFlags(planCmd)
	addCategoryFlags(planCmd)
}
