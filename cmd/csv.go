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

	"github.com/sanger-pathogens/monocle-sub000/filter"
	"github.com/sanger-pathogens/monocle-sub000/mergecsv"
	"github.com/sanger-pathogens/monocle-sub000/metadb"
	"github.com/sanger-pathogens/monocle-sub000/pipeline"
	"github.com/spf13/cobra"
)

const csvFilePerm = 0644

// options for this cmd.
var (
	csvOutput   string
	csvLinkBase string
)

// csvCmd represents the csv command.
var csvCmd = &cobra.Command{
	Use:   "csv institutionKey:YYYY-MM-DD ...",
	Short: "Get selected samples' metadata as CSV.",
	Long: `Get selected samples' metadata as CSV.

Samples are selected by the given batches and the filter flags, then their
submitted metadata, in-silico typing results and (for projects that include
it) QC metrics are merged in to one CSV, with a download link per sample.

The CSV goes to STDOUT unless you supply an output file with -o. If the
selection matches no samples, or the metadata database has no records for
them, nothing is output.

An example command line could look like this:
$ monocle -p juno -i institutions.json -s samples.json csv \
    --sequencing passed -o metadata.csv FakOne:2020-04-29
`,
	Run: func(_ *cobra.Command, batchArgs []string) {
		c := mustConfig()
		project := mustProject()

		meta, err := metadb.New(c.MySQLConfig())
		if err != nil {
			die("could not connect to the metadata database: %s", err.Error())
		}

		defer meta.Close()

		var pipeSrc pipeline.Source

		if pipelineOutcome != "" {
			db, errp := pipeline.New(c.MySQLConfig())
			if errp != nil {
				die("could not connect to the pipeline database: %s", errp.Error())
			}

			defer db.Close()

			pipeSrc = db
		}

		fe := filter.New(project, mustInstitutions(), pipeSrc, meta, appLogger)

		linkBase := csvLinkBase
		if linkBase == "" {
			linkBase = c.URLPathPrefix
		}

		engine := mergecsv.New(project, meta, fe, linkBase, appLogger)

		csv, ok, err := engine.BuildCSV(fetchStatus(c), buildFilter(batchArgs))
		if err != nil {
			die("%s", err.Error())
		}

		if !ok {
			info("no metadata found for the selected samples")

			return
		}

		if csvOutput == "" {
			cliPrintRaw(csv)

			return
		}

		if err := os.WriteFile(csvOutput, []byte(csv), csvFilePerm); err != nil {
			die("%s", err.Error())
		}

		info("metadata CSV written to %s", csvOutput)
	},
}

func init() {
	RootCmd.AddCommand(csvCmd)

	addFilterFlags(csvCmd)

	csvCmd.Flags().StringVarP(&csvOutput, "output", "o", "",
		"write the CSV to this file instead of STDOUT")
	csvCmd.Flags().StringVar(&csvLinkBase, "link-base", "",
		"base URL for per-sample download links; defaults to the download URL prefix")
}
