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
	"sort"

	"github.com/sanger-pathogens/monocle-sub000/pipeline"
	"github.com/sanger-pathogens/monocle-sub000/types"
	"github.com/sanger-pathogens/monocle-sub000/warehouse"
	"github.com/spf13/cobra"
)

// option for this cmd.
var failuresPipeline bool

// failureSummary is the JSON shape the failures command outputs.
type failureSummary struct {
	Sequencing []types.FailureDetail `json:"sequencing"`
	Pipeline   []types.FailureDetail `json:"pipeline,omitempty"`
}

// failuresCmd represents the failures command.
var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "Summarise sequencing and pipeline failures.",
	Long: `Summarise sequencing and pipeline failures.

For every sample in the samples file, reports each lane that completed
sequencing unsuccessfully, with the QC flag that failed. With --pipeline, the
analysis pipeline database is also checked and each failed pipeline stage is
reported.

The result is a JSON object of per-lane failure details, suitable for
dashboard summaries.
`,
	Run: func(_ *cobra.Command, _ []string) {
		c := mustConfig()
		project := mustProject()
		status := fetchStatus(c)

		var pipeSrc pipeline.Source

		if failuresPipeline {
			db, err := pipeline.New(c.MySQLConfig())
			if err != nil {
				die("could not connect to the pipeline database: %s", err.Error())
			}

			defer db.Close()

			pipeSrc = db
		}

		engine, closeSources := mustFilterEngine(c, project, mustInstitutions())
		defer closeSources()

		engine.Pipeline = pipeSrc

		summary := failureSummary{}

		seqFails, err := engine.SequencingFailures(status)
		if err != nil {
			die("%s", err.Error())
		}

		summary.Sequencing = seqFails

		if failuresPipeline {
			summary.Pipeline, err = engine.PipelineFailures(allLaneIDs(status))
			if err != nil {
				die("%s", err.Error())
			}
		}

		printJSON(summary)
	},
}

// allLaneIDs collects every lane ID in status, skipping institutions whose
// warehouse query failed.
func allLaneIDs(status warehouse.StatusByInstitution) []string {
	var laneIDs []string

	for _, instStatus := range status {
		if instStatus.Err != nil {
			continue
		}

		for _, record := range instStatus.Samples {
			laneIDs = append(laneIDs, record.LaneIDs()...)
		}
	}

	sort.Strings(laneIDs)

	return laneIDs
}

func init() {
	RootCmd.AddCommand(failuresCmd)

	failuresCmd.Flags().BoolVar(&failuresPipeline, "pipeline", false,
		"also report failed pipeline stages")
}
