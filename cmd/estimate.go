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
	"github.com/sanger-pathogens/monocle-sub000/download"
	"github.com/sanger-pathogens/monocle-sub000/lanefiles"
	"github.com/spf13/cobra"
)

// estimateCmd represents the estimate command.
var estimateCmd = &cobra.Command{
	Use:   "estimate institutionKey:YYYY-MM-DD ...",
	Short: "Estimate the size of a bulk download.",
	Long: `Estimate the size of a bulk download.

Samples are selected by the given batches and the filter flags, then the
on-disk lane data files of the selected categories are sized up. The result
is a JSON object with the total size, the estimated zipped size, and the
samples-per-zip options on offer.

An example command line could look like this:
$ monocle -p juno -i institutions.json -s samples.json estimate \
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

		printJSON(download.NewPlanner(c, resolver, appLogger).Estimate(samples, cats))
	},
}

func init() {
	RootCmd.AddCommand(estimateCmd)

	addFilterFlags(estimateCmd)
	addCategoryFlags(estimateCmd)
}
