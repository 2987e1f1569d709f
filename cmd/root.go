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

// package cmd is the cobra file that enables subcommands and handles
// command-line args.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/sanger-pathogens/monocle-sub000/config"
	"github.com/sanger-pathogens/monocle-sub000/filter"
	"github.com/sanger-pathogens/monocle-sub000/institutions"
	"github.com/sanger-pathogens/monocle-sub000/lanefiles"
	"github.com/sanger-pathogens/monocle-sub000/metadb"
	"github.com/sanger-pathogens/monocle-sub000/pipeline"
	"github.com/sanger-pathogens/monocle-sub000/types"
	"github.com/sanger-pathogens/monocle-sub000/warehouse"
	"github.com/spf13/cobra"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrBadBatchArg    = Error("batches must be institutionKey:YYYY-MM-DD pairs")
	ErrBadOutcome     = Error("outcome must be one of: passed, failed, pending")
	ErrBadMetadataArg = Error("metadata matches must be field=value[,value...] pairs")
	ErrNoCategories   = Error("at least one of --assemblies, --annotations or --reads is required")

	batchSeparator    = ":"
	metadataSeparator = "="
	valueSeparator    = ","

	outcomePassed  = "passed"
	outcomeFailed  = "failed"
	outcomePending = "pending"

	statusCacheLifetime = 5 * time.Minute
)

// appLogger is used for logging events in our commands.
var appLogger = log15.New()

// options common to our sub-commands.
var (
	projectID        string
	institutionsPath string
	samplesPath      string

	wantAssemblies  bool
	wantAnnotations bool
	wantReads       bool

	sequencingOutcome string
	pipelineOutcome   string
	metadataMatches   []string
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "monocle",
	Short: "monocle serves bulk downloads of sample data.",
	Long: `monocle serves bulk downloads of sample data.

Samples are selected by filtering sequencing warehouse status records: by
institution and delivery date batch, by sequencing or pipeline outcome, and by
submitted metadata field values.

Use the "estimate" sub-command to size up a download of the selected samples'
lane data files, "download plan" and "download fetch" to create the zip
archives, "csv" to get the samples' merged metadata as CSV, and "failures" for
sequencing and pipeline failure summaries.
`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once to
// the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		die("%s", err.Error())
	}
}

func init() {
	// set up logging to stderr
	appLogger.SetHandler(log15.LvlFilterHandler(log15.LvlInfo, log15.StderrHandler))

	RootCmd.PersistentFlags().StringVarP(&projectID, "project", "p", "",
		"project to serve: juno or gps")
	RootCmd.PersistentFlags().StringVarP(&institutionsPath, "institutions", "i", "",
		"path to the institutions JSON file")
	RootCmd.PersistentFlags().StringVarP(&samplesPath, "samples", "s", "",
		"path to a JSON file mapping institution keys to their sample IDs")
}

// addFilterFlags registers the sample selection flags on sub-commands that
// filter samples.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sequencingOutcome, "sequencing", "",
		"only samples with a lane whose sequencing outcome is: passed, failed or pending")
	cmd.Flags().StringVar(&pipelineOutcome, "pipeline", "",
		"only samples with a lane whose pipeline outcome is: passed, failed or pending")
	cmd.Flags().StringArrayVar(&metadataMatches, "metadata", nil,
		"only samples whose metadata matches field=value[,value...]; repeatable")
}

// addCategoryFlags registers the lane file category flags on sub-commands
// that resolve lane data files.
func addCategoryFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&wantAssemblies, "assemblies", false, "include assembly files")
	cmd.Flags().BoolVar(&wantAnnotations, "annotations", false, "include annotation files")
	cmd.Flags().BoolVar(&wantReads, "reads", false, "include read files")
}

func mustConfig() *config.Config {
	c, err := config.FromEnv()
	if err != nil {
		die("%s", err.Error())
	}

	return c
}

func mustProject() config.Project {
	project, err := config.GetProject(projectID)
	if err != nil {
		die("%s: %s", err.Error(), projectID)
	}

	return project
}

func mustInstitutions() institutions.Directory {
	dir, err := institutions.FromJSONFile(institutionsPath)
	if err != nil {
		die("could not load institutions: %s", err.Error())
	}

	return dir
}

// mustSampleIDs loads the institution key to sample IDs map that tells us
// which samples to ask the warehouse about.
func mustSampleIDs() map[string][]string {
	data, err := os.ReadFile(samplesPath)
	if err != nil {
		die("could not load sample IDs: %s", err.Error())
	}

	ids := make(map[string][]string)
	if err := json.Unmarshal(data, &ids); err != nil {
		die("could not parse sample IDs: %s", err.Error())
	}

	return ids
}

// statusCache memoises successful warehouse results, so commands that fetch
// status more than once only hit the warehouse for what has expired.
var statusCache = warehouse.NewCache(statusCacheLifetime)

// fetchStatus queries the sequencing warehouse for the status of every sample
// in the samples file, answering from the status cache where possible.
func fetchStatus(c *config.Config) warehouse.StatusByInstitution {
	client := warehouse.NewClient(c.WarehouseURL)

	return statusCache.ForInstitutions(context.Background(), client, mustSampleIDs())
}

// mustFilterEngine builds a filter.Engine, connecting to the pipeline and
// metadata databases only if the corresponding filter flags were given. The
// returned closer must be called when done.
func mustFilterEngine(c *config.Config, project config.Project,
	dir institutions.Directory) (*filter.Engine, func()) {
	var (
		pipeSrc pipeline.Source
		metaSrc filter.MetadataSampleSource
		closers []func() error
	)

	if pipelineOutcome != "" {
		db, err := pipeline.New(c.MySQLConfig())
		if err != nil {
			die("could not connect to the pipeline database: %s", err.Error())
		}

		pipeSrc = db
		closers = append(closers, db.Close)
	}

	if len(metadataMatches) > 0 {
		db, err := metadb.New(c.MySQLConfig())
		if err != nil {
			die("could not connect to the metadata database: %s", err.Error())
		}

		metaSrc = db
		closers = append(closers, db.Close)
	}

	closeAll := func() {
		for _, close := range closers {
			if err := close(); err != nil {
				warn("%s", err.Error())
			}
		}
	}

	return filter.New(project, dir, pipeSrc, metaSrc, appLogger), closeAll
}

// buildFilter turns our filter flags and the positional batch args in to a
// types.Filter.
func buildFilter(batchArgs []string) types.Filter {
	f := types.Filter{Batches: parseBatches(batchArgs)}

	if sequencingOutcome != "" {
		f.Sequencing = parseOutcome(sequencingOutcome)
	}

	if pipelineOutcome != "" {
		f.Pipeline = parseOutcome(pipelineOutcome)
	}

	if len(metadataMatches) > 0 {
		f.Metadata = parseMetadataMatches(metadataMatches)
	}

	return f
}

func parseBatches(batchArgs []string) []types.Batch {
	batches := make([]types.Batch, 0, len(batchArgs))

	for _, arg := range batchArgs {
		parts := strings.SplitN(arg, batchSeparator, 2)
		if len(parts) != 2 {
			die("%s: %s", ErrBadBatchArg, arg)
		}

		batches = append(batches, types.Batch{
			InstitutionKey: parts[0],
			Date:           parts[1],
		})
	}

	return batches
}

func parseOutcome(outcome string) *types.OutcomePredicate {
	switch outcome {
	case outcomePassed:
		return &types.OutcomePredicate{Complete: true, Success: true}
	case outcomeFailed:
		return &types.OutcomePredicate{Complete: true, Success: false}
	case outcomePending:
		return &types.OutcomePredicate{Complete: false, Success: false}
	default:
		die("%s: %s", ErrBadOutcome, outcome)

		return nil
	}
}

func parseMetadataMatches(matches []string) map[string][]string {
	fieldValues := make(map[string][]string, len(matches))

	for _, match := range matches {
		parts := strings.SplitN(match, metadataSeparator, 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			die("%s: %s", ErrBadMetadataArg, match)
		}

		fieldValues[parts[0]] = strings.Split(parts[1], valueSeparator)
	}

	return fieldValues
}

func selectedCategories() lanefiles.Categories {
	cats := lanefiles.Categories{
		Assemblies:  wantAssemblies,
		Annotations: wantAnnotations,
		Reads:       wantReads,
	}

	if !cats.Assemblies && !cats.Annotations && !cats.Reads {
		die("%s", ErrNoCategories)
	}

	return cats
}

// printJSON outputs v to STDOUT as indented JSON.
func printJSON(v interface{}) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		die("%s", err.Error())
	}

	cliPrint("%s\n", string(bytes))
}

// cliPrint outputs the message to STDOUT.
func cliPrint(msg string, a ...interface{}) {
	fmt.Fprintf(os.Stdout, msg, a...)
}

// cliPrintRaw is like cliPrint, but does no interpretation of placeholders in
// msg.
func cliPrintRaw(msg string) {
	fmt.Fprint(os.Stdout, msg)
}

// info is a convenience to log a message at the Info level.
func info(msg string, a ...interface{}) {
	appLogger.Info(fmt.Sprintf(msg, a...))
}

// warn is a convenience to log a message at the Warn level.
func warn(msg string, a ...interface{}) {
	appLogger.Warn(fmt.Sprintf(msg, a...))
}

// die is a convenience to log a message at the Error level and exit non zero.
func die(msg string, a ...interface{}) {
	appLogger.Error(fmt.Sprintf(msg, a...))
	os.Exit(1)
}
