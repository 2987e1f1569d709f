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

package config

import "os"

const (
	ErrUnknownProject  = Error("unknown project")
	ErrMissingViewRoot = Error("institution view root environment variable not set")

	ProjectJuno = "juno"
	ProjectGPS  = "gps"

	EnvVarJunoViewRoot = "MONOCLE_JUNO_INSTVIEW_ROOT"
	EnvVarGPSViewRoot  = "MONOCLE_GPS_INSTVIEW_ROOT"
)

// Project holds the per-project settings that differ between the sample
// tracking projects we serve: the naming-convention suffixes lane data files
// use on disk, the field name tabular downloads are merged on, and whether QC
// data is included in metadata downloads.
type Project struct {
	ID               string
	MergeKey         string
	IncludeQC        bool
	QCFlags          []string
	AssemblySuffix   string
	AnnotationSuffix string
	ReadsSuffixes    []string

	viewRootEnvVar string
}

var projects = map[string]Project{
	ProjectJuno: {
		ID:               ProjectJuno,
		MergeKey:         "lane_id",
		IncludeQC:        false,
		QCFlags:          []string{"qc_lib", "qc_seq"},
		AssemblySuffix:   ".contigs_spades.fa",
		AnnotationSuffix: ".spades.gff",
		ReadsSuffixes:    []string{"_1.fastq.gz", "_2.fastq.gz"},
		viewRootEnvVar:   EnvVarJunoViewRoot,
	},
	ProjectGPS: {
		ID:               ProjectGPS,
		MergeKey:         "lane_id",
		IncludeQC:        true,
		QCFlags:          []string{"qc_success"},
		AssemblySuffix:   ".contigs.fa",
		AnnotationSuffix: ".gff",
		ReadsSuffixes:    []string{"_1.fastq.gz", "_2.fastq.gz"},
		viewRootEnvVar:   EnvVarGPSViewRoot,
	},
}

// GetProject returns the settings for the project with the given ID,
// or ErrUnknownProject for IDs we don't serve.
func GetProject(id string) (Project, error) {
	p, ok := projects[id]
	if !ok {
		return Project{}, ErrUnknownProject
	}

	return p, nil
}

// ViewRoot returns the institution-view root directory for this project,
// taken from our project-specific environment variable. Returns
// ErrMissingViewRoot if the variable isn't set.
func (p Project) ViewRoot() (string, error) {
	root := os.Getenv(p.viewRootEnvVar)
	if root == "" {
		return "", ErrMissingViewRoot
	}

	return root, nil
}
