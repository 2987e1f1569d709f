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

// Package lanefiles maps filtered samples to the lane data files that exist
// for them on disk under an institution-view root.
package lanefiles

import (
	"os"
	"path/filepath"

	"github.com/inconshreveable/log15"
	"github.com/sanger-pathogens/monocle-sub000/config"
	"github.com/sanger-pathogens/monocle-sub000/types"
)

// Categories selects which kinds of lane data files to resolve.
type Categories struct {
	Assemblies  bool
	Annotations bool
	Reads       bool
}

// Resolver finds on-disk lane files for samples of one project.
type Resolver struct {
	ViewRoot string
	Project  config.Project
	Logger   log15.Logger
}

// New returns a Resolver rooted at the project's institution-view root.
// Returns a configuration error if the view root environment variable for
// the project isn't set.
func New(project config.Project, logger log15.Logger) (*Resolver, error) {
	viewRoot, err := project.ViewRoot()
	if err != nil {
		return nil, err
	}

	return &Resolver{
		ViewRoot: viewRoot,
		Project:  project,
		Logger:   logger,
	}, nil
}

// Resolve returns a mapping from each sample's public name to the candidate
// lane files that actually exist on disk for the selected categories.
// Candidates that don't exist are skipped, and a sample with no existing
// files gets no entry; neither is an error.
func (r *Resolver) Resolve(samples []types.Sample, cats Categories) *FileMapping {
	mapping := NewFileMapping()

	for i := range samples {
		sample := &samples[i]

		for _, laneID := range sample.LaneIDs {
			for _, candidate := range r.laneCandidates(sample, laneID, cats) {
				if !fileExists(candidate) {
					r.Logger.Debug("lane file does not exist", "path", candidate)

					continue
				}

				mapping.Add(sample.Name(), candidate)
			}
		}
	}

	return mapping
}

func (r *Resolver) laneCandidates(sample *types.Sample, laneID string, cats Categories) []string {
	var names []string

	if cats.Assemblies {
		names = append(names, laneID+r.Project.AssemblySuffix)
	}

	if cats.Annotations {
		names = append(names, laneID+r.Project.AnnotationSuffix)
	}

	if cats.Reads {
		for _, suffix := range r.Project.ReadsSuffixes {
			names = append(names, laneID+suffix)
		}
	}

	paths := make([]string, len(names))

	for i, name := range names {
		paths[i] = filepath.Join(r.ViewRoot, sample.InstitutionKey, sample.Name(), name)
	}

	return paths
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
