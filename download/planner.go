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
	"os"

	"github.com/inconshreveable/log15"
	"github.com/sanger-pathogens/monocle-sub000/config"
	"github.com/sanger-pathogens/monocle-sub000/lanefiles"
	"github.com/sanger-pathogens/monocle-sub000/sizes"
	"github.com/sanger-pathogens/monocle-sub000/types"
)

// Planner computes download size estimates and samples-per-zip options.
type Planner struct {
	Resolver *lanefiles.Resolver
	Logger   log15.Logger

	MaxSamplesPerDownload     int
	MaxSamplesPerZip          int
	MaxSamplesPerZipWithReads int
}

// NewPlanner returns a Planner using the size limits from the given config.
func NewPlanner(c *config.Config, resolver *lanefiles.Resolver, logger log15.Logger) *Planner {
	return &Planner{
		Resolver:                  resolver,
		Logger:                    logger,
		MaxSamplesPerDownload:     c.MaxSamplesPerDownload,
		MaxSamplesPerZip:          c.MaxSamplesPerZip,
		MaxSamplesPerZipWithReads: c.MaxSamplesPerZipWithReads,
	}
}

// Estimate describes how big a download of some samples would be, and the
// samples-per-zip choices on offer.
type Estimate struct {
	NumSamples        int
	Size              string
	SizeZipped        string
	SizePerZipOptions []sizes.ZipOption

	// NumSamplesRestrictedTo is the per-download cap the sample count was
	// truncated to, or 0 if no truncation happened.
	NumSamplesRestrictedTo int
}

// Estimate sizes up a download of the given samples, capping the sample
// count at MaxSamplesPerDownload.
func (p *Planner) Estimate(samples []types.Sample, cats lanefiles.Categories) *Estimate {
	numSamples := len(samples)
	restrictedTo := 0

	if numSamples > p.MaxSamplesPerDownload {
		samples = samples[:p.MaxSamplesPerDownload]
		restrictedTo = p.MaxSamplesPerDownload
	}

	mapping := p.Resolver.Resolve(samples, cats)
	totalBytes := p.totalSize(mapping)
	zippedBytes := int64(float64(totalBytes) * sizes.OverestimateFactor)

	return &Estimate{
		NumSamples:             numSamples,
		Size:                   sizes.ToHuman(totalBytes),
		SizeZipped:             sizes.ToHuman(zippedBytes),
		SizePerZipOptions:      sizes.ZipOptions(totalBytes, mapping.Len(), p.MaxPerZip(cats), cats.Reads),
		NumSamplesRestrictedTo: restrictedTo,
	}
}

// MaxPerZip returns the samples-per-zip cap for the given categories; read
// files are much larger, so downloads including them use a lower cap.
func (p *Planner) MaxPerZip(cats lanefiles.Categories) int {
	if cats.Reads {
		return p.MaxSamplesPerZipWithReads
	}

	return p.MaxSamplesPerZip
}

// totalSize sums the on-disk sizes of every file in the mapping. Files that
// can't be statted count as 0 bytes and are logged, not fatal.
func (p *Planner) totalSize(mapping *lanefiles.FileMapping) int64 {
	var total int64

	for _, name := range mapping.Names() {
		for _, path := range mapping.Files(name) {
			info, err := os.Stat(path)
			if err != nil {
				p.Logger.Warn("could not size lane file", "path", path, "err", err)

				continue
			}

			total += info.Size()
		}
	}

	return total
}
