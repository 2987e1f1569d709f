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

package sizes

import "github.com/dustin/go-humanize"

const (
	// OverestimateFactor is the multiplier applied to raw byte counts when
	// estimating zipped sizes. Assembly and read files are already
	// compressed, so compression gains are assumed negligible.
	OverestimateFactor = 1.0

	// The divisor starts at divisorStart and grows by divisorGrowth each
	// time we offer a smaller samples-per-zip option. These values are
	// empirically chosen and preserved for compatibility.
	divisorStart  = 4.0
	divisorGrowth = 1.2

	// minViableBatch is the smallest worthwhile samples-per-zip to offer;
	// read files are large enough that 1 per zip can be worthwhile.
	minViableBatch          = 3
	minViableBatchWithReads = 1
)

// ToHuman returns the given byte count as a human-readable comma-grouped
// string, eg. "1,260,072 Bytes".
func ToHuman(n int64) string {
	return humanize.Comma(n) + " Bytes"
}

// ZipOption pairs a samples-per-zip choice with the estimated size of each
// zip that choice would produce.
type ZipOption struct {
	MaxSamplesPerZip int
	SizePerZip       string
}

// ZipOptions calculates samples-per-zip options for archiving numSamples
// samples totalling totalBytes, starting at maxPerZip samples per zip and
// offering progressively smaller batches.
//
// The first option reports the exact total size when a single zip would hold
// every sample; all other estimates multiply by OverestimateFactor.
func ZipOptions(totalBytes int64, numSamples, maxPerZip int, withReads bool) []ZipOption {
	if numSamples <= 0 || maxPerZip <= 0 {
		return nil
	}

	minViable := minViableBatch
	if withReads {
		minViable = minViableBatchWithReads
	}

	bytesPerSample := float64(totalBytes) / float64(numSamples)

	var options []ZipOption

	divisor := divisorStart
	perZip := maxPerZip

	for {
		size := int64(bytesPerSample * float64(perZip) * OverestimateFactor)
		if len(options) == 0 && perZip >= numSamples {
			size = totalBytes
		}

		options = append(options, ZipOption{
			MaxSamplesPerZip: perZip,
			SizePerZip:       ToHuman(size),
		})

		if perZip == 1 {
			break
		}

		next := int(float64(maxPerZip) / divisor)
		divisor *= divisorGrowth

		for next >= perZip && next > 1 {
			next = int(float64(maxPerZip) / divisor)
			divisor *= divisorGrowth
		}

		if next < minViable {
			break
		}

		perZip = next
	}

	return options
}
