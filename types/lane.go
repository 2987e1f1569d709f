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

package types

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrUnknownQCFlag = Error("unknown qc flag")

	runStatusQCComplete = "qc complete"
	qcFlagPassed        = 1

	// QCFlagSuccess is the single-flag way of recording lane sequencing
	// success; QCFlagLib and QCFlagSeq are the two-flag way.
	QCFlagSuccess = "qc_success"
	QCFlagLib     = "qc_lib"
	QCFlagSeq     = "qc_seq"

	StageSequencing = "sequencing"
)

// Lane represents a single sequencing run output unit belonging to a sample,
// as reported by the sequencing warehouse.
type Lane struct {
	ID                 string
	RunStatus          string
	QCStarted          int
	QCSuccess          int
	QCLib              int
	QCSeq              int
	QCCompleteDatetime string
	QCStatusText       string
}

// FailureDetail records which stage of which lane failed and why.
type FailureDetail struct {
	Lane  string
	Stage string
	Issue string
}

// Complete reports whether sequencing and QC have finished for this lane,
// regardless of the QC outcome.
func (l *Lane) Complete() bool {
	return l.RunStatus == runStatusQCComplete &&
		l.QCCompleteDatetime != "" &&
		l.QCStarted == qcFlagPassed
}

// Successful reports whether this lane completed sequencing with all of the
// given qc flags passing. An incomplete lane is never successful. A
// FailureDetail is returned for each failing flag.
//
// Flags must be amongst QCFlagSuccess, QCFlagLib and QCFlagSeq, or
// ErrUnknownQCFlag is returned.
func (l *Lane) Successful(flags []string) (bool, []FailureDetail, error) {
	if !l.Complete() {
		return false, nil, nil
	}

	var details []FailureDetail

	for _, flag := range flags {
		val, err := l.qcFlag(flag)
		if err != nil {
			return false, nil, err
		}

		if val != qcFlagPassed {
			details = append(details, FailureDetail{
				Lane:  l.ID,
				Stage: StageSequencing,
				Issue: l.QCStatusText,
			})
		}
	}

	return len(details) == 0, details, nil
}

func (l *Lane) qcFlag(name string) (int, error) {
	switch name {
	case QCFlagSuccess:
		return l.QCSuccess, nil
	case QCFlagLib:
		return l.QCLib, nil
	case QCFlagSeq:
		return l.QCSeq, nil
	default:
		return 0, ErrUnknownQCFlag
	}
}
