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

package pipeline

import (
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	sqlDriverName   = "mysql"
	connMaxLifetime = time.Minute * 3
	maxOpenConns    = 10
	maxIdleConns    = 10

	StatusDone   = "Done"
	StatusFailed = "Failed"

	StageImport     = "import"
	StageQC         = "qc"
	StageAssembly   = "assembly"
	StageAnnotation = "annotation"
)

// Source can look up the analysis pipeline outcome for lanes.
type Source interface {
	// LaneStatus returns the pipeline status of the given lane. A lane the
	// pipeline hasn't seen yet gets a zero Status, not an error.
	LaneStatus(laneID string) (Status, error)

	// Close closes the connection to the pipeline status database.
	Close() error
}

// Status is the pipeline outcome for one lane: per-stage status text plus
// the derived overall success/failure flags.
type Status struct {
	Success bool
	Failed  bool
	Stages  map[string]string
}

// DB is a connection to the pipeline status database.
type DB struct {
	pool *sql.DB
}

// New returns a new DB connection using a mysql.Config that you can get from
// config.FromEnv() via MySQLConfig().
func New(c *mysql.Config) (*DB, error) {
	pool, err := sql.Open(sqlDriverName, c.FormatDSN())
	if err != nil {
		return nil, err
	}

	pool.SetConnMaxLifetime(connMaxLifetime)
	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetMaxIdleConns(maxIdleConns)

	return &DB{pool: pool}, pool.Ping()
}

const getLaneStatus = `
SELECT import_status, qc_status, assembly_status, annotation_status
FROM pipeline_status
WHERE lane_id = ?
`

// LaneStatus implements Source.
func (d *DB) LaneStatus(laneID string) (Status, error) {
	var importStatus, qcStatus, assemblyStatus, annotationStatus sql.NullString

	err := d.pool.QueryRow(getLaneStatus, laneID).Scan(
		&importStatus,
		&qcStatus,
		&assemblyStatus,
		&annotationStatus,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Status{Stages: make(map[string]string)}, nil
		}

		return Status{}, err
	}

	return StatusFromStages(map[string]string{
		StageImport:     importStatus.String,
		StageQC:         qcStatus.String,
		StageAssembly:   assemblyStatus.String,
		StageAnnotation: annotationStatus.String,
	}), nil
}

// StatusFromStages derives the overall success/failure flags from per-stage
// status text: failed if any stage failed, successful only if every stage is
// done.
func StatusFromStages(stages map[string]string) Status {
	status := Status{Stages: stages}

	if len(stages) == 0 {
		return status
	}

	status.Success = true

	for _, text := range stages {
		switch text {
		case StatusFailed:
			status.Failed = true
			status.Success = false
		case StatusDone:
		default:
			status.Success = false
		}
	}

	return status
}

// Close closes the connection to the pipeline status database.
func (d *DB) Close() error {
	return d.pool.Close()
}
