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

// Package metadb reads submitted sample metadata, in-silico typing results
// and QC metrics from the metadata database, as ordered, titled field
// records.
package metadb

import (
	"database/sql"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	sqlDriverName   = "mysql"
	connMaxLifetime = time.Minute * 3
	maxOpenConns    = 10
	maxIdleConns    = 10

	categoryMetadata = "metadata"
	categoryInSilico = "in_silico"
	categoryQC       = "qc_data"
)

type Error string

func (e Error) Error() string { return string(e) }

const ErrUnknownField = Error("unknown metadata field")

// Field is one tabular cell: the field's name, its human display title, its
// declared column position, and this record's value.
type Field struct {
	Name  string
	Title string
	Order int
	Value string
}

// Row is one record's fields, in declared column order.
type Row []Field

// Get returns the named field of this row, and whether it exists.
func (r Row) Get(name string) (Field, bool) {
	for _, f := range r {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// Source can retrieve tabular download data from the metadata database. All
// Get* methods translate "nothing known about these IDs" to an empty result,
// never an error.
type Source interface {
	GetMetadata(projectID string, sampleIDs []string) ([]Row, error)
	GetInSilicoData(projectID string, laneIDs []string) ([]Row, error)
	GetQCData(projectID string, laneIDs []string) ([]Row, error)

	// SamplesMatchingMetadata returns the IDs of samples whose metadata
	// matches all the given field name to allowed-values constraints.
	// Unknown field names are ErrUnknownField.
	SamplesMatchingMetadata(projectID string, fieldValues map[string][]string) ([]string, error)

	Close() error
}

// DB is a connection to the metadata database.
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

const getFields = `
SELECT name, title, field_order
FROM metadata_fields
WHERE project_id = ? AND category = ?
ORDER BY field_order
`

const getValues = `
SELECT record_id, name, value
FROM metadata_values
WHERE project_id = ? AND category = ? AND record_id IN (%IN%)
`

const getMatchingRecords = `
SELECT DISTINCT record_id
FROM metadata_values
WHERE project_id = ? AND category = ? AND name = ? AND value IN (%IN%)
`

// GetMetadata implements Source.
func (d *DB) GetMetadata(projectID string, sampleIDs []string) ([]Row, error) {
	return d.rowsForCategory(projectID, categoryMetadata, sampleIDs)
}

// GetInSilicoData implements Source.
func (d *DB) GetInSilicoData(projectID string, laneIDs []string) ([]Row, error) {
	return d.rowsForCategory(projectID, categoryInSilico, laneIDs)
}

// GetQCData implements Source.
func (d *DB) GetQCData(projectID string, laneIDs []string) ([]Row, error) {
	return d.rowsForCategory(projectID, categoryQC, laneIDs)
}

func (d *DB) rowsForCategory(projectID, category string, recordIDs []string) ([]Row, error) {
	if len(recordIDs) == 0 {
		return nil, nil
	}

	dict, err := d.fieldDictionary(projectID, category)
	if err != nil {
		return nil, err
	}

	values, err := d.valuesByRecord(projectID, category, recordIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(values))

	for _, recordID := range recordIDs {
		recordValues, ok := values[recordID]
		if !ok {
			continue
		}

		row := make(Row, len(dict))

		for i, field := range dict {
			field.Value = recordValues[field.Name]
			row[i] = field
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func (d *DB) fieldDictionary(projectID, category string) ([]Field, error) {
	rows, err := d.pool.Query(getFields, projectID, category)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var dict []Field

	for rows.Next() {
		var field Field

		if err := rows.Scan(&field.Name, &field.Title, &field.Order); err != nil {
			return nil, err
		}

		dict = append(dict, field)
	}

	return dict, rows.Err()
}

func (d *DB) valuesByRecord(projectID, category string, recordIDs []string) (map[string]map[string]string, error) {
	query, args := expandIn(getValues, []any{projectID, category}, recordIDs)

	rows, err := d.pool.Query(query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	values := make(map[string]map[string]string)

	for rows.Next() {
		var recordID, name string

		var value sql.NullString

		if err := rows.Scan(&recordID, &name, &value); err != nil {
			return nil, err
		}

		if values[recordID] == nil {
			values[recordID] = make(map[string]string)
		}

		values[recordID][name] = value.String
	}

	return values, rows.Err()
}

// SamplesMatchingMetadata implements Source.
func (d *DB) SamplesMatchingMetadata(projectID string, fieldValues map[string][]string) ([]string, error) {
	dict, err := d.fieldDictionary(projectID, categoryMetadata)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(dict))
	for _, field := range dict {
		known[field.Name] = true
	}

	var matching map[string]bool

	for name, allowed := range fieldValues {
		if !known[name] {
			return nil, ErrUnknownField
		}

		ids, err := d.recordsWithFieldValue(projectID, name, allowed)
		if err != nil {
			return nil, err
		}

		matching = intersect(matching, ids)
	}

	result := make([]string, 0, len(matching))

	for id := range matching {
		result = append(result, id)
	}

	return result, nil
}

func (d *DB) recordsWithFieldValue(projectID, name string, allowed []string) (map[string]bool, error) {
	query, args := expandIn(getMatchingRecords, []any{projectID, categoryMetadata, name}, allowed)

	rows, err := d.pool.Query(query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	ids := make(map[string]bool)

	for rows.Next() {
		var id string

		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids[id] = true
	}

	return ids, rows.Err()
}

// intersect returns the intersection of the two sets, treating a nil first
// set as "everything".
func intersect(a, b map[string]bool) map[string]bool {
	if a == nil {
		return b
	}

	result := make(map[string]bool)

	for id := range a {
		if b[id] {
			result[id] = true
		}
	}

	return result
}

// expandIn replaces the %IN% marker in query with one placeholder per entry
// of inArgs, returning the full argument list.
func expandIn(query string, args []any, inArgs []string) (string, []any) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(inArgs)), ",")

	for _, arg := range inArgs {
		args = append(args, arg)
	}

	return strings.Replace(query, "%IN%", placeholders, 1), args
}

// Close closes the connection to the metadata database.
func (d *DB) Close() error {
	return d.pool.Close()
}
