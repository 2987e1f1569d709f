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

import (
	"net"
	"os"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	EnvVarSQLUser      = "MONOCLE_SQL_USER"
	EnvVarSQLPass      = "MONOCLE_SQL_PASS"
	EnvVarSQLHost      = "MONOCLE_SQL_HOST"
	EnvVarSQLPort      = "MONOCLE_SQL_PORT"
	EnvVarSQLDB        = "MONOCLE_SQL_DB"
	EnvVarWarehouseURL = "MONOCLE_WAREHOUSE_URL"
	EnvVarDataDir      = "MONOCLE_DOWNLOAD_DATA_DIR"
	EnvVarWebDir       = "MONOCLE_DOWNLOAD_WEB_DIR"
	EnvVarURLPrefix    = "MONOCLE_DOWNLOAD_URL_PREFIX"

	EnvVarCrossInstDir    = "MONOCLE_CROSS_INSTITUTION_DIR"
	EnvVarMaxPerDownload  = "MONOCLE_MAX_SAMPLES_PER_DOWNLOAD"
	EnvVarMaxPerZip       = "MONOCLE_MAX_SAMPLES_PER_ZIP"
	EnvVarMaxPerZipReads  = "MONOCLE_MAX_SAMPLES_PER_ZIP_WITH_READS"
	defaultCrossInstDir   = "downloads"
	defaultMaxPerDownload = 500
	defaultMaxPerZip      = 100
	defaultMaxPerZipReads = 10

	sqlNetwork = "tcp"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrMissingEnvs     = Error("missing required environment variables")
	ErrInvalidEnvValue = Error("environment variable value is not a number")
)

// Config holds the settings needed to talk to the metadata database and
// sequencing warehouse, and to plan and serve bulk downloads.
type Config struct {
	User         string
	Password     string
	Host         string
	Port         string
	DBName       string
	WarehouseURL string

	// DataDir is the private shared directory that download params files and
	// zip archives live in; WebDir is the web-exposed directory that symlinks
	// to it are published in, served under URLPathPrefix.
	DataDir       string
	WebDir        string
	URLPathPrefix string

	// CrossInstitutionDir is the sub-directory of DataDir used for downloads
	// that span institutions.
	CrossInstitutionDir string

	MaxSamplesPerDownload     int
	MaxSamplesPerZip          int
	MaxSamplesPerZipWithReads int
}

// FromEnv returns a new Config with properties populated from environment
// variables MONOCLE_*, where * is amongst: SQL_USER, SQL_PASS, SQL_HOST,
// SQL_PORT, SQL_DB, WAREHOUSE_URL, DOWNLOAD_DATA_DIR, DOWNLOAD_WEB_DIR and
// DOWNLOAD_URL_PREFIX. CROSS_INSTITUTION_DIR and the MAX_SAMPLES_* variables
// are optional and have sensible defaults.
//
// If these environment variables are defined in a file called .env (and not
// previously set in an environment variable), they will be automatically
// loaded.
//
// Optionally supply a directory to look for the .env file in.
func FromEnv(dir ...string) (*Config, error) {
	var parentDir string
	if len(dir) == 1 {
		parentDir = dir[0] + string(os.PathSeparator)
	}

	godotenv.Load(parentDir + ".env")

	c := &Config{
		User:                os.Getenv(EnvVarSQLUser),
		Password:            os.Getenv(EnvVarSQLPass),
		Host:                os.Getenv(EnvVarSQLHost),
		Port:                os.Getenv(EnvVarSQLPort),
		DBName:              os.Getenv(EnvVarSQLDB),
		WarehouseURL:        os.Getenv(EnvVarWarehouseURL),
		DataDir:             os.Getenv(EnvVarDataDir),
		WebDir:              os.Getenv(EnvVarWebDir),
		URLPathPrefix:       os.Getenv(EnvVarURLPrefix),
		CrossInstitutionDir: os.Getenv(EnvVarCrossInstDir),
	}

	if c.User == "" || c.Password == "" || c.Host == "" || c.Port == "" ||
		c.DBName == "" || c.WarehouseURL == "" || c.DataDir == "" ||
		c.WebDir == "" || c.URLPathPrefix == "" {
		return nil, ErrMissingEnvs
	}

	if c.CrossInstitutionDir == "" {
		c.CrossInstitutionDir = defaultCrossInstDir
	}

	return c, c.parseLimits()
}

func (c *Config) parseLimits() error {
	limits := []struct {
		envVar       string
		defaultValue int
		dest         *int
	}{
		{EnvVarMaxPerDownload, defaultMaxPerDownload, &c.MaxSamplesPerDownload},
		{EnvVarMaxPerZip, defaultMaxPerZip, &c.MaxSamplesPerZip},
		{EnvVarMaxPerZipReads, defaultMaxPerZipReads, &c.MaxSamplesPerZipWithReads},
	}

	for _, limit := range limits {
		val, err := envInt(limit.envVar, limit.defaultValue)
		if err != nil {
			return err
		}

		*limit.dest = val
	}

	return nil
}

func envInt(envVar string, defaultValue int) (int, error) {
	str := os.Getenv(envVar)
	if str == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, ErrInvalidEnvValue
	}

	return val, nil
}

// MySQLConfig converts our SQL settings in to a mysql.Config suitable for
// passing to metadb.New() and pipeline.New().
func (c *Config) MySQLConfig() *mysql.Config {
	conf := mysql.NewConfig()
	conf.User = c.User
	conf.Passwd = c.Password
	conf.Net = sqlNetwork
	conf.Addr = net.JoinHostPort(c.Host, c.Port)
	conf.DBName = c.DBName

	return conf
}
