/*
Copyright 2025 The Beamtime Server Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"database/sql"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/seescience/beamtime-server/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var (
	instance    *Datasource
	instanceErr error
	once        sync.Once
)

const defaultConnectTimeout = 30 * time.Second

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (*Datasource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
// A failed first connect is remembered and returned to every later caller.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	once.Do(func() {
		con, err := ConnectDB(configuration.DataSource)
		if err != nil {
			instanceErr = err
			return
		}
		instance = &Datasource{Conn: con}
	})
	if instanceErr != nil {
		return nil, instanceErr
	}
	return instance, nil
}

// ConnectDB opens the PostgreSQL pool and waits for the server to answer,
// retrying with exponential backoff until the connect timeout elapses.
func ConnectDB(cfg config.DataSourceConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Dns)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSec) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeSec) * time.Second)

	// A zero MaxElapsedTime would retry forever.
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = time.Duration(cfg.ConnectTimeoutSec) * time.Second
	if policy.MaxElapsedTime <= 0 {
		policy.MaxElapsedTime = defaultConnectTimeout
	}

	err = backoff.RetryNotify(db.Ping, policy, func(err error, next time.Duration) {
		logrus.WithError(err).WithField("retry_in", next.Round(time.Millisecond).String()).Warn("Database not reachable, retrying")
	})
	if err != nil {
		logrus.WithError(err).Error("Database connection failed")
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the connection pool.
func (d Datasource) Close() error {
	return d.Conn.Close()
}
