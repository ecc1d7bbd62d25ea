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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seescience/beamtime-server/config"
	"github.com/seescience/beamtime-server/internal/lock"
)

// withWorkerLock runs fn while holding the host-level worker lock. The
// context handed to fn is cancelled on SIGINT or SIGTERM.
func withWorkerLock(app *beamtimeInstance, parent context.Context, fn func(ctx context.Context) error) error {
	locker := lock.NewLocker(app.cnf.Queue.LockDir)
	if err := locker.Lock(); err != nil {
		if errors.Is(err, lock.ErrHeld) {
			app.logger.WithField("lock", locker.Path()).Error("Refusing to start")
		}
		return err
	}
	defer func() {
		if err := locker.Unlock(); err != nil {
			app.logger.WithError(err).Warn("Failed to release worker lock")
		}
	}()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx)
}

func queueCommands(app *beamtimeInstance) *cobra.Command {
	var interval int

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Continuously process the experiment queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			pollInterval := app.cnf.PollInterval()
			if cmd.Flags().Changed("interval") {
				if interval <= 0 {
					return fmt.Errorf("interval must be positive, got %d", interval)
				}
				pollInterval = time.Duration(interval) * time.Second
			}

			if err := app.open(); err != nil {
				return err
			}
			defer app.close()

			return withWorkerLock(app, cmd.Context(), func(ctx context.Context) error {
				return app.beamtime.Queue.RunContinuous(ctx, pollInterval)
			})
		},
	}

	cmd.Flags().IntVar(&interval, "interval", config.DEFAULT_POLL_INTERVAL, "Polling interval in seconds")
	cmd.AddCommand(queueStatusCommand(app))
	return cmd
}

func queueStatusCommand(app *beamtimeInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show how many entries are waiting in the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.open(); err != nil {
				return err
			}
			defer app.close()

			count, err := app.ds.CountQueueEntries(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Pending queue entries: %d\n", count)
			return nil
		},
	}
}

func batchCommands(app *beamtimeInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Process every pending queue entry once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.open(); err != nil {
				return err
			}
			defer app.close()

			return withWorkerLock(app, cmd.Context(), func(ctx context.Context) error {
				count, err := app.beamtime.Queue.ProcessAllPending(ctx)
				fmt.Printf("Processed %d queue entries\n", count)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}
