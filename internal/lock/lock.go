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

package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileName is the lock file created inside the configured lock directory.
const FileName = "beamtime-server.lock"

// ErrHeld is returned when another worker on this host holds the lock.
var ErrHeld = errors.New("another beamtime-server worker is already running")

// Locker is an advisory host-level lock that keeps a second queue worker
// from starting next to a running one.
type Locker struct {
	path string
	lock *flock.Flock
}

func NewLocker(dir string) *Locker {
	path := filepath.Join(dir, FileName)
	return &Locker{
		path: path,
		lock: flock.New(path),
	}
}

// Path returns the lock file location.
func (l *Locker) Path() string {
	return l.path
}

// Lock takes the lock without waiting. ErrHeld means it is taken.
func (l *Locker) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.path, err)
	}
	if !ok {
		return ErrHeld
	}
	return nil
}

// Unlock releases the lock. Releasing a lock that is not held is a no-op.
func (l *Locker) Unlock() error {
	if !l.lock.Locked() {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}
