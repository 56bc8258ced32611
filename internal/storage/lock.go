package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned by AcquireLock when another tracker instance holds
// the lock on the state directory.
var ErrLocked = errors.New("state directory is locked by another wg-tracker instance")

// LockHolder is written into the lock file by the instance holding it.
type LockHolder struct {
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`
	RunID     string    `json:"run_id"`
}

func (h LockHolder) String() string {
	return fmt.Sprintf("run %s (PID %d on %s, started %s)",
		h.RunID, h.PID, h.Hostname, h.StartedAt.Format(time.RFC3339))
}

const (
	lockRetries    = 5
	lockRetryDelay = 10 * time.Millisecond
)

// Lock is an exclusive advisory lock on a state directory, held until Release.
type Lock struct {
	file *os.File
}

// AcquireLock takes the exclusive lock at path without blocking. If another
// process holds it the error wraps ErrLocked. The kernel drops the lock when
// the process exits, so a crashed run never leaves a stale lock behind.
//
// A conflict is retried for a short while, which outlasts any IsLocked check
// but not a running instance.
func AcquireLock(path, runID string) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open lockfile: %w", err)
	}

	for attempt := 0; ; attempt++ {
		err = unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EWOULDBLOCK) {
			_ = file.Close()
			return nil, fmt.Errorf("could not lock lockfile: %w", err)
		}
		if attempt < lockRetries {
			time.Sleep(lockRetryDelay)
			continue
		}
		_ = file.Close()
		if holder, herr := ReadLockHolder(path); herr == nil && holder != nil {
			return nil, fmt.Errorf("%w: held by %s", ErrLocked, holder)
		}
		return nil, ErrLocked
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	holder := LockHolder{
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartedAt: time.Now().UTC(),
		RunID:     runID,
	}
	if err := writeHolder(file, holder); err != nil {
		_ = unix.Flock(int(file.Fd()), unix.LOCK_UN)
		_ = file.Close()
		return nil, err
	}

	return &Lock{file: file}, nil
}

func writeHolder(file *os.File, holder LockHolder) error {
	data, err := json.MarshalIndent(holder, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal lock holder: %w", err)
	}
	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate lockfile: %w", err)
	}
	if _, err := file.WriteAt(data, 0); err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	return file.Sync()
}

// Release clears the holder record and drops the lock. Calling Release on
// a nil or already released Lock is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	file := l.file
	l.file = nil

	_ = file.Truncate(0)
	if err := unix.Flock(int(file.Fd()), unix.LOCK_UN); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to unlock lockfile: %w", err)
	}
	return file.Close()
}

// ReadLockHolder returns the holder recorded in the lock file at path, or
// nil if the file is missing or empty. It does not take the lock.
func ReadLockHolder(path string) (*LockHolder, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not open lockfile: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("could not read lockfile: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var holder LockHolder
	if err := json.Unmarshal(data, &holder); err != nil {
		return nil, fmt.Errorf("invalid lockfile contents: %w", err)
	}
	return &holder, nil
}

// IsLocked reports whether some process currently holds the lock at path.
// A file without a holder record is reported unlocked without touching the
// lock. Otherwise the check holds a shared lock for a moment, shorter than
// AcquireLock's retry window.
func IsLocked(path string) (bool, error) {
	holder, err := ReadLockHolder(path)
	if err != nil || holder == nil {
		return false, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("could not open lockfile: %w", err)
	}
	defer func() { _ = file.Close() }()

	err = unix.Flock(int(file.Fd()), unix.LOCK_SH|unix.LOCK_NB)
	if errors.Is(err, unix.EWOULDBLOCK) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not probe lockfile: %w", err)
	}
	_ = unix.Flock(int(file.Fd()), unix.LOCK_UN)
	return false, nil
}
