package otapackage

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/conn-castle/ota-layer/internal/messages"
)

var flockFn = unix.Flock
var lockSleep = time.Sleep

var (
	lockWaitTimeout = 30 * time.Second
	lockPollEvery   = 100 * time.Millisecond
)

// LockPath returns the advisory lock file guarding the package at output.
func LockPath(output string) string {
	return output + ".lock"
}

// outputLock is an exclusive flock on the sidecar of one output package. The
// holder's pid is written into the sidecar while the lock is held.
type outputLock struct {
	output string
	file   *os.File
}

// WithLock holds the lock on the output package while fn runs, so two builds
// never rename over the same package.
func WithLock(output string, fn func() error) error {
	lock, err := lockOutput(output)
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.release()
	}()
	return fn()
}

func lockOutput(output string) (*outputLock, error) {
	path := LockPath(output)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.OutputLockOpenFailedFmt, output, err)
	}
	lock := &outputLock{output: output, file: file}
	if err := lock.wait(); err != nil {
		_ = file.Close()
		return nil, err
	}
	lock.recordHolder()
	return lock, nil
}

// wait polls for the flock until lockWaitTimeout. A timeout names the pid the
// current holder recorded.
func (l *outputLock) wait() error {
	deadline := time.Now().Add(lockWaitTimeout)
	for {
		err := flockFn(int(l.file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EAGAIN) {
			return fmt.Errorf(messages.OutputLockFailedFmt, l.output, err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf(messages.OutputLockTimeoutFmt, l.output, l.holder(), lockWaitTimeout)
		}
		lockSleep(lockPollEvery)
	}
}

// recordHolder is best effort: the flock alone guards the package.
func (l *outputLock) recordHolder() {
	if err := l.file.Truncate(0); err != nil {
		return
	}
	_, _ = l.file.WriteAt([]byte(fmt.Sprintf(messages.OutputLockHolderFmt, os.Getpid())), 0)
}

func (l *outputLock) holder() string {
	data, err := os.ReadFile(l.file.Name())
	if err != nil || strings.TrimSpace(string(data)) == "" {
		return messages.OutputLockHolderUnknown
	}
	return strings.TrimSpace(string(data))
}

// release clears the holder note, unlocks, and closes. The sidecar stays
// behind; removing it would let a waiter lock an inode nobody else can see.
func (l *outputLock) release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = l.file.Truncate(0)
	if err := flockFn(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}
