package otapackage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/conn-castle/ota-layer/internal/testutil"
)

func TestWriterCommitKeepsStagingOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ota.zip")
	w := NewWriter(path)
	require.NoError(t, w.WriteEntry("dtbo.img", []byte("dtbo")))
	require.NoError(t, w.WriteEntry("META-INF/com/google/android/updater-script", []byte("ui_print(\"x\");\n")))
	require.NoError(t, w.WriteEntry("vbmeta.img", []byte("vbmeta")))

	require.NoError(t, w.Commit())

	entries, names := testutil.ReadZip(t, path)
	require.Equal(t, []string{"dtbo.img", "META-INF/com/google/android/updater-script", "vbmeta.img"}, names)
	require.Equal(t, "vbmeta", string(entries["vbmeta.img"]))
	require.Equal(t, w.Entries(), names)
}

func TestWriterRejectsDuplicatesAndBlankNames(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "ota.zip"))
	require.NoError(t, w.WriteEntry("dtbo.img", []byte("a")))
	require.Error(t, w.WriteEntry("dtbo.img", []byte("b")))
	require.Error(t, w.WriteEntry("", []byte("c")))

	data, ok := w.Entry("dtbo.img")
	require.True(t, ok)
	require.Equal(t, "a", string(data))
	_, ok = w.Entry("missing")
	require.False(t, ok)
}

func TestWriterCopiesStagedData(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "ota.zip"))
	data := []byte("abc")
	require.NoError(t, w.WriteEntry("a", data))
	data[0] = 'X'
	got, _ := w.Entry("a")
	require.Equal(t, "abc", string(got))
}

func TestWriterCommitReplacesExistingPackage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ota.zip")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	w := NewWriter(path)
	require.NoError(t, w.WriteEntry("a", []byte("fresh")))
	require.NoError(t, w.Commit())

	entries, _ := testutil.ReadZip(t, path)
	require.Equal(t, "fresh", string(entries["a"]))
}

func TestWriterCommitMissingDir(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "missing", "ota.zip"))
	require.Error(t, w.Commit())
}

func TestWithLockRunsFn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ota.zip")
	ran := false
	require.NoError(t, WithLock(path, func() error {
		ran = true
		data, err := os.ReadFile(LockPath(path))
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("pid %d\n", os.Getpid()), string(data))
		return nil
	}))
	require.True(t, ran)

	data, err := os.ReadFile(LockPath(path))
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestWithLockPropagatesFnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ota.zip")
	boom := errors.New("boom")
	require.ErrorIs(t, WithLock(path, func() error { return boom }), boom)
}

func TestWithLockTimesOut(t *testing.T) {
	origFlock, origSleep, origTimeout := flockFn, lockSleep, lockWaitTimeout
	t.Cleanup(func() {
		flockFn, lockSleep, lockWaitTimeout = origFlock, origSleep, origTimeout
	})
	flockFn = func(int, int) error { return unix.EWOULDBLOCK }
	lockSleep = func(time.Duration) {}
	lockWaitTimeout = 0

	output := filepath.Join(t.TempDir(), "ota.zip")
	require.NoError(t, os.WriteFile(LockPath(output), []byte("pid 4242\n"), 0o644))

	err := WithLock(output, func() error {
		t.Fatalf("fn must not run without the lock")
		return nil
	})
	require.EqualError(t, err, "output package "+output+" is locked by another build (pid 4242; waited 0s)")

	data, err := os.ReadFile(LockPath(output))
	require.NoError(t, err)
	require.Equal(t, "pid 4242\n", string(data), "a waiter must not overwrite the holder note")
}

func TestWithLockTimeoutWithoutHolderNote(t *testing.T) {
	origFlock, origSleep, origTimeout := flockFn, lockSleep, lockWaitTimeout
	t.Cleanup(func() {
		flockFn, lockSleep, lockWaitTimeout = origFlock, origSleep, origTimeout
	})
	flockFn = func(int, int) error { return unix.EAGAIN }
	lockSleep = func(time.Duration) {}
	lockWaitTimeout = 0

	err := WithLock(filepath.Join(t.TempDir(), "ota.zip"), func() error { return nil })
	require.Error(t, err)
	require.Contains(t, err.Error(), "(holder unknown; waited 0s)")
}

func TestWithLockSurfacesFlockErrors(t *testing.T) {
	origFlock := flockFn
	t.Cleanup(func() { flockFn = origFlock })
	flockFn = func(int, int) error { return unix.EBADF }

	err := WithLock(filepath.Join(t.TempDir(), "ota.zip"), func() error { return nil })
	require.ErrorIs(t, err, unix.EBADF)
}
