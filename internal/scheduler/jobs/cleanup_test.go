package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhenders/ibdash/pkg/logger"
)

func TestCleanupRemovesOnlyExpiredLogs(t *testing.T) {
	dir := t.TempDir()

	oldLog := filepath.Join(dir, "app-2025-01-01.log")
	freshLog := filepath.Join(dir, "app-today.log")
	oldOther := filepath.Join(dir, "notes.txt")

	for _, p := range []string{oldLog, freshLog, oldOther} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	stale := time.Now().Add(-240 * time.Hour)
	require.NoError(t, os.Chtimes(oldLog, stale, stale))
	require.NoError(t, os.Chtimes(oldOther, stale, stale))

	job := NewCleanupJob(dir, 168*time.Hour, "0 0 0 * * 0", logger.NewNop())
	require.NoError(t, job.Run(context.Background()))

	_, err := os.Stat(oldLog)
	assert.True(t, os.IsNotExist(err), "expired log should be removed")

	_, err = os.Stat(freshLog)
	assert.NoError(t, err, "fresh log should survive")

	_, err = os.Stat(oldOther)
	assert.NoError(t, err, "non-log files are never touched")
}

func TestCleanupMissingDirIsNoop(t *testing.T) {
	job := NewCleanupJob(filepath.Join(t.TempDir(), "absent"), time.Hour, "0 0 0 * * 0", logger.NewNop())
	assert.NoError(t, job.Run(context.Background()))
}
