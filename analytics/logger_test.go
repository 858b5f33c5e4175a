package analytics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogFileDataCollector(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "audit.log")
	collector, err := NewLogFileDataCollector(fileName)
	require.NoError(t, err)

	collector.RecordNodeExecution("default", "inst-1", "review", "task")
	collector.RecordTaskCreated("default", "inst-1", "task-1", "review", "role:reviewer")
	collector.RecordTaskCompleted("default", "inst-1", "task-1", "approved", "alice")
	collector.RecordInstanceTerminal("default", "inst-1", "completed", "")
	require.NoError(t, collector.Close())

	data, err := os.ReadFile(fileName)
	require.NoError(t, err)
	content := string(data)
	for _, record := range []string{"node_executed", "task_created", "task_completed", "instance_terminal"} {
		require.Contains(t, content, record)
	}
	// One JSON line per record.
	require.Len(t, strings.Split(strings.TrimRight(content, "\n"), "\n"), 4)
}
