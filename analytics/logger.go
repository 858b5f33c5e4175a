package analytics

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ WorkflowDataCollector = new(LogFileDataCollector)

// LogFileDataCollector appends audit records as JSON lines to a file.
type LogFileDataCollector struct {
	fileName string
	file     *os.File
	logger   *zap.Logger
}

func NewLogFileDataCollector(fileName string) (*LogFileDataCollector, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.StacktraceKey = ""
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	logFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	writer := zapcore.AddSync(logFile)
	core := zapcore.NewTee(zapcore.NewCore(fileEncoder, writer, zapcore.InfoLevel))
	return &LogFileDataCollector{
		fileName: fileName,
		file:     logFile,
		logger:   zap.New(core),
	}, nil
}

// Close flushes buffered audit records and releases the file handle.
func (lc *LogFileDataCollector) Close() error {
	if err := lc.logger.Sync(); err != nil {
		return err
	}
	return lc.file.Close()
}

func (lc *LogFileDataCollector) RecordNodeExecution(tenantId string, instanceId string, nodeId string, kind string) {
	lc.logger.Info("node_executed", zap.String("tenant", tenantId), zap.String("instance", instanceId), zap.String("node", nodeId), zap.String("kind", kind))
}

func (lc *LogFileDataCollector) RecordTaskCreated(tenantId string, instanceId string, taskId string, nodeId string, assignee string) {
	lc.logger.Info("task_created", zap.String("tenant", tenantId), zap.String("instance", instanceId), zap.String("task", taskId), zap.String("node", nodeId), zap.String("assignee", assignee))
}

func (lc *LogFileDataCollector) RecordTaskCompleted(tenantId string, instanceId string, taskId string, result string, userId string) {
	lc.logger.Info("task_completed", zap.String("tenant", tenantId), zap.String("instance", instanceId), zap.String("task", taskId), zap.String("result", result), zap.String("user", userId))
}

func (lc *LogFileDataCollector) RecordInstanceTerminal(tenantId string, instanceId string, status string, reason string) {
	lc.logger.Info("instance_terminal", zap.String("tenant", tenantId), zap.String("instance", instanceId), zap.String("status", status), zap.String("reason", reason))
}
