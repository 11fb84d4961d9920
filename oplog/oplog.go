// Package oplog schreibt das Operations-Log für Lösch- und
// Wiederherstellungsvorgänge in eine größenbasiert rotierende Datei.
package oplog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName ist der Name der aktiven Logdatei im Log-Verzeichnis.
const FileName = "operation.log"

// maxListedIDs: längere ID-Listen werden als Bereich zusammengefasst.
const maxListedIDs = 10

// Options steuern Ablageort und Rotation.
type Options struct {
	Dir         string
	MaxSizeMB   int
	BackupCount int
}

// Logger ist der Operations-Logger. Jeder Aufruf erzeugt genau einen
// Schreibvorgang und ist nebenläufig sicher.
type Logger struct {
	log    *zap.Logger
	closer io.Closer
	now    func() time.Time
}

// New öffnet das Operations-Log unter opts.Dir.
func New(opts Options) (*Logger, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, FileName),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.BackupCount,
	}
	return newLogger(zapcore.AddSync(rotator), rotator), nil
}

// timeLayout entspricht "%Y-%m-%d %H:%M:%S".
const timeLayout = "2006-01-02 15:04:05"

func newLogger(ws zapcore.WriteSyncer, closer io.Closer) *Logger {
	// Format: [INFO] 2006-01-02 15:04:05 - Nachricht
	// Level und Zeit setzt prefix, der Encoder gibt nur die Nachricht aus.
	encCfg := zapcore.EncoderConfig{MessageKey: "msg"}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(ws), zapcore.InfoLevel)
	return &Logger{log: zap.New(core), closer: closer, now: time.Now}
}

// LogDelete protokolliert einen Löschversuch.
func (l *Logger) LogDelete(ids []int64, success bool, count int64, err error) {
	l.write("DELETE", "Deleted", "delete", ids, success, count, err)
}

// LogRestore protokolliert einen Wiederherstellungsversuch.
func (l *Logger) LogRestore(ids []int64, success bool, count int64, err error) {
	l.write("RESTORE", "Restored", "restore", ids, success, count, err)
}

func (l *Logger) write(tag, done, verb string, ids []int64, success bool, count int64, err error) {
	if success {
		l.log.Info(l.prefix(zapcore.InfoLevel) + fmt.Sprintf("[%s] SUCCESS: %s extentids: %s (%d records)", tag, done, FormatIDs(ids), count))
		return
	}
	msg := "Unknown error"
	if err != nil {
		msg = err.Error()
	}
	l.log.Error(l.prefix(zapcore.ErrorLevel) + fmt.Sprintf("[%s] ERROR: Failed to %s extentids: %s - %s", tag, verb, FormatIDs(ids), msg))
}

func (l *Logger) prefix(level zapcore.Level) string {
	return "[" + level.CapitalString() + "] " + l.now().Format(timeLayout) + " - "
}

// FormatIDs rendert eine ID-Liste; mehr als zehn IDs werden zu
// "[<n> IDs: <erste>...<letzte>]" zusammengefasst.
func FormatIDs(ids []int64) string {
	if len(ids) > maxListedIDs {
		return fmt.Sprintf("[%d IDs: %d...%d]", len(ids), ids[0], ids[len(ids)-1])
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Close schreibt gepufferte Einträge und schließt die Datei.
func (l *Logger) Close() error {
	_ = l.log.Sync()
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
