// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package log

import (
	"io"
	"os"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogger logs at InfoLevel and above to os.Stdout.
var DefaultLogger = NewZap(InfoLevel, os.Stdout)

// Zap implements Logger on top of zap. Entries are JSON encoded.
type Zap struct {
	sugar   *zap.SugaredLogger
	level   zap.AtomicLevel
	outputs []io.Writer
}

// enforce compilation error
var _ Logger = (*Zap)(nil)

// NewZap creates a Logger writing entries at level and above to writers.
// It writes to os.Stdout when no writer is given.
func NewZap(level Level, writers ...io.Writer) *Zap {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}

	syncers := make([]zapcore.WriteSyncer, len(writers))
	for i, writer := range writers {
		syncers[i] = zapcore.AddSync(writer)
	}

	atomicLevel := zap.NewAtomicLevelAt(level.zapLevel())
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zap.CombineWriteSyncers(syncers...),
		atomicLevel,
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Zap{
		sugar:   logger.Sugar(),
		level:   atomicLevel,
		outputs: writers,
	}
}

func (z *Zap) Debug(v ...any) {
	z.sugar.Debug(v...)
}

func (z *Zap) Debugf(format string, v ...any) {
	z.sugar.Debugf(format, v...)
}

func (z *Zap) Info(v ...any) {
	z.sugar.Info(v...)
}

func (z *Zap) Infof(format string, v ...any) {
	z.sugar.Infof(format, v...)
}

func (z *Zap) Warn(v ...any) {
	z.sugar.Warn(v...)
}

func (z *Zap) Warnf(format string, v ...any) {
	z.sugar.Warnf(format, v...)
}

func (z *Zap) Error(v ...any) {
	z.sugar.Error(v...)
}

func (z *Zap) Errorf(format string, v ...any) {
	z.sugar.Errorf(format, v...)
}

// With returns a Logger that includes the given key-value pairs in every entry.
// The child shares the level of its parent.
func (z *Zap) With(keyValues ...any) Logger {
	if len(keyValues) == 0 {
		return z
	}
	return &Zap{
		sugar:   z.sugar.With(keyValues...),
		level:   z.level,
		outputs: z.outputs,
	}
}

// Enabled reports whether the given level is enabled
func (z *Zap) Enabled(level Level) bool {
	return level != InvalidLevel && z.level.Enabled(level.zapLevel())
}

// LogLevel returns the minimum level logged
func (z *Zap) LogLevel() Level {
	return fromZapLevel(z.level.Level())
}

// SetLevel changes the minimum level logged, including by the loggers derived with With
func (z *Zap) SetLevel(level Level) {
	z.level.SetLevel(level.zapLevel())
}

// Flush syncs the file outputs other than the standard streams
func (z *Zap) Flush() error {
	var err error
	for _, output := range z.outputs {
		file, ok := output.(*os.File)
		if !ok || file == os.Stdout || file == os.Stderr {
			continue
		}
		multierr.AppendInto(&err, file.Sync())
	}
	return err
}

func encoderConfig() zapcore.EncoderConfig {
	config := zap.NewProductionEncoderConfig()
	config.TimeKey = "ts"
	config.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339Nano)
	config.EncodeDuration = zapcore.StringDurationEncoder
	return config
}
