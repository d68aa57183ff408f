package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type FileRotate struct {
	Enable     bool   // 是否同时写文件并切割
	Filename   string // 日志文件路径，如 logs/users.log
	MaxSizeMB  int    // 单个文件最大 MB
	MaxBackups int    // 保留旧文件个数
	MaxAgeDays int    // 保留天数
	Compress   bool   // 是否压缩旧日志
}

type Options struct {
	Level       string      // debug / info / warn / error，非法值按 info
	JSON        bool        // JSON 还是 console 编码
	AddCaller   bool        // 输出调用者文件行号
	Development bool        // DPanic 会 panic
	Out         io.Writer   // 主输出，默认 stdout
	Fields      []zap.Field // 每条日志都带的字段，如 service / env
	Rotate      FileRotate  // 文件切割（可选）
}

// New 按 Options 构建 logger，返回的 cleanup 负责 Sync
func New(opt Options) (*zap.Logger, func()) {
	lvl := parseLevel(opt.Level)
	enc := newEncoder(opt.JSON)

	out := opt.Out
	if out == nil {
		out = os.Stdout
	}
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(out), lvl)}
	if opt.Rotate.Enable {
		// 文件里固定用 JSON，方便采集
		cores = append(cores, zapcore.NewCore(newEncoder(true), newFileSink(opt.Rotate), lvl))
	}

	// 同一秒内同样的消息超过 100 条后只留 1%
	core := zapcore.NewSamplerWithOptions(zapcore.NewTee(cores...), time.Second, 100, 100)

	var zopts []zap.Option
	if opt.AddCaller {
		zopts = append(zopts, zap.AddCaller())
	}
	if opt.Development {
		zopts = append(zopts, zap.Development())
	}
	if len(opt.Fields) > 0 {
		zopts = append(zopts, zap.Fields(opt.Fields...))
	}
	l := zap.New(core, zopts...)
	return l, func() { _ = l.Sync() }
}

// NewConsole 给命令行用：写 stderr，stdout 留给命令输出
func NewConsole(level string) (*zap.Logger, func()) {
	return New(Options{Level: level, Out: os.Stderr})
}

func parseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.Set(strings.TrimSpace(s)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func newEncoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func newFileSink(r FileRotate) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   r.Filename,
		MaxSize:    max(1, r.MaxSizeMB),
		MaxBackups: max(0, r.MaxBackups),
		MaxAge:     max(0, r.MaxAgeDays),
		Compress:   r.Compress,
	})
}

type zapIOWriter struct {
	l     *zap.Logger
	level zapcore.Level
}

func (w *zapIOWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if ce := w.l.Check(w.level, msg); ce != nil {
		ce.Write()
	}
	return len(p), nil
}

// ToWriter 把按行写入的库日志（gorm 的 logger 等）转到 zap
func ToWriter(l *zap.Logger, level zapcore.Level) io.Writer {
	return &zapIOWriter{l: l, level: level}
}

// RedirectStdLog 标准库 log 包的输出改走 zap，返回还原函数
func RedirectStdLog(l *zap.Logger, level zapcore.Level) func() {
	undo, err := zap.RedirectStdLogAt(l, level)
	if err != nil {
		return func() {}
	}
	return undo
}
