package log

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"
	glog "github.com/labstack/gommon/log"
	"github.com/sirupsen/logrus"
)

// NewEchoLogger returns an echo logger connected to logrus.
func NewEchoLogger(l *logrus.Logger) echo.Logger {
	return &echoLogger{log: l}
}

type echoLogger struct {
	log *logrus.Logger
}

func mustMarshal(j glog.JSON) string {
	b, err := json.Marshal(j)
	if err != nil {
		panic(fmt.Sprintf("unable to parse log message: %v", j))
	}
	return string(b)
}

func (l *echoLogger) SetLevel(v glog.Lvl) {
	switch v {
	case glog.DEBUG:
		l.log.SetLevel(logrus.DebugLevel)
	case glog.INFO:
		l.log.SetLevel(logrus.InfoLevel)
	case glog.WARN:
		l.log.SetLevel(logrus.WarnLevel)
	case glog.ERROR:
		l.log.SetLevel(logrus.ErrorLevel)
	}
}

func (l *echoLogger) Level() glog.Lvl {
	switch l.log.Level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return glog.DEBUG
	case logrus.InfoLevel:
		return glog.INFO
	case logrus.WarnLevel:
		return glog.WARN
	default:
		return glog.ERROR
	}
}

func (l *echoLogger) SetOutput(w io.Writer) { l.log.Out = w }
func (l *echoLogger) Output() io.Writer     { return l.log.Out }

func (l *echoLogger) SetPrefix(p string) { /* Logrus uses formatters rather than prefixes. */ }
func (l *echoLogger) Prefix() string     { return "" }

func (l *echoLogger) SetHeader(h string) { /* Logrus uses formatters rather than headers. */ }

func (l *echoLogger) Print(i ...interface{})                    { l.log.Print(i...) }
func (l *echoLogger) Printf(format string, args ...interface{}) { l.log.Printf(format, args...) }
func (l *echoLogger) Printj(j glog.JSON)                        { l.log.Println(mustMarshal(j)) }
func (l *echoLogger) Debug(i ...interface{})                    { l.log.Debug(i...) }
func (l *echoLogger) Debugf(format string, args ...interface{}) { l.log.Debugf(format, args...) }
func (l *echoLogger) Debugj(j glog.JSON)                        { l.log.Debugln(mustMarshal(j)) }
func (l *echoLogger) Info(i ...interface{})                     { l.log.Info(i...) }
func (l *echoLogger) Infof(format string, args ...interface{})  { l.log.Infof(format, args...) }
func (l *echoLogger) Infoj(j glog.JSON)                         { l.log.Infoln(mustMarshal(j)) }
func (l *echoLogger) Warn(i ...interface{})                     { l.log.Warn(i...) }
func (l *echoLogger) Warnf(format string, args ...interface{})  { l.log.Warnf(format, args...) }
func (l *echoLogger) Warnj(j glog.JSON)                         { l.log.Warnln(mustMarshal(j)) }
func (l *echoLogger) Error(i ...interface{})                    { l.log.Error(i...) }
func (l *echoLogger) Errorf(format string, args ...interface{}) { l.log.Errorf(format, args...) }
func (l *echoLogger) Errorj(j glog.JSON)                        { l.log.Errorln(mustMarshal(j)) }
func (l *echoLogger) Fatal(i ...interface{})                    { l.log.Fatal(i...) }
func (l *echoLogger) Fatalf(format string, args ...interface{}) { l.log.Fatalf(format, args...) }
func (l *echoLogger) Fatalj(j glog.JSON)                        { l.log.Fatalln(mustMarshal(j)) }
func (l *echoLogger) Panic(i ...interface{})                    { l.log.Panic(i...) }
func (l *echoLogger) Panicf(format string, args ...interface{}) { l.log.Panicf(format, args...) }
func (l *echoLogger) Panicj(j glog.JSON)                        { l.log.Panicln(mustMarshal(j)) }
