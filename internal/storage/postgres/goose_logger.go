package postgres

import "go.uber.org/zap"

// gooseLogger routes goose output through zap.
type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.s.Infof(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.s.Fatalf(format, v...)
}
