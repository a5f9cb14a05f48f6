// Package yuzulogmock is a hand-written stand-in for what `mockgen`
// would generate for yuzulog.Logger: a go.uber.org/mock/gomock mock
// living in its own importable package, the same layout
// mama165-chat-lab's generated `mocks` package uses for its
// repository interfaces. Written by hand since go:generate/mockgen
// cannot be run here.
package yuzulogmock

import (
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/yuzu-sync/yuzu/yuzulog"
)

type MockLogger struct {
	ctrl     *gomock.Controller
	recorder *MockLoggerMockRecorder
}

type MockLoggerMockRecorder struct {
	mock *MockLogger
}

func NewMockLogger(ctrl *gomock.Controller) *MockLogger {
	m := &MockLogger{ctrl: ctrl}
	m.recorder = &MockLoggerMockRecorder{m}
	return m
}

func (m *MockLogger) EXPECT() *MockLoggerMockRecorder { return m.recorder }

var _ yuzulog.Logger = (*MockLogger)(nil)

func (m *MockLogger) Debugf(format string, args ...any) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Debugf", append([]any{format}, args...)...)
}

func (mr *MockLoggerMockRecorder) Debugf(args ...any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Debugf", reflect.TypeOf((*MockLogger)(nil).Debugf), args...)
}

func (m *MockLogger) Logf(format string, args ...any) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Logf", append([]any{format}, args...)...)
}

func (mr *MockLoggerMockRecorder) Logf(args ...any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Logf", reflect.TypeOf((*MockLogger)(nil).Logf), args...)
}

func (m *MockLogger) Warnf(format string, args ...any) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Warnf", append([]any{format}, args...)...)
}

func (mr *MockLoggerMockRecorder) Warnf(args ...any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Warnf", reflect.TypeOf((*MockLogger)(nil).Warnf), args...)
}

func (m *MockLogger) Errorf(format string, args ...any) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Errorf", append([]any{format}, args...)...)
}

func (mr *MockLoggerMockRecorder) Errorf(args ...any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Errorf", reflect.TypeOf((*MockLogger)(nil).Errorf), args...)
}
