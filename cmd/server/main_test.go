package main

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCloseAll_ReverseOrderAndLogsErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	var order []string
	closers := []closer{
		{name: "mysql", close: func() error { order = append(order, "mysql"); return nil }},
		{name: "redis", close: func() error { order = append(order, "redis"); return errors.New("connection reset") }},
	}

	closeAll(closers, log)

	if len(order) != 2 || order[0] != "redis" || order[1] != "mysql" {
		t.Errorf("expected reverse close order, got %v", order)
	}

	failed := logs.FilterMessage("close failed").All()
	if len(failed) != 1 {
		t.Fatalf("expected 1 close failure logged, got %d", len(failed))
	}
	if failed[0].ContextMap()["resource"] != "redis" {
		t.Errorf("expected redis failure, got %v", failed[0].ContextMap())
	}
}

func TestFinish(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	if code := finish(log, nil); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if logs.Len() != 0 {
		t.Errorf("expected nothing logged on success, got %d entries", logs.Len())
	}

	if code := finish(log, errors.New("listen grpc: address in use")); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if logs.FilterMessage("server failed").Len() != 1 {
		t.Error("expected failure to be logged before exit")
	}
}
