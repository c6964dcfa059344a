package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsSecretsAndHashesUserIDs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	log.Info("calling upstream",
		"MEGALLM_API_KEY", "sk-live-123",
		"user_id", "2b1f3c6e-1111-2222-3333-444455556666",
		"model", "GPT_5",
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries: want=1 got=%d", len(entries))
	}
	fields := entries[0].ContextMap()
	if got := fields["MEGALLM_API_KEY"]; got != "[REDACTED]" {
		t.Fatalf("api key: want=[REDACTED] got=%v", got)
	}
	uid, _ := fields["user_id"].(string)
	if !strings.HasPrefix(uid, "hash:") {
		t.Fatalf("user_id: want hash prefix got=%q", uid)
	}
	if got := fields["model"]; got != "GPT_5" {
		t.Fatalf("model: want=GPT_5 got=%v", got)
	}
}

func TestWithCarriesSanitizedFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).With("service", "Ledger", "authorization", "Bearer abc")

	log.Warn("low balance")

	fields := logs.All()[0].ContextMap()
	if fields["service"] != "Ledger" {
		t.Fatalf("service: want=Ledger got=%v", fields["service"])
	}
	if fields["authorization"] != "[REDACTED]" {
		t.Fatalf("authorization: want=[REDACTED] got=%v", fields["authorization"])
	}
}

func TestNopDoesNotPanic(t *testing.T) {
	log := Nop()
	log.Debug("ignored", "k", "v")
	log.With("a", 1).Error("ignored")
	log.Sync()
}
