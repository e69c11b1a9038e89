package server

import (
	"testing"
	"time"
)

func TestClientLimiter_QuotaPerClient(t *testing.T) {
	l := newClientLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !l.allow("10.0.0.1") {
			t.Fatalf("request %d within quota denied", i+1)
		}
	}
	if l.allow("10.0.0.1") {
		t.Error("request over quota allowed")
	}
}

func TestClientLimiter_ClientsAreIndependent(t *testing.T) {
	l := newClientLimiter(1, time.Hour)

	if !l.allow("10.0.0.1") {
		t.Fatal("first client denied")
	}
	if !l.allow("10.0.0.2") {
		t.Error("second client must have its own quota")
	}
}

func TestClientLimiter_Defaults(t *testing.T) {
	l := newClientLimiter(0, 0)
	if !l.allow("10.0.0.1") {
		t.Error("defaulted limiter denied first request")
	}
}
