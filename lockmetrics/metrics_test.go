package lockmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterAndObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New()
	m.Register(reg)

	m.AcquisitionsTotal.WithLabelValues("acquired").Inc()
	m.HeldLeases.Set(3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sawHeld bool
	for _, fam := range families {
		if fam.GetName() == "runlock_held_leases" {
			sawHeld = true
			if got := fam.Metric[0].GetGauge().GetValue(); got != 3 {
				t.Fatalf("expected held leases gauge 3, got %v", got)
			}
		}
	}
	if !sawHeld {
		t.Fatal("expected runlock_held_leases to be registered")
	}
}
