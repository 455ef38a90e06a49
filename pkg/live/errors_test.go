package live_test

import (
	"testing"

	"github.com/livemind/livemind/pkg/live"
)

func TestClassifyCredential(t *testing.T) {
	for _, msg := range []string{
		"Requested entity was not found.",
		"rpc error: Network error while connecting",
	} {
		e := live.Classify(msg)
		if e.Kind != live.KindCredential {
			t.Fatalf("Classify(%q).Kind = %v, want credential", msg, e.Kind)
		}
	}
}

func TestClassifyNetwork(t *testing.T) {
	e := live.Classify("connection reset by peer")
	if e.Kind != live.KindNetwork {
		t.Fatalf("Kind = %v, want network", e.Kind)
	}
}

func TestDescribeDistinct(t *testing.T) {
	cred := (&live.Error{Kind: live.KindCredential}).Describe()
	net := (&live.Error{Kind: live.KindNetwork}).Describe()
	dev := (&live.Error{Kind: live.KindDevice}).Describe()
	if cred == net || cred == dev || net == dev {
		t.Fatalf("descriptions not distinct: %q %q %q", cred, net, dev)
	}
}
