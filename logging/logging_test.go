package logging

import "testing"

// Logging has no observable return values to assert on beyond "did not
// panic" without capturing os.Stderr; the level gate's branching is
// exercised directly here since that's the part with real behavior.
func TestSetLevelGatesOutput(t *testing.T) {
	l := New(Silent)
	l.Infof("should be suppressed")
	l.Warnf("should be suppressed")

	l.SetLevel(Debug)
	l.Infof("now visible")
	l.Warnf("now visible")
	l.Debugf("now visible")
}

func TestDefaultIsInfoLevel(t *testing.T) {
	l := Default()
	if l == nil {
		t.Fatal("Default() returned nil")
	}
}
