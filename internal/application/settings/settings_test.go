package settings

import (
	"testing"
	"time"
)

func TestImportConfig_Timeout(t *testing.T) {
	if got := (ImportConfig{TimeoutSeconds: 15}).Timeout(); got != 15*time.Second {
		t.Fatalf("Timeout() = %v, want 15s", got)
	}
	if got := (ImportConfig{}).Timeout(); got != 0 {
		t.Fatalf("Timeout() = %v, want 0", got)
	}
}
