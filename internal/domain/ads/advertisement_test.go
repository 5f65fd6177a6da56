package ads

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to AdStatus }{
		{AdStatusDraft, AdStatusActive},
		{AdStatusDraft, AdStatusDeleted},
		{AdStatusActive, AdStatusSuspended},
		{AdStatusActive, AdStatusExpired},
		{AdStatusActive, AdStatusDeleted},
		{AdStatusSuspended, AdStatusExpired},
		{AdStatusSuspended, AdStatusDeleted},
		{AdStatusExpired, AdStatusDeleted},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to AdStatus }{
		{AdStatusDraft, AdStatusSuspended},
		{AdStatusDraft, AdStatusExpired},
		{AdStatusActive, AdStatusDraft},
		{AdStatusSuspended, AdStatusActive},
		{AdStatusExpired, AdStatusActive},
		{AdStatusDeleted, AdStatusDraft},
		{AdStatusDeleted, AdStatusActive},
		{AdStatusActive, AdStatusActive},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}
