package tui

import (
	"fmt"
	"testing"

	"homeboard/internal/api"
)

func TestEntitlementErrorShowsUpgradeNotice(t *testing.T) {
	a := App{signedIn: true}

	model, _ := a.Update(errMsg{err: fmt.Errorf("load budget: %w", api.ErrEntitlement)})
	got := model.(App)

	if got.errText != upgradeNotice {
		t.Errorf("errText = %q, want the upgrade notice", got.errText)
	}
	if !got.signedIn {
		t.Error("entitlement rejection must not sign the user out")
	}
}

func TestGenericErrorShownVerbatim(t *testing.T) {
	a := App{signedIn: true}

	model, _ := a.Update(errMsg{err: fmt.Errorf("the network is down")})
	got := model.(App)

	if got.errText != "the network is down" {
		t.Errorf("errText = %q, want the raw error", got.errText)
	}
}
