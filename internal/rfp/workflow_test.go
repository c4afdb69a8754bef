// File: internal/rfp/workflow_test.go
package rfp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sipb/gosapweb/internal/browser"
	"github.com/sipb/gosapweb/internal/config"
)

func testLocatorConfig() config.LocatorConfig {
	return config.LocatorConfig{
		PollInterval:  time.Millisecond,
		FindTimeout:   10 * time.Millisecond,
		VerifyRetries: 3,
		UploadTimeout: 50 * time.Millisecond,
	}
}

func newTestWorkflow(p *fakePortal) *Workflow {
	return NewWorkflow(p, testLocatorConfig(), zap.NewNop())
}

func TestAwaitState(t *testing.T) {
	t.Run("passes when the marker is visible", func(t *testing.T) {
		p := newFakePortal()
		p.show("payee name")
		require.NoError(t, newTestWorkflow(p).awaitState(context.Background(), StateEntry))
	})

	t.Run("reports the observed page on a missing marker", func(t *testing.T) {
		p := newFakePortal()
		p.title = "Touchstone Authentication"
		p.html = `<div class="portlet-msg-error">Your session has expired.</div>`

		err := newTestWorkflow(p).awaitState(context.Background(), StateAddressInfo)
		var upe *UnexpectedPageError
		require.ErrorAs(t, err, &upe)
		assert.Equal(t, StateAddressInfo, upe.Expected)
		assert.Equal(t, "Touchstone Authentication", upe.Observed)
		require.Len(t, upe.Messages.Errors, 1)
		assert.Contains(t, upe.Messages.Errors[0], "expired")
	})

	t.Run("session loss is terminal and keeps its identity", func(t *testing.T) {
		p := newFakePortal()
		p.aliveErr = browser.ErrSessionLost
		err := newTestWorkflow(p).awaitState(context.Background(), StateEntry)
		require.ErrorIs(t, err, browser.ErrSessionLost)
	})
}

func TestFillVerified(t *testing.T) {
	t.Run("recovers from dropped keystrokes", func(t *testing.T) {
		p := newFakePortal()
		p.show("rfp name")
		p.dropFills["rfp name"] = 2

		w := newTestWorkflow(p)
		require.NoError(t, w.fillVerified(context.Background(), rfpNameField, "Lab supplies"))
		assert.Equal(t, "Lab supplies", p.values["rfp name"])
	})

	t.Run("fails deterministically when retries are exhausted", func(t *testing.T) {
		p := newFakePortal()
		p.show("rfp name")
		p.dropFills["rfp name"] = 99

		err := newTestWorkflow(p).fillVerified(context.Background(), rfpNameField, "Lab supplies")
		var fve *FieldVerifyError
		require.ErrorAs(t, err, &fve)
		assert.Equal(t, "rfp name", fve.Field)
		assert.Equal(t, "Lab supplies", fve.Want)
		assert.Equal(t, 3, fve.Attempts)
		// Exactly VerifyRetries write attempts, no more.
		writes := 0
		for _, c := range p.callSeq() {
			if c == "fill:rfp name" {
				writes++
			}
		}
		assert.Equal(t, 3, writes)
	})

	t.Run("missing field surfaces as not-found", func(t *testing.T) {
		p := newFakePortal()
		err := newTestWorkflow(p).fillVerified(context.Background(), rfpNameField, "x")
		assert.True(t, browser.IsNotFound(err))
	})
}

func TestSetRadio(t *testing.T) {
	p := newFakePortal()
	p.show("payee type MIT")
	w := newTestWorkflow(p)
	require.NoError(t, w.setRadio(context.Background(), payeeTypeRadio(true)))
	assert.True(t, p.checked["payee type MIT"])
}

func TestAssertNoErrors(t *testing.T) {
	t.Run("clean page passes", func(t *testing.T) {
		p := newFakePortal()
		p.html = `<div class="portlet-msg-success">Saved.</div>`
		require.NoError(t, newTestWorkflow(p).assertNoErrors(context.Background(), StateReceiptUpload))
	})

	t.Run("error banner halts the transition", func(t *testing.T) {
		p := newFakePortal()
		p.html = `<label class="jqerror">Cost object is not valid.</label>`
		err := newTestWorkflow(p).assertNoErrors(context.Background(), StateReceiptUpload)
		var upe *UnexpectedPageError
		require.ErrorAs(t, err, &upe)
		assert.Contains(t, upe.Messages.Errors[0], "Cost object")
	})
}

func TestRFPNumber(t *testing.T) {
	p := newFakePortal()
	p.texts["rfp number"] = []string{"  9069467  "}
	got, err := newTestWorkflow(p).rfpNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9069467", got)

	empty := newFakePortal()
	_, err = newTestWorkflow(empty).rfpNumber(context.Background())
	require.Error(t, err)
}
