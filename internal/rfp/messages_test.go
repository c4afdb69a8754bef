// File: internal/rfp/messages_test.go
package rfp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessages(t *testing.T) {
	page := `<html><body>
		<div class="portlet-msg-error">Payee could not be determined.</div>
		<label class="jqerror" for="amount-0">Amount is required.</label>
		<div class="portlet-msg-alert">
			This RFP will be routed	to the Accounts Payable office.
		</div>
		<div class="portlet-msg-success">RFP 9069467 has been saved.</div>
		<div class="data">unrelated content</div>
	</body></html>`

	m := ParseMessages(page)
	require.Len(t, m.Errors, 2)
	assert.Equal(t, "Payee could not be determined.", m.Errors[0])
	assert.Equal(t, "Amount is required.", m.Errors[1])
	require.Len(t, m.Info, 1)
	assert.Equal(t, "This RFP will be routed to the Accounts Payable office.", m.Info[0])
	require.Len(t, m.Success, 1)
	assert.Contains(t, m.Success[0], "9069467")
}

func TestParseMessagesEmptyAndGarbage(t *testing.T) {
	assert.True(t, ParseMessages("").Empty())
	assert.True(t, ParseMessages("<div class='data'>nothing here</div>").Empty())
	// Truncated markup still parses leniently.
	m := ParseMessages(`<div class="portlet-msg-error">Session expired`)
	require.Len(t, m.Errors, 1)
	assert.Equal(t, "Session expired", m.Errors[0])
}

func TestMessagesString(t *testing.T) {
	m := Messages{Errors: []string{"bad cost object"}, Success: []string{"saved"}}
	s := m.String()
	assert.Contains(t, s, "error: bad cost object")
	assert.Contains(t, s, "success: saved")
	assert.False(t, m.Empty())
	assert.True(t, Messages{}.Empty())
}
