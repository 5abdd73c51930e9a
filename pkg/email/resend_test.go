package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTemplatesRender(t *testing.T) {
	html, err := parseTemplate("welcome.html", map[string]interface{}{
		"Name":    "Ana",
		"Credits": 25,
		"Link":    "https://omni.test/templates",
		"Email":   "ana@omni.test",
		"Year":    2026,
	})
	require.NoError(t, err)
	assert.Contains(t, html, "25 credits")

	html, err = parseTemplate("receipt.html", map[string]interface{}{
		"Name":    "Ana",
		"Receipt": Receipt{Description: "100 credits", Amount: "100.00 INR", Reference: "pay_1"},
		"Email":   "ana@omni.test",
		"Year":    2026,
	})
	require.NoError(t, err)
	assert.Contains(t, html, "pay_1")
	assert.NotContains(t, html, "Open your page")
}

func TestSendWithoutAPIKeyIsNoop(t *testing.T) {
	s := NewEmailService("", "from@omni.test", "Omni", "https://omni.test", zap.NewNop())
	assert.NoError(t, s.SendWelcomeEmail("ana@omni.test", "Ana", 25))
}
