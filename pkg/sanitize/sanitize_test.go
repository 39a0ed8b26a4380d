package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "Call the court", Text(`<script>alert(1)</script><b>Call</b> the court `))
	assert.Equal(t, "Smith & Sons", Text("Smith & Sons"))
	assert.Equal(t, "", Text("<img src=x onerror=alert(1)>"))
}

func TestRedactPII(t *testing.T) {
	got := RedactPII("Email john.smith@example.com or call +232 76 123 4567.")
	assert.Equal(t, "Email [redacted email] or call [redacted phone].", got)
	assert.Equal(t, "", RedactPII(""))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "short", Summary("short", 20))
	assert.Equal(t, "Uploaded Contract.pdf…", Summary("Uploaded Contract.pdf (v2) by Jane", 24))
}
