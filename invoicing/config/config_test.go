package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "https://simpleinvoicing.warberryapps.com/data/api/invoice/generate", c.Endpoint)
	assert.Equal(t, 30*time.Second, c.HTTPTimeout)
	assert.Equal(t, ".", c.OutputDir)
	assert.False(t, c.ValidatePaymentDetail)
	assert.True(t, c.Browser.Headless)
	assert.Equal(t, "127.0.0.1:0", c.Browser.StageAddr)
	assert.Equal(t, 100*time.Millisecond, c.Browser.PrintDelay)
}

func TestNew_EnvFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"SIMPLEINVOICING_OUTPUT_DIR=/tmp/invoices\n"+
			"SIMPLEINVOICING_HTTP_TIMEOUT=5s\n"+
			"SIMPLEINVOICING_NO_SANDBOX=true\n"), 0o600))

	t.Setenv("SIMPLEINVOICING_HTTP_TIMEOUT", "45s")
	t.Setenv("SIMPLEINVOICING_VALIDATE_PAYMENT_DETAILS", "true")
	// godotenv.Load sets variables process wide
	t.Setenv("SIMPLEINVOICING_OUTPUT_DIR", "")
	require.NoError(t, os.Unsetenv("SIMPLEINVOICING_OUTPUT_DIR"))
	t.Setenv("SIMPLEINVOICING_NO_SANDBOX", "")
	require.NoError(t, os.Unsetenv("SIMPLEINVOICING_NO_SANDBOX"))

	c, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/invoices", c.OutputDir)
	assert.Equal(t, 45*time.Second, c.HTTPTimeout)
	assert.True(t, c.ValidatePaymentDetail)
	assert.True(t, c.Browser.NoSandbox)
}

func TestNew_Invalid(t *testing.T) {
	t.Setenv("SIMPLEINVOICING_HTTP_TIMEOUT", "soon")
	_, err := New("")
	assert.Error(t, err)

	t.Setenv("SIMPLEINVOICING_HTTP_TIMEOUT", "-1s")
	_, err = New("")
	assert.Error(t, err)
}
