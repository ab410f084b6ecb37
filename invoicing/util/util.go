package util

import (
	"os"
	"strconv"
)

func DebugEnabled() bool {
	return etb("SIMPLEINVOICING_DEBUG")
}

func HttpTraceEnabled() bool {
	return etb("SIMPLEINVOICING_HTTP_TRACE")
}

func etb(envName string) bool {
	v, ok := os.LookupEnv(envName)
	if !ok {
		return false
	}

	bv, err := strconv.ParseBool(v)

	return err == nil && bv
}

// ChromeTestsEnabled gates tests that start a real Chromium.
func ChromeTestsEnabled() bool {
	return etb("SIMPLEINVOICING_CHROME_IT")
}
