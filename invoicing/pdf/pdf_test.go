package pdf_test

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/alapierre/go-simpleinvoicing-client/invoicing/blob"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/require"
)

// samplePDF renders a small one page invoice.
func samplePDF(t *testing.T) []byte {
	t.Helper()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Arial", "B", 16)
	doc.Cell(40, 10, "Invoice FV/1/2024")
	doc.Ln(12)
	doc.SetFont("Arial", "", 12)
	doc.Cell(40, 10, "Widget x2  25.83 EUR")

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func encoded(t *testing.T) (string, []byte) {
	raw := samplePDF(t)
	return base64.StdEncoding.EncodeToString(raw), raw
}

func newStore(t *testing.T) *blob.Store {
	t.Helper()
	s, err := blob.NewStore("http://blob.test")
	require.NoError(t, err)
	return s
}

func requireAllReleased(t *testing.T, s *blob.Store, created int) {
	t.Helper()
	c, r := s.Stats()
	require.Equal(t, created, c, "created")
	require.Equal(t, created, r, "revoked")
	require.Zero(t, s.Live())
}
