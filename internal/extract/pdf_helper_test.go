package extract

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

type textRun struct {
	x, y float64
	s    string
}

// buildPDF writes a minimal single-font PDF with each run placed by Tm.
func buildPDF(t *testing.T, pages ...[]textRun) []byte {
	t.Helper()
	n := len(pages)
	// objects: 1 catalog, 2 pages, 3 font, then page/content pairs
	objs := make([]string, 0, 3+2*n)
	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, runs := range pages {
		var content strings.Builder
		for _, r := range runs {
			fmt.Fprintf(&content, "BT /F1 12 Tf 1 0 0 1 %.0f %.0f Tm (%s) Tj ET\n", r.x, r.y, r.s)
		}
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

// billPages is a two page bill: a header, a three column table and a total
// on the first page, a single note on the second.
func billPages() [][]textRun {
	return [][]textRun{
		{
			{72, 750, "Factura E.ON"},
			{72, 700, "Energie activa"},
			{250, 700, "250 kWh"},
			{400, 700, "112.50"},
			{72, 680, "TVA"},
			{250, 680, "19%"},
			{400, 680, "21.38"},
			{72, 600, "Total de plata 133.88 RON"},
		},
		{
			{72, 750, "Multumim"},
		},
	}
}
