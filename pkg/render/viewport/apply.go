package viewport

import (
	"bytes"
	"fmt"
)

// Apply places a rendered graph SVG on a surface-sized canvas under the fit
// transform. The graph is shifted right by half the horizontal padding so it
// sits centered inside its padded box. Any XML prolog or doctype before the
// graph's <svg> element is dropped.
func Apply(svg []byte, fit FitTransform, s Surface) []byte {
	body := svg
	if i := bytes.Index(body, []byte("<svg")); i > 0 {
		body = body[i:]
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		fmtFloat(s.Width), fmtFloat(s.Height), fmtFloat(s.Width), fmtFloat(s.Height))
	fmt.Fprintf(&buf, `<g class="viewport" transform="%s">`, fit.SVGAttr())
	if s.PaddingX != 0 {
		fmt.Fprintf(&buf, `<g transform="translate(%s,0)">`, fmtFloat(s.PaddingX/2))
		buf.Write(bytes.TrimSpace(body))
		buf.WriteString(`</g>`)
	} else {
		buf.Write(bytes.TrimSpace(body))
	}
	buf.WriteString("</g></svg>\n")
	return buf.Bytes()
}
