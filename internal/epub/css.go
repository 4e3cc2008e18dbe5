package epub

import (
	"fmt"
	"strings"

	"github.com/bookforge/bookforge/internal/book"
)

// Rules shared by every stylesheet. First-letter emphasis applies only
// to paragraphs marked first, which the preface and chapter templates
// emit for their opening paragraph.
const baseRules = `body.cover {
  margin: 0;
  text-align: center;
}

img.cover {
  max-width: 100%;
  max-height: 100%;
}

img.illustration {
  display: block;
  margin: 1em auto;
  max-width: 100%;
}

p.first::first-letter {
  float: left;
  font-size: 2.8em;
  line-height: 1;
  padding-right: 0.08em;
}

blockquote.epigraph {
  font-style: italic;
  text-align: center;
  margin: 1.5em 2em;
}

p.byline {
  text-align: center;
  font-style: italic;
}

p.publisher {
  text-align: center;
}

body.copyright p {
  text-align: center;
  font-size: 0.9em;
}

p.dedication {
  font-style: italic;
  text-align: center;
  margin-top: 40%;
}

ol.toc {
  list-style: none;
  padding: 0;
}

ol.toc li {
  margin: 0.5em 0;
}

dl.characters dt {
  font-weight: bold;
  margin-top: 1em;
}

dl.characters .role {
  font-weight: normal;
  font-style: italic;
}

ul.also-by {
  list-style: none;
  padding: 0;
  text-align: center;
  font-style: italic;
}
`

// buildStylesheet produces the single shared stylesheet. With two
// embedded fonts it declares a font-face per file and binds the
// pairing's families to headings and body copy; otherwise generic
// families apply.
func buildStylesheet(fp book.FontPairing, fonts []embeddedFont) []byte {
	var sb strings.Builder

	for _, f := range fonts {
		fmt.Fprintf(&sb, "@font-face {\n  font-family: %q;\n  src: url(%q);\n}\n\n", f.family, "../"+f.path)
	}

	headingFamily := "serif"
	bodyFamily := "serif"
	if len(fonts) == 2 {
		headingFamily = fmt.Sprintf("%q, serif", fp.Heading)
		bodyFamily = fmt.Sprintf("%q, serif", fp.Body)
	}

	fmt.Fprintf(&sb, "body {\n  font-family: %s;\n  line-height: 1.5;\n  margin: 1em;\n}\n\n", bodyFamily)
	fmt.Fprintf(&sb, "h1, h2 {\n  font-family: %s;\n  text-align: center;\n}\n\n", headingFamily)
	sb.WriteString(baseRules)

	return []byte(sb.String())
}
