package browser

import (
	"html"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
)

var (
	blankLines = regexp.MustCompile(`\n{3,}`)
	spaceRuns  = regexp.MustCompile(`[ \t]+`)
)

// extractor turns the rendered answer HTML into text the classifier can read.
type extractor struct {
	md     *converter.Converter
	strict *bluemonday.Policy
}

func newExtractor() *extractor {
	return &extractor{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
		strict: bluemonday.StrictPolicy(),
	}
}

// Text converts answer HTML to Markdown. When conversion fails or yields
// nothing, it falls back to the sanitised plain text.
func (x *extractor) Text(answerHTML string) string {
	if strings.TrimSpace(answerHTML) == "" {
		return ""
	}
	if out, err := x.md.ConvertString(answerHTML); err == nil {
		if out = normalise(out); out != "" {
			return out
		}
	}
	return x.Plain(answerHTML)
}

// Plain strips every tag and decodes entities.
func (x *extractor) Plain(answerHTML string) string {
	text := x.strict.Sanitize(answerHTML)
	return normalise(html.UnescapeString(text))
}

func normalise(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(spaceRuns.ReplaceAllString(line, " "), " ")
	}
	out := strings.Join(lines, "\n")
	out = blankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
