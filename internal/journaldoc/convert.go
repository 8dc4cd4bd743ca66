// Package journaldoc turns generated journal pages into Markdown for the
// terminal and web front ends.
package journaldoc

import (
	"errors"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

var ErrEmptyDocument = errors.New("journaldoc: empty document")

type Converter struct {
	policy *bluemonday.Policy
	md     *converter.Converter
}

func NewConverter() *Converter {
	policy := bluemonday.UGCPolicy()
	// Journal pages are full documents; keep their heading structure but
	// never their scripts or styles.
	policy.AllowElements("article", "section", "header", "footer", "main")
	return &Converter{
		policy: policy,
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Markdown sanitizes html and converts it. Relative links are resolved
// against baseURL when it is set.
func (c *Converter) Markdown(html, baseURL string) (string, error) {
	clean := c.policy.Sanitize(html)
	if strings.TrimSpace(clean) == "" {
		return "", ErrEmptyDocument
	}
	var (
		md  string
		err error
	)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		md, err = c.md.ConvertString(clean, converter.WithDomain(baseURL))
	} else {
		md, err = c.md.ConvertString(clean)
	}
	if err != nil {
		return "", err
	}
	md = strings.TrimSpace(md)
	if md == "" {
		return "", ErrEmptyDocument
	}
	return md, nil
}
