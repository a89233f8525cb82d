package catalog

import (
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.BrazilianPortuguese)

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// DisplayLabel returns the title-cased label used in owner messages, e.g. "Honda Cg 160 2024"
func (p *Product) DisplayLabel() string {
	return titleCaser.String(p.Label())
}
