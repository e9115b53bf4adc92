package render

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/subframe7536/yaak/model"
)

// ApplyPathPlaceholders substitutes URL parameters named ":name" into
// matching "/:name" path segments of rawURL. A segment matches when it is
// followed by "/", "?", "#" or the end of the URL. Values are path-escaped.
//
// Parameters that replaced at least one segment are removed from the
// returned list. Disabled parameters, unnamed parameters and parameters
// without a leading ':' are never substituted and are always kept.
func ApplyPathPlaceholders(rawURL string, params []model.Pair) (string, []model.Pair) {
	var kept []model.Pair

	for _, p := range params {
		if !p.IsEnabled() || !strings.HasPrefix(p.Name, ":") || len(p.Name) == 1 {
			kept = append(kept, p)

			continue
		}

		replaced := replacePlaceholder(rawURL, p.Name, p.Value)
		if replaced == rawURL {
			kept = append(kept, p)

			continue
		}

		rawURL = replaced
	}

	return rawURL, kept
}

func replacePlaceholder(rawURL, name, value string) string {
	re := regexp.MustCompile(`(/)` + regexp.QuoteMeta(name) + `([/?#]|$)`)
	repl := "${1}" + strings.ReplaceAll(url.PathEscape(value), "$", "$$") + "${2}"

	return re.ReplaceAllString(rawURL, repl)
}
