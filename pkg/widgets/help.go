package widgets

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-schemafields/pkg/node"
)

var (
	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy
)

// HelpText returns the node description with every tag stripped. Schema
// descriptions are author supplied and may carry markup.
func HelpText(n *node.Node) string {
	if n == nil || strings.TrimSpace(n.Description) == "" {
		return ""
	}
	helpPolicyOnce.Do(func() {
		helpPolicy = bluemonday.StrictPolicy()
	})
	cleaned := helpPolicy.Sanitize(n.Description)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
