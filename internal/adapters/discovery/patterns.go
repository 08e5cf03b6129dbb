package discovery

import "regexp"

// Pattern revisions are named so drift in the platform's bundle format is a
// single-point update: add a v2 alongside v1 and switch the compiled pattern.
const (
	// bearerPatternV1 matches the bearer credential embedded verbatim in the
	// web client's bundles.
	bearerPatternV1 = `"Bearer\s([a-zA-Z0-9%._-]+)"`

	// operationPatternV1 matches one (operation id, operation name) pair from
	// the client's GraphQL operation table.
	operationPatternV1 = `queryId:"([a-zA-Z0-9_-]+)",operationName:"([a-zA-Z0-9_-]+)"`

	// operationPathTemplate synthesizes the request path for a discovered
	// operation: /i/api/graphql/<operation id>/<operation name>.
	operationPathTemplate = "/i/api/graphql/%s/%s"
)

var (
	bearerPattern    = regexp.MustCompile(bearerPatternV1)
	operationPattern = regexp.MustCompile(operationPatternV1)
)
