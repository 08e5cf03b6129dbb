package discovery

import (
	"fmt"

	"tweetsweep/internal/domain"
)

type scanState struct {
	bearer   string
	registry *domain.Registry
}

func newScanState() *scanState {
	return &scanState{registry: domain.NewRegistry()}
}

// scanText applies both pattern extractors to one script source. The first
// bearer match across all sources wins; operations register first-writer-wins
// through the registry.
func (s *scanState) scanText(text string) {
	if s.bearer == "" {
		if m := bearerPattern.FindStringSubmatch(text); m != nil {
			s.bearer = "Bearer " + m[1]
		}
	}

	for _, m := range operationPattern.FindAllStringSubmatch(text, -1) {
		s.registry.Register(domain.Endpoint{
			OperationName: m[2],
			OperationID:   m[1],
			Path:          fmt.Sprintf(operationPathTemplate, m[1], m[2]),
		})
	}
}

func (s *scanState) complete(requiredOps []string) bool {
	return s.bearer != "" && s.registry.HasAll(requiredOps...)
}
