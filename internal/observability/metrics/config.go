package metrics

import "go.opentelemetry.io/otel/attribute"

// Config labels metrics with service identity.
type Config struct {
	ServiceName string
	Environment string
}

var allowedAttributeKeys = map[string]struct{}{
	"endpoint":    {},
	"status_code": {},
	"outcome":     {},
}

// FilterAttributes keeps only low-cardinality, allow-listed attributes.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedAttributeKeys[string(attr.Key)]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
