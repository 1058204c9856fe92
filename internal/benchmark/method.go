// Package benchmark drives each retrieval method through the evaluation
// protocol, metering cost and fusing results for the hybrid method.
package benchmark

// MethodKind tags a retrieval strategy. The kind is decided once at setup
// and selects the cost-accounting behavior; accounting never inspects the
// display name.
type MethodKind int

const (
	MethodKeyword MethodKind = iota
	MethodVector
	MethodHybrid
)

// String returns the method's display name as persisted in results.
func (k MethodKind) String() string {
	switch k {
	case MethodKeyword:
		return "Elasticsearch (Keyword)"
	case MethodVector:
		return "Qdrant (Vector)"
	case MethodHybrid:
		return "Hybrid (Keyword + Vector)"
	default:
		return "Unknown"
	}
}

// needsLexical reports whether the method queries the lexical backend.
func (k MethodKind) needsLexical() bool {
	return k == MethodKeyword || k == MethodHybrid
}

// needsVector reports whether the method queries the vector backend.
func (k MethodKind) needsVector() bool {
	return k == MethodVector || k == MethodHybrid
}
