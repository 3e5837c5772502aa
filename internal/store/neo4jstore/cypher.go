package neo4jstore

import (
	"strings"

	"github.com/persistorai/relations/internal/models"
)

// nodeReturn projects a :Node into the columns read by recordNode.
const nodeReturn = `n.id AS id, n.type AS type, n.label AS label,
	n.properties AS properties, n.created_at AS created_at, n.updated_at AS updated_at`

// quoteIdentifier backtick-quotes a Cypher identifier. Relationship types
// cannot be passed as parameters, so they are always quoted.
func quoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// relPattern returns the relationship pattern between o and n for d.
func relPattern(d models.Descriptor) string {
	rel := "[r:" + quoteIdentifier(d.Type()) + "]"

	switch d.Direction() {
	case models.Incoming:
		return "(o)<-" + rel + "-(n:Node)"
	case models.Both:
		return "(o)-" + rel + "-(n:Node)"
	default:
		return "(o)-" + rel + "->(n:Node)"
	}
}

// buildTraverseCypher returns the query streaming origin's related nodes
// in relationship creation order, and its parameters.
func buildTraverseCypher(origin string, d models.Descriptor) (string, map[string]any) {
	params := map[string]any{"origin": origin}

	var b strings.Builder
	b.WriteString("MATCH (o:Node {id: $origin})\n")
	b.WriteString("MATCH " + relPattern(d) + "\n")

	if d.NodeType() != "" {
		b.WriteString("WHERE n.type = $node_type\n")

		params["node_type"] = d.NodeType()
	}

	b.WriteString("RETURN " + nodeReturn + "\n")
	b.WriteString("ORDER BY r.created_at, elementId(r)")

	return b.String(), params
}

// buildCreateCypher returns the query creating one relationship of relType
// from $source to $target.
func buildCreateCypher(relType string) string {
	return `MATCH (s:Node {id: $source}), (t:Node {id: $target})
CREATE (s)-[r:` + quoteIdentifier(relType) + ` {created_at: datetime(), weight: 1.0}]->(t)
RETURN r.created_at AS created_at`
}

// buildCheckCypher returns the query reporting whether both endpoints exist
// and whether the relationship is already present.
func buildCheckCypher(relType string) string {
	return `OPTIONAL MATCH (s:Node {id: $source})
OPTIONAL MATCH (t:Node {id: $target})
RETURN s IS NOT NULL AS source_exists, t IS NOT NULL AS target_exists,
	CASE WHEN s IS NULL OR t IS NULL THEN false
	ELSE EXISTS { (s)-[:` + quoteIdentifier(relType) + `]->(t) } END AS duplicate`
}
