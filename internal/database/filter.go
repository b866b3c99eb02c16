package database

import (
	"fmt"
	"sort"
	"strings"

	"github.com/comparely/catalog-service/internal/types"
)

// whereClause renders a filter as a SQL condition over the doc column.
// Arguments are numbered from start.
func whereClause(filter types.Filter, start int) (string, []any) {
	if len(filter) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)*2)
	n := start
	for _, k := range keys {
		if field, ok := strings.CutPrefix(k, types.ProductsFieldPrefix); ok {
			conds = append(conds, fmt.Sprintf(
				"doc->'products' @> jsonb_build_array(jsonb_build_object($%d::text, $%d::text))", n, n+1))
			args = append(args, field, filter[k])
		} else {
			conds = append(conds, fmt.Sprintf("doc->>($%d::text) = $%d", n, n+1))
			args = append(args, k, filter[k])
		}
		n += 2
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
