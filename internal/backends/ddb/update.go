package ddb

import (
	"clientsvc/internal/types"
	"sort"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
)

// buildUpdate builds a SET expression for fields that is conditional on the record existing.
// Every attribute name and value goes through a positional placeholder (#0, :0, ...), so
// caller field names never reach the expression text and reserved words cannot collide.
// Names are not split on dots: "a.b" is a top-level attribute.
func buildUpdate(fields types.Record) (expression.Expression, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var upd expression.UpdateBuilder
	for _, k := range keys {
		upd = upd.Set(expression.NameNoDotSplit(k), expression.Value(fields[k]))
	}
	cond := expression.AttributeExists(expression.Name(types.IDField))
	return expression.NewBuilder().WithUpdate(upd).WithCondition(cond).Build()
}
