package dynamo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// updateExpr is an UpdateItem expression with its placeholder maps.
type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts set (field->value) and add (field->delta) into a
// single "SET ... ADD ..." expression. Fields are numbered in sorted order so
// the output is deterministic.
func buildUpdateExpr(set map[string]interface{}, add map[string]int) (*updateExpr, error) {
	ue := &updateExpr{
		Names:  make(map[string]string),
		Values: make(map[string]types.AttributeValue),
	}
	i := 0
	clause := func(keys []string, op string, sep string, val func(string) interface{}) (string, error) {
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			nameKey := fmt.Sprintf("#f%d", i)
			valueKey := fmt.Sprintf(":v%d", i)
			av, err := attributevalue.Marshal(val(k))
			if err != nil {
				return "", fmt.Errorf("marshal field %s: %w", k, err)
			}
			ue.Names[nameKey] = k
			ue.Values[valueKey] = av
			parts = append(parts, nameKey+sep+valueKey)
			i++
		}
		if len(parts) == 0 {
			return "", nil
		}
		return op + " " + strings.Join(parts, ", "), nil
	}

	setClause, err := clause(sortedKeys(set), "SET", " = ", func(k string) interface{} { return set[k] })
	if err != nil {
		return nil, err
	}
	addClause, err := clause(sortedKeys(add), "ADD", " ", func(k string) interface{} { return add[k] })
	if err != nil {
		return nil, err
	}
	if i == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	ue.Expr = strings.TrimSpace(setClause + " " + addClause)
	return ue, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
