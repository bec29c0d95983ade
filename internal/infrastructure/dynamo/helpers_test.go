package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	expr, names, values, err := buildUpdateExpr(map[string]interface{}{"name": "hoodie"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", expr)
	assert.Equal(t, map[string]string{"#f0": "name"}, names)
	_, ok := values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"price": 29.99,
		"brand": "AllInOne",
		"stock": 12,
	}
	// Call twice to verify determinism.
	expr1, names1, _, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	expr2, _, _, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, expr1, expr2)

	// Keys must be sorted: brand < price < stock
	assert.Equal(t, "brand", names1["#f0"])
	assert.Equal(t, "price", names1["#f1"])
	assert.Equal(t, "stock", names1["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", expr1)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	_, _, values, err := buildUpdateExpr(map[string]interface{}{"enable": true})
	require.NoError(t, err)
	av, ok := values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, _, _, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := encodeCursor("01HXYZPRODUCT")
	key, err := decodeCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, "01HXYZPRODUCT", key)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	_, err := decodeCursor("%%%not-base64%%%")
	assert.Error(t, err)
}
