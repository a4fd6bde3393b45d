package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testColumn(ct fieldType, unsigned bool, encoding string) *ColumnDefinition {
	flags := fieldFlag(0)
	if unsigned {
		flags |= flagUnsigned
	}
	return &ColumnDefinition{
		Name: "c", Table: "t", Schema: "db",
		ColumnType: ct, Encoding: encoding, Flags: flags,
	}
}

func TestCellAdapter_DefaultRead_Null(t *testing.T) {
	col := testColumn(fieldTypeVarChar, false, "utf8mb4")
	a := newCellAdapter(col, nil, true, nil)
	assert.Nil(t, a.defaultRead())
	assert.True(t, a.IsNull())
	assert.Nil(t, a.Buffer())
}

func TestCellAdapter_DefaultRead_BinaryEncoding(t *testing.T) {
	col := testColumn(fieldTypeBLOB, false, "binary")
	a := newCellAdapter(col, []byte{1, 2, 3}, false, nil)
	v := a.defaultRead()
	b, ok := v.([]byte)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, b)
}

func TestCellAdapter_DefaultRead_StringEncoding(t *testing.T) {
	col := testColumn(fieldTypeVarChar, false, "utf8mb4")
	a := newCellAdapter(col, []byte("hi"), false, nil)
	assert.Equal(t, "hi", a.defaultRead())
	assert.Equal(t, "hi", a.String())
}

func TestCellAdapter_DefaultCastOverride(t *testing.T) {
	col := testColumn(fieldTypeLongLong, false, "ascii")
	called := false
	a := newCellAdapter(col, []byte("42"), false, func(b []byte) interface{} {
		called = true
		return string(b) + "!"
	})
	assert.Equal(t, "42!", a.defaultRead())
	assert.True(t, called)
}

func TestCellAdapter_Run_TypeCastIntercepts(t *testing.T) {
	col := testColumn(fieldTypeVarChar, false, "utf8mb4")
	a := newCellAdapter(col, []byte("hi"), false, nil)

	var gotName string
	result := a.Run(func(field FieldView, defaultRead func() interface{}) interface{} {
		gotName = field.Name()
		return defaultRead().(string) + "-cast"
	})

	assert.Equal(t, "c", gotName)
	assert.Equal(t, "hi-cast", result)
}

func TestCellAdapter_Run_NilCastUsesDefault(t *testing.T) {
	col := testColumn(fieldTypeVarChar, false, "utf8mb4")
	a := newCellAdapter(col, []byte("hi"), false, nil)
	assert.Equal(t, "hi", a.Run(nil))
}

func TestColumnDefinition_Unsigned(t *testing.T) {
	col := testColumn(fieldTypeLong, true, "")
	assert.True(t, col.Unsigned())
	col2 := testColumn(fieldTypeLong, false, "")
	assert.False(t, col2.Unsigned())
}

func TestColumnDefinition_GoType(t *testing.T) {
	signed := testColumn(fieldTypeLong, false, "")
	assert.Equal(t, "int64", signed.GoType().String())

	unsigned := testColumn(fieldTypeLong, true, "")
	assert.Equal(t, "uint64", unsigned.GoType().String())

	float := testColumn(fieldTypeDouble, false, "")
	assert.Equal(t, "float64", float.GoType().String())
}

func TestColumnDefinition_DatabaseTypeName(t *testing.T) {
	col := testColumn(fieldTypeVarChar, false, "utf8mb4")
	assert.Equal(t, "VARCHAR", col.DatabaseTypeName())

	bigint := testColumn(fieldTypeLongLong, false, "")
	assert.Equal(t, "BIGINT", bigint.DatabaseTypeName())
}

func TestCellAdapter_DatabaseTypeName(t *testing.T) {
	col := testColumn(fieldTypeJSON, false, "utf8mb4")
	a := newCellAdapter(col, []byte("{}"), false, nil)
	assert.Equal(t, "JSON", a.DatabaseTypeName())
}
