package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMySQLError_Error(t *testing.T) {
	e := &MySQLError{Errno: 1046, Code: "ER_NO_DB_ERROR", SQLState: "3D000", SQLMessage: "No database selected"}
	assert.Equal(t, "Error 1046 (3D000): No database selected", e.Error())

	e2 := &MySQLError{Errno: 1046, SQLMessage: "No database selected"}
	assert.Equal(t, "Error 1046: No database selected", e2.Error())
}

func TestCodeForErrno_Known(t *testing.T) {
	assert.Equal(t, "ER_NO_TABLES_USED", codeForErrno(1096))
}

func TestCodeForErrno_Unknown(t *testing.T) {
	assert.Equal(t, "9999", codeForErrno(9999))
}

func TestWrapFrame_PreservesSentinel(t *testing.T) {
	err := wrapFrame(ErrPacketTooShort, "need %d more bytes", 3)
	assert.ErrorIs(t, err, ErrPacketTooShort)
	assert.Contains(t, err.Error(), "need 3 more bytes")
}
