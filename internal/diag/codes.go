package diag

import "fmt"

// Code is a compact, stable identifier of a diagnostic kind. Codes are
// grouped in blocks per pipeline phase; the native backend owns 7xxx.
type Code uint16

const (
	// UnknownCode covers diagnostics without a classified cause.
	UnknownCode Code = 0

	// Native backend (codegen).
	CgenInfo                 Code = 7000
	CgenUnsupportedType      Code = 7001
	CgenUnsupportedNode      Code = 7002
	CgenNotImplemented       Code = 7003
	CgenUnknownVariable      Code = 7004
	CgenUnknownScope         Code = 7005
	CgenIncompatibleOperand  Code = 7006
	CgenIncompatibleOperands Code = 7007
	CgenUnknownUnaryOp       Code = 7008
	CgenUnknownBinaryOp      Code = 7009
	CgenBadInput             Code = 7010

	// Driver / artifact IO.
	DrvInfo        Code = 8000
	DrvBadManifest Code = 8001
	DrvBadIRFile   Code = 8002
	DrvWriteFailed Code = 8003
)

var codeNames = map[Code]string{
	UnknownCode:              "unknown",
	CgenInfo:                 "codegen",
	CgenUnsupportedType:      "unsupported type",
	CgenUnsupportedNode:      "unsupported node",
	CgenNotImplemented:       "not implemented",
	CgenUnknownVariable:      "unknown variable",
	CgenUnknownScope:         "unknown scope",
	CgenIncompatibleOperand:  "incompatible operand",
	CgenIncompatibleOperands: "incompatible operands",
	CgenUnknownUnaryOp:       "unknown unary operator",
	CgenUnknownBinaryOp:      "unknown binary operator",
	CgenBadInput:             "malformed input IR",
	DrvInfo:                  "driver",
	DrvBadManifest:           "bad manifest",
	DrvBadIRFile:             "bad IR file",
	DrvWriteFailed:           "artifact write failed",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", uint16(c))
}

// ID returns the stable printable form, e.g. "BRD7001".
func (c Code) ID() string {
	return fmt.Sprintf("BRD%04d", uint16(c))
}
