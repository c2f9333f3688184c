package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"braid/internal/diag"
	"braid/internal/ir"
)

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.CgenUnsupportedType,
		Message:  "cannot lower Any",
		Node:     12,
	}, false)

	out := buf.String()
	for _, want := range []string{"error", "BRD7001", "unsupported type", "cannot lower Any", "node 12"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestRenderOmitsAbsentNode(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.DrvBadIRFile,
		Message:  "truncated container",
		Node:     ir.NoNodeID,
	}, false)
	if strings.Contains(buf.String(), "node") {
		t.Errorf("output %q mentions a node it does not have", buf.String())
	}
}

func TestRenderBagOrder(t *testing.T) {
	b := diag.NewBag(3)
	b.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.CgenUnknownVariable, Message: "first", Node: 1})
	b.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.CgenUnknownScope, Message: "second", Node: 2})

	var buf bytes.Buffer
	RenderBag(&buf, b, false)
	first := strings.Index(buf.String(), "first")
	second := strings.Index(buf.String(), "second")
	if first < 0 || second < 0 || first > second {
		t.Errorf("bag rendered out of order:\n%s", buf.String())
	}
}
