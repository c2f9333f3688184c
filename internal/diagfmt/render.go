// Package diagfmt renders diagnostics for the terminal. The diag package
// owns the data model; this package owns presentation.
package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"braid/internal/diag"
	"braid/internal/ir"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	codeColor    = color.New(color.Faint)
)

// Render writes one diagnostic as a single line:
//
//	error[BRD7001] unsupported type: cannot lower Any (node 12)
func Render(w io.Writer, d diag.Diagnostic, useColor bool) {
	sev := d.Severity.String()
	code := "[" + d.Code.ID() + "]"
	if useColor {
		sev = severityColor(d.Severity).Sprint(sev)
		code = codeColor.Sprint(code)
	}
	fmt.Fprintf(w, "%s%s %s: %s", sev, code, d.Code, d.Message)
	if d.Node != ir.NoNodeID {
		fmt.Fprintf(w, " (node %d)", d.Node)
	}
	fmt.Fprintln(w)
}

// RenderBag writes all diagnostics of a bag in its current order.
func RenderBag(w io.Writer, b *diag.Bag, useColor bool) {
	for _, d := range b.Items() {
		Render(w, d, useColor)
	}
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}
