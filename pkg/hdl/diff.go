package hdl

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff of the YAML dumps of two designs with context
// lines around each change; a negative context selects three. An empty
// string means the designs are equivalent.
func Diff(a, b *Design, aName, bName string, context int) (string, error) {
	var bufA, bufB bytes.Buffer
	if err := (YAMLEmitter{}).Emit(&bufA, a); err != nil {
		return "", errors.Wrapf(err, "failed to dump %s", aName)
	}
	if err := (YAMLEmitter{}).Emit(&bufB, b); err != nil {
		return "", errors.Wrapf(err, "failed to dump %s", bName)
	}
	if bytes.Equal(bufA.Bytes(), bufB.Bytes()) {
		return "", nil
	}

	if context < 0 {
		context = 3
	}
	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(bufA.String()),
		B:        difflib.SplitLines(bufB.String()),
		FromFile: aName,
		ToFile:   bName,
		Context:  context,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", errors.Wrap(err, "failed to diff designs")
	}
	return s, nil
}
