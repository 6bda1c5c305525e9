package app

import (
	"fmt"
	"regexp"

	"github.com/alecthomas/kong"
)

// negativeNumber matches the values argparse lets through as option
// arguments even though they start with a dash.
var negativeNumber = regexp.MustCompile(`^-\d+$|^-\d*\.\d+$`)

// argValue is a string flag that also takes negative numbers, so
// "-s -5" sets the state to "-5" instead of failing on an unknown flag.
type argValue string

func (v *argValue) Decode(ctx *kong.DecodeContext) error {
	token := ctx.Scan.Pop()
	raw := token.String()
	if !token.IsValue() && !(token.InferredType() == kong.UntypedToken && negativeNumber.MatchString(raw)) {
		return fmt.Errorf("expected string value but got %q (%s)", raw, token.InferredType())
	}
	*v = argValue(raw)
	return nil
}

func (v argValue) String() string {
	return string(v)
}
