package hcl

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// newEvalContext exposes environ (KEY=VALUE pairs) as the env object.
func newEvalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

// durationValue converts an optional duration attribute. Unset attributes
// return ok=false.
func durationValue(attr string, v cty.Value) (d time.Duration, ok bool, err error) {
	if v.Type() == cty.NilType || v.IsNull() || !v.IsKnown() {
		return 0, false, nil
	}
	switch v.Type() {
	case cty.String:
		d, err := time.ParseDuration(v.AsString())
		if err != nil {
			return 0, false, fmt.Errorf("%s: %w", attr, err)
		}
		return d, true, nil
	case cty.Number:
		secs, _ := v.AsBigFloat().Float64()
		if secs < 0 {
			return 0, false, fmt.Errorf("%s: negative duration", attr)
		}
		return time.Duration(secs * float64(time.Second)), true, nil
	default:
		return 0, false, fmt.Errorf("%s: expected a duration string or number of seconds, got %s", attr, v.Type().FriendlyName())
	}
}
