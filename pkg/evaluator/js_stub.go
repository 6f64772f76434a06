//go:build !js_eval

package evaluator

// NewJSEvaluator is unavailable without the js_eval build tag and returns nil.
func NewJSEvaluator(opts ...JSOption) Evaluator {
	_ = applyJSOptions(opts)
	return nil
}

func jsAvailable() bool {
	return false
}
