// Package evaluator runs rule expressions for form fields.
//
// Three engines share one Evaluator contract:
//
//   - expr (github.com/expr-lang/expr), always available
//   - cel  (github.com/google/cel-go), always available
//   - js   (github.com/dop251/goja), compiled in with the js_eval build tag
//
// Every engine sees the same bindings: value (the field under test), field
// (its name), input (the full submitted input), now and args. The expr and js
// engines additionally expose each input key as a top-level variable so a
// rule such as `password == password_confirmation` reads naturally.
//
// Compiled programs can be memoised through a ProgramCache, and custom
// functions are shared through a FunctionRegistry.
package evaluator
