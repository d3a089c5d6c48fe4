// Package resolve turns dynamic value specifications into concrete values and
// evaluates enabled/required conditions against the growing run context. It
// owns external process execution (bounded shell commands and script files),
// template interpolation, output coercion, and the sequential variable
// resolution pass.
package resolve
