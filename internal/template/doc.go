// Package template implements the post-content substitution engine. It
// supports simple {var} markers, {primary|fallback} pairs, and conditional
// {?cond: text} blocks, plus variable extraction for pre-flight validation.
package template
