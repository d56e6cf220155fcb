// Package inject rewrites HTML pages before they are served.
//
// The rewrite is a pure string operation: the same input always produces the
// same output, and the inserted script is the fixed constant AudioScript.
package inject
