// Package restyle rewrites every answer in a configured voice. The wrapper
// answers the caller's query plainly first, then asks the model to rephrase
// that answer following the style instruction, so the rest of the chain and
// the caller only ever see the restyled text. [NewELI5] ships the classic
// example: explain it like I'm five.
package restyle
