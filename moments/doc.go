// Package moments asks a language model to pick highlight moments from a
// timestamped transcript, either for a best-of compilation or for vertical
// shorts, and returns them in presentation order.
package moments
