// Package captions turns a word sequence into caption groups.
//
// Grouping applies two independent rules while walking the words in order.
// A gap longer than the silence threshold closes the open group, and a group
// that already holds the maximum number of words is closed before the next
// word is added. Groups therefore partition the input exactly: every word
// lands in one group and order is preserved.
//
//	groups := captions.GroupWords(words, 3, captions.Threshold(0.5))
//
// The package also reports inter-word gap statistics and the debug metadata
// returned alongside captioned videos.
package captions
