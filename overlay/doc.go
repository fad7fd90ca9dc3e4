// Package overlay serializes resolved caption groups into an Advanced
// SubStation Alpha (ASS v4+) subtitle track for burn-in.
//
// Every word of a group produces one Dialogue line that shows the whole
// group with that word highlighted, active from the word's start until the
// next word starts (or the group ends). Played in sequence, the lines give
// the "current word lights up" effect. Output is a pure function of its
// inputs, so regenerating a track yields identical bytes.
package overlay
