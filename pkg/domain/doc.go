/*
Package domain defines the core types of the espalier turn protocol.

A conversation with a caller is a sequence of turns. On every turn the
external NLU service hands the engine a TurnInput (recognized intent, slot
values, session attributes carried over from the previous turn) and the
engine answers with a TurnOutput directive (delegate, elicit a slot, elicit
an intent, or close). The session attribute bag is the only state that
survives between turns; everything in this package is either an immutable
snapshot of one turn or a codec for that bag.
*/
package domain
