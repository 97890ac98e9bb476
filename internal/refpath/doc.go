/*
Package refpath parses and formats RPL reference paths, the text that
follows `@` in a reference value.

The format is a target, an optional key and any number of indices:

	Target(.key)?([idx])*

Target is either a struct name or a relative form: `this`, `parent`
repeated once per level (`parentparent` is the grandparent), or `back`
repeated once per caller frame, optionally followed by `_parent` levels
(`back_parent`, `backback_parentparent`).
*/
package refpath
