/*
Package cssom provides functionality for CSS styling.

Overview

We strive to separate content from presentation. Presentation
is governed with CSS (Cascading Style Sheets). CSS uses a box model which
is well described here:

   https://developer.mozilla.org/en-US/docs/Learn/CSS/Introduction_to_CSS/Box_model

A good explanation of styling may be found in

   https://hacks.mozilla.org/2017/08/inside-a-super-fast-css-engine-quantum-css-aka-stylo/

CSSOM is the "CSS Object Model", similar to the DOM for HTML.
There is not very much open source Go code around for supporting us
in implementing a styling engine, except the great work of
https://godoc.org/github.com/andybalholm/cascadia.
Therefore we will have to compromise
on many feature in order to complete this in a realistic time frame.

CSS handling is de-coupled by introducing appropriate interfaces
StyleSheet and Rule. Concrete implementations may be found in sub-packages
(see package douceuradapter).

Style Sheet Store

Style sheets are collected in a Store. Every change to the set of sheets
of a store (adding a sheet, removing a sheet, replacing all sheets)
creates a new immutable Revision. Passes of the engine work on a single
revision, which they obtain with Store.Current(). Revisions are never
modified after publication, so they may be shared by any number of
goroutines without synchronization.

The user-agent style sheet is given when creating a store and is the first
sheet of every revision.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package cssom

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'layoutcore.style'.
func tracer() tracing.Trace {
	return tracing.Select("layoutcore.style")
}
