// Package language maps human-readable language names to the codes accepted
// by the translation providers.
//
// Display names come from the CLDR tables in golang.org/x/text, so the
// catalog stays in sync with the codes without a hand-maintained name list.
package language
