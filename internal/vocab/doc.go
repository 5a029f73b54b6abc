// Package vocab maps free-text dataset values onto controlled terms.
//
// Each Table translates dataset spellings ("2D", "Gradient Echo EPI") into a
// canonical term name of one term set. Values missing from the table are
// tried directly against the term registry so datasets that already use
// canonical names pass through. Values matching neither produce one warning
// and resolve to absent; vendor free text is expected, so this never fails
// the file.
//
// Curators extend the built-in tables with a YAML overrides file.
package vocab
