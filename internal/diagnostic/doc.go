// Package diagnostic collects the structured findings of a conversion.
// Errors clear a document's success flag; warnings and infos are advisory.
package diagnostic
