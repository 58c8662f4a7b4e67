// Package record defines catalog items: books, articles and magazines.
//
// A Record is a tagged variant. Exactly one of Book, Article or Magazine
// is set and matches Kind. Fields are addressed by stable machine names
// (FieldTitle, FieldStartDate, ...) so that forms, spreadsheets and the
// snapshot file share one schema; display labels live in Label().
package record
