// Package spreadsheet reads module drafts from .xlsx workbooks and writes the
// grouped price list.
//
// Import reads the first sheet. The first row is the header; columns are
// recognised by name in English or Spanish, ignoring case:
//
//	model        modelo, model
//	brand        marca, brand
//	price        precio, price
//	description  descripción, descripcion, description
//	image        imagen, image
//
// Rows without a model, a brand or a positive price are reported as
// RowError and skipped. Fully blank rows are ignored.
package spreadsheet
