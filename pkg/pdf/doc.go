// Package pdf emits composed page plans as print PDFs.
//
// A [Document] owns one fpdf instance. Pages are appended in order with
// [Document.AddPage] and the finished file is produced by [Document.Bytes]
// or [Document.WriteTo]. Page sizes come from each plan, so the interior and
// the cover share the same builder.
//
// Layout units are PDF points, so plan geometry maps onto the page without
// scaling. Plans use a bottom-left origin; the builder flips to the
// top-left origin fpdf works in.
//
// The Go fonts are embedded as UTF-8 TrueType under [fonts.Family]. JPEG
// data is embedded as-is; PNG data is re-encoded losslessly by fpdf.
//
// An image that fpdf cannot embed is replaced by a placeholder rectangle
// and the page continues. Errors from fpdf itself while finalizing are
// reported as DOCUMENT_BUILD.
package pdf
