// Package printing renders dealer documents to PDF.
//
// The pipeline is: a DataProvider builds a fully resolved DocumentData
// snapshot from the repositories, the TemplateEngine binds it to an HTML
// template, a PDFRenderer (chromedp or wkhtmltopdf) converts the HTML to
// PDF, and a PDFStorage archives the result. The renderer never touches
// repositories; everything it needs is in the snapshot.
package printing
