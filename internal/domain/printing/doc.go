// Package printing contains the domain types for rendering dealer
// documents (contracts, invoices) as PDFs.
package printing
