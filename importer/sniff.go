package importer

import "bytes"

var (
	pdfSignature = []byte("%PDF-")
	zipSignature = []byte("PK\x03\x04")           // xlsx/xlsm — это zip-архив
	oleSignature = []byte{0xd0, 0xcf, 0x11, 0xe0} // старый бинарный .xls
)

// DetectKind определяет вид документа по байтовой сигнатуре
func DetectKind(data []byte) SourceKind {
	switch {
	case bytes.HasPrefix(data, pdfSignature):
		return KindPDF
	case bytes.HasPrefix(data, zipSignature), bytes.HasPrefix(data, oleSignature):
		return KindSpreadsheet
	}
	return KindUnknown
}
