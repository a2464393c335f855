package models

// PayloadEntry is one schedule staged for the completion phase, together
// with its rent transaction line and any downloaded AGI supporting
// document.
type PayloadEntry struct {
	Schedule        RentIncreaseSchedule `json:"schedule"`
	RentTransaction RecurringTransaction `json:"rent_transaction"`
	Attachment      []byte               `json:"attachment,omitempty"`
}

// PayloadChunk is a size-bounded, compressed and obfuscated encoding of
// one or more payload entries. The Algorithm tag makes each chunk
// independently decodable; the scheme is size reduction plus light
// obfuscation, not confidentiality.
type PayloadChunk struct {
	Seq       int    `json:"seq"`
	Algorithm string `json:"algorithm"`
	Data      string `json:"data"`
}

// DocumentRef points at a generated document: the upload filename plus
// the optional archive object path.
type DocumentRef struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	ArchivePath string `json:"archive_path,omitempty"`
}
