package ats

// Document is either a PendingDocument awaiting upload or a StoredDocument
// already in the object store. Only StoredDocument values are persisted.
type Document interface {
	DocumentType() DocumentType
	isDocument()
}

// PendingDocument holds raw bytes that have not been uploaded yet.
type PendingDocument struct {
	Type     DocumentType
	FileName string
	Content  []byte
}

func (d PendingDocument) DocumentType() DocumentType { return d.Type }
func (PendingDocument) isDocument()                  {}

// StoredDocument references a file in the object store.
type StoredDocument struct {
	Type     DocumentType `json:"type"`
	FileName string       `json:"fileName"`
	Locator  string       `json:"locator"`

	// Encrypted is set when the object was written through the Encryptor.
	Encrypted bool `json:"encrypted,omitempty"`
}

func (d StoredDocument) DocumentType() DocumentType { return d.Type }
func (StoredDocument) isDocument()                  {}
