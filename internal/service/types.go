package service

// Document is a flat, unordered mapping of field name to value.
// Values written through a Gateway are strings; other value types may be
// present when the document is shared with other clients.
type Document struct {
	ID     string
	Fields map[string]any
}

// DocumentID returns the id of the document that belongs to ownerID.
// Each owner has exactly one document, named after the owner.
func DocumentID(ownerID string) string {
	return ownerID
}
