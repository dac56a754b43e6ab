package model

// Document is a stored upload. Name is the stored file name, which sorts in upload order.
type Document struct {
	Name    string
	Content string
}
