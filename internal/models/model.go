package models

// Model describes the embedding model served by this process.
type Model struct {
	ID         string
	Backend    string
	Dimensions int
}
