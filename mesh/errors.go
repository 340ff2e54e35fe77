package mesh

// LoadError is returned when a mesh file cannot be turned into a usable mesh:
// the file is missing or unreadable, malformed, of an unsupported format, has
// out of range face indices or contains no faces.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return "load mesh " + e.Path + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }
