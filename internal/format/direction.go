package format

// Direction selects which way a pass moves data.
type Direction uint8

const (
	// Export reads the container and writes external files.
	Export Direction = iota
	// Import reads external files and writes the container.
	Import
)

func (d Direction) String() string {
	if d == Import {
		return "import"
	}
	return "export"
}
