package checkpointer

import "fmt"

// nStep implements checkpointing every N updates
type nStep struct {
	interval int
	object   Saver

	// filename returns the name of the file to save the object in.
	// Use FilenameEnumerator to save each checkpoint to a separate
	// enumerated file.
	filename func() string
}

// NewNStep returns a checkpointer that checkpoints every n updates
func NewNStep(n int, object Saver, filename func() string) (Checkpointer,
	error) {
	if n <= 0 {
		return nil, fmt.Errorf("newNStep: interval must be positive, "+
			"have(%v)", n)
	}
	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
	}, nil
}

// Checkpoint saves the tracked object if update is a multiple of the
// interval
func (n *nStep) Checkpoint(update int) error {
	if update%n.interval == 0 {
		return n.object.Save(n.filename())
	}
	return nil
}
