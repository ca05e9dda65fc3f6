// Package checkpointer implements periodic saving of policies during
// training.
package checkpointer

// Saver is an object that can be saved to a file
type Saver interface {
	Save(filepath string) error
}

// Checkpointer checkpoints/saves objects after policy updates
type Checkpointer interface {
	// Checkpoint is called after the update-th update, counting from 1
	Checkpoint(update int) error
}
