package containerengine

// State describes the lifecycle phase of a build container, as reported
// by Container.Status.
type State string

const (
	// NotCreated means no container has been created with this ID yet.
	NotCreated State = "not_created"
	// Running means the container's task is active.
	Running State = "running"
	// Stopped means the container exists but its task has exited.
	Stopped State = "stopped"
)
