package ports

import "context"

// ImageRef identifies a successfully built image
type ImageRef struct {
	ID  string // content digest reported by the daemon
	Tag string
}

// ImageBuilder defines the contract for turning a build context plus a
// rendered Dockerfile into an immutable image. A failed build must leave no
// tagged image behind.
type ImageBuilder interface {
	// Build runs the image build and returns the resulting image reference
	Build(ctx context.Context, contextDir, dockerfile, tag string) (*ImageRef, error)
}
