package pdf

import "context"

// Host is the visual surface the interactive helpers draw on: a page that
// can embed documents, print them and save them as downloads. Sources are
// handed over as URLs the host can load.
//
//go:generate go run go.uber.org/mock/mockgen@v0.5.0 -source=host.go -destination=../mocks/host.go -package=mocks
type Host interface {
	// MountHidden stages src on an off-screen surface and returns once the
	// surface has finished loading.
	MountHidden(ctx context.Context, src string) (Surface, error)
	// MountInto replaces the content of the container with an embedded
	// surface showing src and returns once it has loaded. It returns
	// ErrContainerNotFound when the container does not exist.
	MountInto(ctx context.Context, containerID, src string) error
	// Save triggers a file download of src under filename.
	Save(ctx context.Context, src, filename string) error
}

// Surface is a mounted, loaded document.
type Surface interface {
	// Print opens the native print flow for the surface content.
	Print(ctx context.Context) error
	// Remove detaches the surface from the page.
	Remove() error
}

// References publishes binary payloads under temporary URLs.
type References interface {
	Create(data []byte, contentType string) (string, error)
	Revoke(ref string) error
}
