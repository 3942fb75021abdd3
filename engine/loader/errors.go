package loader

import "fmt"

// ResourceLoadError reports a named text resource that could not be read.
type ResourceLoadError struct {
	Name string
	Err  error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("loader: failed to read resource %q: %v", e.Name, e.Err)
}

func (e *ResourceLoadError) Unwrap() error {
	return e.Err
}
