package preferences

import "examphoto/internal/dimensions"

// DefaultDimensions is the fallback size used when a request leaves an axis
// blank.
type DefaultDimensions = dimensions.Spec

type Repository interface {
	Get() DefaultDimensions
	Save(d DefaultDimensions) error
	SaveFromInput(in dimensions.Input, dpi int) (DefaultDimensions, error)
}
