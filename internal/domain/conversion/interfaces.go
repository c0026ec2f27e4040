package conversion

import "context"

type Service interface {
	Convert(ctx context.Context, request Request) (*Response, error)
}
